package rest

import (
	"net/http"
	"time"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/port"
	"findar-backend/internal/core/port/usecases_port"
	"findar-backend/internal/core/search"
)

type ListingHandler struct {
	searchUC    usecases_port.AdvancedSearchUseCasePort
	recentUC    usecases_port.RecentListingsUseCasePort
	sponsoredUC usecases_port.GetSponsoredListingsUseCasePort
	detailsUC   usecases_port.GetListingDetailsUseCasePort
	createUC    usecases_port.CreateListingUseCasePort
	editUC      usecases_port.EditListingUseCasePort
	toggleUC    usecases_port.ToggleListingActiveUseCasePort
	myUC        usecases_port.GetMyListingsUseCasePort
	reportUC    usecases_port.ReportListingUseCasePort
}

func NewListingHandler(
	searchUC usecases_port.AdvancedSearchUseCasePort,
	recentUC usecases_port.RecentListingsUseCasePort,
	sponsoredUC usecases_port.GetSponsoredListingsUseCasePort,
	detailsUC usecases_port.GetListingDetailsUseCasePort,
	createUC usecases_port.CreateListingUseCasePort,
	editUC usecases_port.EditListingUseCasePort,
	toggleUC usecases_port.ToggleListingActiveUseCasePort,
	myUC usecases_port.GetMyListingsUseCasePort,
	reportUC usecases_port.ReportListingUseCasePort,
) *ListingHandler {
	return &ListingHandler{
		searchUC:    searchUC,
		recentUC:    recentUC,
		sponsoredUC: sponsoredUC,
		detailsUC:   detailsUC,
		createUC:    createUC,
		editUC:      editUC,
		toggleUC:    toggleUC,
		myUC:        myUC,
		reportUC:    reportUC,
	}
}

// AdvancedSearch handles GET /api/v1/listings/search. Malformed parameters are ignored, never rejected.
func (h *ListingHandler) AdvancedSearch(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "AdvancedSearch"})

	criteria := search.ParseCriteria(r.URL.Query())
	listings, err := h.searchUC.Execute(r.Context(), criteria)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to search listings")
		return
	}
	RespondWithJSON(w, http.StatusOK, toListingsResponse(listings))
}

func (h *ListingHandler) RecentListings(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RecentListings"})

	listings, err := h.recentUC.Execute(r.Context(), search.ParseRecentQuery(r.URL.Query()))
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to load recent listings")
		return
	}
	RespondWithJSON(w, http.StatusOK, toListingsResponse(listings))
}

func (h *ListingHandler) SponsoredListings(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SponsoredListings"})

	listings, err := h.sponsoredUC.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to load sponsored listings")
		return
	}
	RespondWithJSON(w, http.StatusOK, toListingsResponse(listings))
}

func (h *ListingHandler) GetListingDetails(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetListingDetails"})

	listingID, ok := listingIDParam(r)
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Invalid listing ID in URL")
		return
	}

	listing, err := h.detailsUC.Execute(r.Context(), listingID)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to load listing")
		return
	}
	RespondWithJSON(w, http.StatusOK, toListingResponse(listing))
}

func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateListing"})

	userID, ok := userIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var req ListingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		logger.Warn("Failed to decode create listing request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to create listing")
		return
	}

	listing, err := h.createUC.Execute(r.Context(), userID, input)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to create listing")
		return
	}
	logger.Info("Listing created", port.Fields{"listing_id": listing.ID})
	RespondWithJSON(w, http.StatusCreated, toListingResponse(listing))
}

func (h *ListingHandler) EditListing(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "EditListing"})

	userID, ok := userIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	listingID, ok := listingIDParam(r)
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Invalid listing ID in URL")
		return
	}

	var req ListingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		logger.Warn("Failed to decode edit listing request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to edit listing")
		return
	}

	listing, err := h.editUC.Execute(r.Context(), userID, listingID, input)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to edit listing")
		return
	}
	RespondWithJSON(w, http.StatusOK, toListingResponse(listing))
}

func (h *ListingHandler) ToggleListingActive(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ToggleListingActive"})

	userID, ok := userIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	listingID, ok := listingIDParam(r)
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Invalid listing ID in URL")
		return
	}

	active, err := h.toggleUC.Execute(r.Context(), userID, listingID)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to change listing state")
		return
	}
	RespondWithJSON(w, http.StatusOK, ToggleActiveResponse{ID: listingID, Active: active})
}

func (h *ListingHandler) GetMyListings(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetMyListings"})

	userID, ok := userIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	listings, err := h.myUC.Execute(r.Context(), userID)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to load listings")
		return
	}
	RespondWithJSON(w, http.StatusOK, toListingsResponse(listings))
}

func (h *ListingHandler) ReportListing(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ReportListing"})

	userID, ok := userIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	listingID, ok := listingIDParam(r)
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Invalid listing ID in URL")
		return
	}

	var req ReportRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	report, err := h.reportUC.Execute(r.Context(), userID, listingID, req.Reason, req.Details)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to report listing")
		return
	}
	RespondWithJSON(w, http.StatusCreated, ReportResponse{
		ID:        report.ID,
		ListingID: report.ListingID,
		Reason:    report.Reason,
		CreatedAt: report.CreatedAt.Format(time.RFC3339),
	})
}
