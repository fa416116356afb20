package rest

import (
	"net/http"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/port"
	"findar-backend/internal/core/port/usecases_port"
)

type SavedListingHandler struct {
	saveUC   usecases_port.SaveListingUseCasePort
	unsaveUC usecases_port.UnsaveListingUseCasePort
	getUC    usecases_port.GetSavedListingsUseCasePort
}

func NewSavedListingHandler(
	saveUC usecases_port.SaveListingUseCasePort,
	unsaveUC usecases_port.UnsaveListingUseCasePort,
	getUC usecases_port.GetSavedListingsUseCasePort,
) *SavedListingHandler {
	return &SavedListingHandler{saveUC: saveUC, unsaveUC: unsaveUC, getUC: getUC}
}

func (h *SavedListingHandler) SaveListing(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SaveListing"})

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

	if err := h.saveUC.Execute(r.Context(), userID, listingID); err != nil {
		writeUseCaseError(w, logger, err, "Failed to save listing")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SavedListingHandler) UnsaveListing(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "UnsaveListing"})

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

	if err := h.unsaveUC.Execute(r.Context(), userID, listingID); err != nil {
		writeUseCaseError(w, logger, err, "Failed to remove saved listing")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SavedListingHandler) GetSavedListings(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetSavedListings"})

	userID, ok := userIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	listings, err := h.getUC.Execute(r.Context(), userID)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to load saved listings")
		return
	}
	RespondWithJSON(w, http.StatusOK, toListingsResponse(listings))
}
