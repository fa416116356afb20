package rest

import (
	"net/http"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/port"
	"findar-backend/internal/core/port/usecases_port"
)

type BoostingHandler struct {
	listPlansUC  usecases_port.ListBoostingPlansUseCasePort
	createPlanUC usecases_port.CreateBoostingPlanUseCasePort
	boostUC      usecases_port.BoostListingUseCasePort
}

func NewBoostingHandler(
	listPlansUC usecases_port.ListBoostingPlansUseCasePort,
	createPlanUC usecases_port.CreateBoostingPlanUseCasePort,
	boostUC usecases_port.BoostListingUseCasePort,
) *BoostingHandler {
	return &BoostingHandler{listPlansUC: listPlansUC, createPlanUC: createPlanUC, boostUC: boostUC}
}

func (h *BoostingHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListPlans"})

	plans, err := h.listPlansUC.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to load boosting plans")
		return
	}
	resp := make([]BoostingPlanResponse, len(plans))
	for i := range plans {
		resp[i] = toBoostingPlanResponse(&plans[i])
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// CreatePlan handles POST /api/v1/internal/boosting-plans.
func (h *BoostingHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreatePlan"})

	var req BoostingPlanRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		logger.Warn("Failed to decode create plan request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	plan, err := h.createPlanUC.Execute(r.Context(), req.toDomain())
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to create boosting plan")
		return
	}
	RespondWithJSON(w, http.StatusCreated, toBoostingPlanResponse(plan))
}

func (h *BoostingHandler) BoostListing(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "BoostListing"})

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

	var req BoostRequest
	if err := decodeJSONBody(w, r, &req); err != nil || req.PlanID <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "Field 'plan_id' is required")
		return
	}

	promotion, err := h.boostUC.Execute(r.Context(), userID, listingID, req.PlanID)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to boost listing")
		return
	}
	logger.Info("Listing boosted", port.Fields{"listing_id": listingID, "promotion_id": promotion.ID})
	RespondWithJSON(w, http.StatusCreated, toPromotionResponse(promotion))
}
