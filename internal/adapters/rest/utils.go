package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"github.com/go-chi/chi/v5"
)

const maxRequestBodyBytes = 1 << 20

func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(dst)
}

// listingIDParam returns false for anything that is not a positive integer.
func listingIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "listingID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type errorMapping struct {
	target error
	status int
}

var errorStatuses = []errorMapping{
	{domain.ErrListingNotFound, http.StatusNotFound},
	{domain.ErrPlanNotFound, http.StatusNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrJobNotFound, http.StatusNotFound},
	{domain.ErrNotListingOwner, http.StatusForbidden},
	{domain.ErrInsufficientCredits, http.StatusPaymentRequired},
	{domain.ErrJobBusy, http.StatusConflict},
	{domain.ErrInvalidListing, http.StatusBadRequest},
	{domain.ErrInvalidPlan, http.StatusBadRequest},
	{domain.ErrInvalidReport, http.StatusBadRequest},
	{domain.ErrInvalidDevice, http.StatusBadRequest},
	{domain.ErrInvalidPush, http.StatusBadRequest},
	{domain.ErrTransientDelivery, http.StatusServiceUnavailable},
}

// writeUseCaseError maps domain errors onto HTTP statuses. Unknown errors become
// a 500 carrying fallback, so internal details never reach the client.
func writeUseCaseError(w http.ResponseWriter, logger port.LoggerPort, err error, fallback string) {
	for _, m := range errorStatuses {
		if errors.Is(err, m.target) {
			logger.Warn("Request rejected", port.Fields{"status_code": m.status, "reason": err.Error()})
			WriteJSONError(w, m.status, err.Error())
			return
		}
	}
	logger.Error(fallback, err, nil)
	WriteJSONError(w, http.StatusInternalServerError, fallback)
}
