package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"survivald/internal/manager"
	"survivald/internal/schema"
	"survivald/pkg/types"
)

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, category, msg string) {
	writeError(w, types.ErrorResponse{Error: msg, Code: status, Category: category})
}

func writeError(w http.ResponseWriter, resp types.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Code)
	_ = json.NewEncoder(w).Encode(resp)
}

// errorResponse maps a service error to its HTTP payload. This is the only
// place where error kinds become status codes.
func errorResponse(err error) types.ErrorResponse {
	cat := manager.Category(err)
	switch cat {
	case manager.CategoryNotReady:
		return types.ErrorResponse{Error: err.Error(), Code: http.StatusServiceUnavailable, Category: cat}
	case manager.CategoryValidation:
		var ve *schema.ValidationError
		errors.As(err, &ve)
		return types.ErrorResponse{Error: "request validation failed", Code: http.StatusUnprocessableEntity, Category: cat, Fields: ve.Fields}
	case manager.CategoryPrediction:
		// The cause is logged by the caller, never returned.
		return types.ErrorResponse{Error: "prediction failed", Code: http.StatusInternalServerError, Category: cat}
	default:
		return types.ErrorResponse{Error: "internal error", Code: http.StatusInternalServerError, Category: manager.CategoryInternal}
	}
}

// writeServiceError writes err and returns the status used.
func writeServiceError(w http.ResponseWriter, err error) int {
	resp := errorResponse(err)
	if resp.Code == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	writeError(w, resp)
	return resp.Code
}
