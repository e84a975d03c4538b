package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"trykkeri-admin/logging"
	"trykkeri-admin/pricing"
	"trykkeri-admin/repository"
	"trykkeri-admin/service"
)

// maxBodyBytes caps JSON bodies and uploads
const maxBodyBytes = 32 << 20

// statusFor maps an error to its HTTP status: bad input 400, missing row 404, no storage 503, else 500
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, pricing.ErrInvalidStructure),
		errors.Is(err, pricing.ErrInvalidKey),
		errors.Is(err, pricing.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrStorageDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError logs and writes a plain text error. The operation is aborted, nothing else changes.
func writeError(w http.ResponseWriter, handler, what string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.Errorf("❌ %s: %s: %v", handler, what, err)
	} else {
		logging.Warnf("⚠️  %s: %s: %v", handler, what, err)
	}
	http.Error(w, fmt.Sprintf("%s: %v", what, err), status)
}

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Errorf("❌ Failed to encode response: %v", err)
	}
}

// decodeJSON reads a JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", service.ErrValidation, err)
	}
	return nil
}
