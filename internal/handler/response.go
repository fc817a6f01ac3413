package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/efreitasn/tradecore/internal/domain"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// WriteJSON writes a JSON response with the given status code and data.
// Sets Content-Type to application/json before writing the status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// errorResponse is the standard error response format.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a standard error response with the given status code,
// error code, and human-readable message.
func WriteError(w http.ResponseWriter, status int, errorCode, message string) {
	WriteJSON(w, status, errorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// ParseJSON decodes a bounded request body into v, rejecting unknown fields.
// Failures come back as *domain.ValidationError.
func ParseJSON(w http.ResponseWriter, r *http.Request, v any) error {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "application/json") {
		return &domain.ValidationError{Message: "Content-Type must be application/json"}
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &domain.ValidationError{Message: "request body too large"}
		}
		return &domain.ValidationError{Message: "request body must be valid JSON: " + err.Error()}
	}
	return nil
}

// writeValidation writes a 400 for a validation failure.
func writeValidation(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		WriteError(w, http.StatusBadRequest, "validation_error", ve.Message)
		return
	}
	WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
}

// writeNotRunning writes a 409 naming the manager's current status.
func writeNotRunning(w http.ResponseWriter, status domain.Status) {
	WriteError(w, http.StatusConflict, domain.ErrNotRunning.Error(),
		"trading is "+status.String())
}
