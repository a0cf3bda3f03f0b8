package common

import (
	"net/http"

	"deskhive.com/deskhive/core/faults"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		Message: message,
	}
}

// FaultStatus maps a domain fault kind to an HTTP status.
func FaultStatus(err error) int {
	switch faults.KindOf(err) {
	case faults.Validation:
		return http.StatusBadRequest
	case faults.NotFound:
		return http.StatusNotFound
	case faults.Conflict:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// NewFaultResponse renders a domain fault with its kind tag so callers can
// switch on it instead of parsing the message.
func NewFaultResponse(err error) *ErrorResponse {
	return &ErrorResponse{
		Message: err.Error(),
		Kind:    string(faults.KindOf(err)),
	}
}
