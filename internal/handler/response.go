package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"courier/internal/fare"
	"courier/internal/geo"
	"courier/internal/repository"
	"courier/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, geo.ErrInvalidCoordinate),
		errors.Is(err, fare.ErrInvalidDistance),
		errors.Is(err, service.ErrInvalidCustomerID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidDeliveryID),
		errors.Is(err, service.ErrMissingAddress),
		errors.Is(err, service.ErrMissingContact),
		errors.Is(err, service.ErrSameAddress),
		errors.Is(err, service.ErrInvalidWeight),
		errors.Is(err, service.ErrInvalidRating):
		return http.StatusBadRequest

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrDriverNotAssigned),
		errors.Is(err, service.ErrTrackingNotAllowed):
		return http.StatusForbidden

	// Conflict errors
	case errors.Is(err, service.ErrAlreadyClaimed),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrNotDelivered),
		errors.Is(err, service.ErrAlreadyRated),
		errors.Is(err, service.ErrDriverAlreadyRegistered):
		return http.StatusConflict

	// Default to internal server error; storage failures land here and
	// propagate unchanged.
	default:
		return http.StatusInternalServerError
	}
}
