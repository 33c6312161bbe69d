package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"courier/internal/fare"
	"courier/internal/geo"
)

// QuoteHandler prices a trip without creating anything.
type QuoteHandler struct {
	schedule fare.Schedule
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(schedule fare.Schedule) *QuoteHandler {
	return &QuoteHandler{schedule: schedule}
}

// QuoteRequest is the HTTP request body for a fare quote.
type QuoteRequest struct {
	PickupLat   float64 `json:"pickup_lat"`
	PickupLng   float64 `json:"pickup_lng"`
	DeliveryLat float64 `json:"delivery_lat"`
	DeliveryLng float64 `json:"delivery_lng"`
}

// QuoteResponse is the HTTP representation of a fare quote.
type QuoteResponse struct {
	DistanceKm  float64 `json:"distance_km"`
	BaseFee     int64   `json:"base_fee"`
	DistanceFee int64   `json:"distance_fee"`
	TotalFee    int64   `json:"total_fee"`
	DriverFee   int64   `json:"driver_fee"`
	PlatformFee int64   `json:"platform_fee"`
}

// Quote handles POST /v1/quotes
func (h *QuoteHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	distanceKm, err := geo.DistanceKm(req.PickupLat, req.PickupLng, req.DeliveryLat, req.DeliveryLng)
	if err != nil {
		respondError(c, err)
		return
	}

	quote, err := h.schedule.Quote(distanceKm)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, QuoteResponse{
		DistanceKm:  distanceKm,
		BaseFee:     quote.BaseFee,
		DistanceFee: quote.DistanceFee,
		TotalFee:    quote.TotalFee,
		DriverFee:   quote.DriverFee,
		PlatformFee: quote.PlatformFee,
	})
}
