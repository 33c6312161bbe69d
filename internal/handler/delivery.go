package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"courier/internal/domain"
	"courier/internal/repository"
	"courier/internal/service"
)

// DeliveryHandler handles HTTP requests for deliveries.
type DeliveryHandler struct {
	dispatchService  *service.DispatchService
	lifecycleService *service.LifecycleService
	locatorService   *service.LocatorService
	trackingService  *service.TrackingService
	deliveryRepo     repository.DeliveryRepository
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(
	dispatchService *service.DispatchService,
	lifecycleService *service.LifecycleService,
	locatorService *service.LocatorService,
	trackingService *service.TrackingService,
	deliveryRepo repository.DeliveryRepository,
) *DeliveryHandler {
	return &DeliveryHandler{
		dispatchService:  dispatchService,
		lifecycleService: lifecycleService,
		locatorService:   locatorService,
		trackingService:  trackingService,
		deliveryRepo:     deliveryRepo,
	}
}

// CreateDeliveryRequest is the HTTP request body for creating a delivery.
type CreateDeliveryRequest struct {
	CustomerID string `json:"customer_id"`

	PickupAddress      string  `json:"pickup_address"`
	PickupLat          float64 `json:"pickup_lat"`
	PickupLng          float64 `json:"pickup_lng"`
	PickupContactName  string  `json:"pickup_contact_name"`
	PickupContactPhone string  `json:"pickup_contact_phone"`
	PickupNotes        string  `json:"pickup_notes,omitempty"`

	DeliveryAddress      string  `json:"delivery_address"`
	DeliveryLat          float64 `json:"delivery_lat"`
	DeliveryLng          float64 `json:"delivery_lng"`
	DeliveryContactName  string  `json:"delivery_contact_name"`
	DeliveryContactPhone string  `json:"delivery_contact_phone"`
	DeliveryNotes        string  `json:"delivery_notes,omitempty"`

	ItemDescription string  `json:"item_description,omitempty"`
	ItemWeightKg    float64 `json:"item_weight_kg,omitempty"`
	PackageSize     string  `json:"package_size,omitempty"`
}

// DriverActionRequest identifies the driver performing an action.
type DriverActionRequest struct {
	DriverID string `json:"driver_id"`
}

// CancelDeliveryRequest is the HTTP request body for cancelling.
type CancelDeliveryRequest struct {
	CancelledBy string `json:"cancelled_by"`
}

// RateDeliveryRequest is the HTTP request body for rating.
type RateDeliveryRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review,omitempty"`
}

// AppendTrackingRequest is the HTTP request body for a position sample.
type AppendTrackingRequest struct {
	DriverID string  `json:"driver_id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// DeliveryResponse is the HTTP representation of a delivery.
type DeliveryResponse struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	DriverID   string `json:"driver_id,omitempty"`

	PickupAddress      string  `json:"pickup_address"`
	PickupLat          float64 `json:"pickup_lat"`
	PickupLng          float64 `json:"pickup_lng"`
	PickupContactName  string  `json:"pickup_contact_name"`
	PickupContactPhone string  `json:"pickup_contact_phone"`
	PickupNotes        string  `json:"pickup_notes,omitempty"`

	DeliveryAddress      string  `json:"delivery_address"`
	DeliveryLat          float64 `json:"delivery_lat"`
	DeliveryLng          float64 `json:"delivery_lng"`
	DeliveryContactName  string  `json:"delivery_contact_name"`
	DeliveryContactPhone string  `json:"delivery_contact_phone"`
	DeliveryNotes        string  `json:"delivery_notes,omitempty"`

	ItemDescription string  `json:"item_description,omitempty"`
	ItemWeightKg    float64 `json:"item_weight_kg,omitempty"`
	PackageSize     string  `json:"package_size,omitempty"`

	DistanceKm  float64 `json:"distance_km"`
	BaseFee     int64   `json:"base_fee"`
	DistanceFee int64   `json:"distance_fee"`
	TotalFee    int64   `json:"total_fee"`
	DriverFee   int64   `json:"driver_fee"`
	PlatformFee int64   `json:"platform_fee"`

	Status string `json:"status"`

	CustomerRating int    `json:"customer_rating,omitempty"`
	CustomerReview string `json:"customer_review,omitempty"`

	CreatedAt   string `json:"created_at"`
	AcceptedAt  string `json:"accepted_at,omitempty"`
	PickedUpAt  string `json:"picked_up_at,omitempty"`
	DeliveredAt string `json:"delivered_at,omitempty"`
	CancelledAt string `json:"cancelled_at,omitempty"`
}

// TrackingSampleResponse is the HTTP representation of one sample.
type TrackingSampleResponse struct {
	ID        string  `json:"id"`
	DriverID  string  `json:"driver_id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	CreatedAt string  `json:"created_at"`
}

func toDeliveryResponse(d *domain.Delivery) DeliveryResponse {
	return DeliveryResponse{
		ID:                   d.ID,
		CustomerID:           d.CustomerID,
		DriverID:             d.DriverID,
		PickupAddress:        d.PickupAddress,
		PickupLat:            d.PickupLat,
		PickupLng:            d.PickupLng,
		PickupContactName:    d.PickupContactName,
		PickupContactPhone:   d.PickupContactPhone,
		PickupNotes:          d.PickupNotes,
		DeliveryAddress:      d.DeliveryAddress,
		DeliveryLat:          d.DeliveryLat,
		DeliveryLng:          d.DeliveryLng,
		DeliveryContactName:  d.DeliveryContactName,
		DeliveryContactPhone: d.DeliveryContactPhone,
		DeliveryNotes:        d.DeliveryNotes,
		ItemDescription:      d.ItemDescription,
		ItemWeightKg:         d.ItemWeightKg,
		PackageSize:          d.PackageSize,
		DistanceKm:           d.DistanceKm,
		BaseFee:              d.BaseFee,
		DistanceFee:          d.DistanceFee,
		TotalFee:             d.TotalFee,
		DriverFee:            d.DriverFee,
		PlatformFee:          d.PlatformFee,
		Status:               string(d.Status),
		CustomerRating:       d.CustomerRating,
		CustomerReview:       d.CustomerReview,
		CreatedAt:            formatTime(d.CreatedAt),
		AcceptedAt:           formatTime(d.AcceptedAt),
		PickedUpAt:           formatTime(d.PickedUpAt),
		DeliveredAt:          formatTime(d.DeliveredAt),
		CancelledAt:          formatTime(d.CancelledAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// Create handles POST /v1/deliveries
func (h *DeliveryHandler) Create(c *gin.Context) {
	var req CreateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	delivery, err := h.dispatchService.CreateDelivery(c.Request.Context(), service.CreateDeliveryRequest{
		CustomerID:           req.CustomerID,
		PickupAddress:        req.PickupAddress,
		PickupLat:            req.PickupLat,
		PickupLng:            req.PickupLng,
		PickupContactName:    req.PickupContactName,
		PickupContactPhone:   req.PickupContactPhone,
		PickupNotes:          req.PickupNotes,
		DeliveryAddress:      req.DeliveryAddress,
		DeliveryLat:          req.DeliveryLat,
		DeliveryLng:          req.DeliveryLng,
		DeliveryContactName:  req.DeliveryContactName,
		DeliveryContactPhone: req.DeliveryContactPhone,
		DeliveryNotes:        req.DeliveryNotes,
		ItemDescription:      req.ItemDescription,
		ItemWeightKg:         req.ItemWeightKg,
		PackageSize:          req.PackageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDeliveryResponse(delivery))
}

// Get handles GET /v1/deliveries/:id
func (h *DeliveryHandler) Get(c *gin.Context) {
	delivery, err := h.deliveryRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDeliveryResponse(delivery))
}

// GetAll handles GET /v1/deliveries
func (h *DeliveryHandler) GetAll(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		deliveries []*domain.Delivery
		err        error
	)
	if customerID := c.Query("customer_id"); customerID != "" {
		deliveries, err = h.deliveryRepo.GetByCustomerID(ctx, customerID)
	} else {
		deliveries, err = h.deliveryRepo.GetAll(ctx)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDeliveryResponses(deliveries))
}

// GetAvailable handles GET /v1/deliveries/available
func (h *DeliveryHandler) GetAvailable(c *gin.Context) {
	driverID := c.Query("driver_id")

	deliveries, err := h.locatorService.AvailableDeliveries(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDeliveryResponses(deliveries))
}

// Claim handles POST /v1/deliveries/:id/claim
func (h *DeliveryHandler) Claim(c *gin.Context) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	delivery, err := h.dispatchService.Claim(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDeliveryResponse(delivery))
}

// Pickup handles POST /v1/deliveries/:id/pickup
func (h *DeliveryHandler) Pickup(c *gin.Context) {
	h.advance(c, domain.DeliveryStatusPickedUp)
}

// Transit handles POST /v1/deliveries/:id/transit
func (h *DeliveryHandler) Transit(c *gin.Context) {
	h.advance(c, domain.DeliveryStatusInTransit)
}

// Complete handles POST /v1/deliveries/:id/complete
func (h *DeliveryHandler) Complete(c *gin.Context) {
	h.advance(c, domain.DeliveryStatusDelivered)
}

func (h *DeliveryHandler) advance(c *gin.Context, next domain.DeliveryStatus) {
	var req DriverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	delivery, err := h.lifecycleService.Advance(c.Request.Context(), c.Param("id"), req.DriverID, next)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDeliveryResponse(delivery))
}

// Cancel handles POST /v1/deliveries/:id/cancel
func (h *DeliveryHandler) Cancel(c *gin.Context) {
	var req CancelDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	delivery, err := h.lifecycleService.Cancel(c.Request.Context(), c.Param("id"), req.CancelledBy)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDeliveryResponse(delivery))
}

// Rate handles POST /v1/deliveries/:id/rating
func (h *DeliveryHandler) Rate(c *gin.Context) {
	var req RateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	delivery, err := h.lifecycleService.Rate(c.Request.Context(), c.Param("id"), req.Rating, req.Review)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDeliveryResponse(delivery))
}

// AppendTracking handles POST /v1/deliveries/:id/tracking
func (h *DeliveryHandler) AppendTracking(c *gin.Context) {
	var req AppendTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	sample, err := h.trackingService.Append(c.Request.Context(), c.Param("id"), req.DriverID, req.Lat, req.Lng)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, TrackingSampleResponse{
		ID:        sample.ID,
		DriverID:  sample.DriverID,
		Lat:       sample.Lat,
		Lng:       sample.Lng,
		CreatedAt: formatTime(sample.CreatedAt),
	})
}

// GetTracking handles GET /v1/deliveries/:id/tracking
func (h *DeliveryHandler) GetTracking(c *gin.Context) {
	samples, err := h.trackingService.Route(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TrackingSampleResponse, 0, len(samples))
	for _, s := range samples {
		response = append(response, TrackingSampleResponse{
			ID:        s.ID,
			DriverID:  s.DriverID,
			Lat:       s.Lat,
			Lng:       s.Lng,
			CreatedAt: formatTime(s.CreatedAt),
		})
	}

	respondJSON(c, http.StatusOK, response)
}

func toDeliveryResponses(deliveries []*domain.Delivery) []DeliveryResponse {
	response := make([]DeliveryResponse, 0, len(deliveries))
	for _, d := range deliveries {
		response = append(response, toDeliveryResponse(d))
	}
	return response
}
