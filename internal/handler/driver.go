package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"courier/internal/domain"
	"courier/internal/repository"
	"courier/internal/service"
)

// DriverHandler handles HTTP requests for driver presence.
type DriverHandler struct {
	driverService  *service.DriverService
	locatorService *service.LocatorService
	driverRepo     repository.DriverRepository
	deliveryRepo   repository.DeliveryRepository
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(
	driverService *service.DriverService,
	locatorService *service.LocatorService,
	driverRepo repository.DriverRepository,
	deliveryRepo repository.DeliveryRepository,
) *DriverHandler {
	return &DriverHandler{
		driverService:  driverService,
		locatorService: locatorService,
		driverRepo:     driverRepo,
		deliveryRepo:   deliveryRepo,
	}
}

// RegisterDriverRequest is the HTTP request body for registration.
type RegisterDriverRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// UpdateLocationRequest is the HTTP request body for a location push.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SetAvailabilityRequest is the HTTP request body for availability.
type SetAvailabilityRequest struct {
	Available *bool `json:"available"`
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	Available      bool    `json:"available"`
	CurrentLat     float64 `json:"current_lat,omitempty"`
	CurrentLng     float64 `json:"current_lng,omitempty"`
	LocatedAt      string  `json:"located_at,omitempty"`
	Rating         float64 `json:"rating"`
	RatingCount    int     `json:"rating_count"`
	CompletedTrips int     `json:"completed_trips"`
	TotalEarnings  int64   `json:"total_earnings"`
}

// CandidateResponse is the HTTP representation of one nearby driver.
type CandidateResponse struct {
	DriverID   string  `json:"driver_id"`
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	DistanceKm float64 `json:"distance_km"`
	Rating     float64 `json:"rating"`
}

func toDriverResponse(d *domain.DriverPresence) DriverResponse {
	return DriverResponse{
		ID:             d.ID,
		Name:           d.Name,
		Phone:          d.Phone,
		Available:      d.Available,
		CurrentLat:     d.CurrentLat,
		CurrentLng:     d.CurrentLng,
		LocatedAt:      formatTime(d.LocatedAt),
		Rating:         d.Rating,
		RatingCount:    d.RatingCount,
		CompletedTrips: d.CompletedTrips,
		TotalEarnings:  d.TotalEarnings,
	}
}

// Register handles POST /v1/drivers
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.Register(c.Request.Context(), req.Name, req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDriverResponse(driver))
}

// Get handles GET /v1/drivers/:id
func (h *DriverHandler) Get(c *gin.Context) {
	driver, err := h.driverRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// GetAll handles GET /v1/drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	drivers, err := h.driverRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, toDriverResponse(d))
	}

	respondJSON(c, http.StatusOK, response)
}

// Nearby handles GET /v1/drivers/nearby?lat=..&lng=..&radius_km=..&limit=..
func (h *DriverHandler) Nearby(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lat and lng query parameters are required"})
		return
	}

	radiusKm, _ := strconv.ParseFloat(c.Query("radius_km"), 64)
	limit, _ := strconv.Atoi(c.Query("limit"))

	candidates, err := h.locatorService.FindNearby(c.Request.Context(), lat, lng, radiusKm, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]CandidateResponse, 0, len(candidates))
	for _, cand := range candidates {
		response = append(response, CandidateResponse{
			DriverID:   cand.DriverID,
			Name:       cand.Name,
			Lat:        cand.Lat,
			Lng:        cand.Lng,
			DistanceKm: cand.DistanceKm,
			Rating:     cand.Rating,
		})
	}

	respondJSON(c, http.StatusOK, response)
}

// UpdateLocation handles POST /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.driverService.UpdateLocation(c.Request.Context(), c.Param("id"), req.Lat, req.Lng); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"message": "location updated"})
}

// SetAvailability handles POST /v1/drivers/:id/availability
func (h *DriverHandler) SetAvailability(c *gin.Context) {
	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Available == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "available field is required"})
		return
	}

	if err := h.driverService.SetAvailability(c.Request.Context(), c.Param("id"), *req.Available); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"available": *req.Available})
}

// ActiveDeliveries handles GET /v1/drivers/:id/deliveries
func (h *DriverHandler) ActiveDeliveries(c *gin.Context) {
	deliveries, err := h.deliveryRepo.GetActiveByDriverID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDeliveryResponses(deliveries))
}

// History handles GET /v1/drivers/:id/history?limit=..
func (h *DriverHandler) History(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	deliveries, err := h.deliveryRepo.GetHistoryByDriverID(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toDeliveryResponses(deliveries))
}
