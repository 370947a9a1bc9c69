package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/service"
)

type ParkingSpaceHandler struct {
	parkingService *service.ParkingService
	simulator      *service.SimulatorService
}

func NewParkingSpaceHandler(ps *service.ParkingService, sim *service.SimulatorService) *ParkingSpaceHandler {
	return &ParkingSpaceHandler{parkingService: ps, simulator: sim}
}

// GET /api/spaces/:id
func (h *ParkingSpaceHandler) GetParkingSpace(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	space, err := h.parkingService.GetParkingSpace(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, space)
}

// PATCH /api/spaces/:id/availability
func (h *ParkingSpaceHandler) UpdateAvailability(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var dto domain.UpdateAvailabilityDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, "Missing required field: is_available")
		return
	}

	space, err := h.simulator.SetAvailability(c.Request.Context(), id, *dto.IsAvailable)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, space)
}

// POST /api/spaces/reset
func (h *ParkingSpaceHandler) ResetAll(c *gin.Context) {
	changed, err := h.simulator.ResetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All spaces have been reset to available", "changed": changed})
}
