package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/service"
)

const defaultEventLimit = 50

type SensorHandler struct {
	simulator      *service.SimulatorService
	parkingService *service.ParkingService
}

func NewSensorHandler(sim *service.SimulatorService, ps *service.ParkingService) *SensorHandler {
	return &SensorHandler{simulator: sim, parkingService: ps}
}

// POST /api/sensors/trigger
func (h *SensorHandler) TriggerEvent(c *gin.Context) {
	var dto domain.TriggerEventDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, "Missing required fields: space_id, event_type")
		return
	}

	result, err := h.simulator.TriggerEvent(c.Request.Context(), dto, domain.SourceManual)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /api/sensors/simulate-random
func (h *SensorHandler) SimulateRandom(c *gin.Context) {
	var dto domain.SimulateRandomDTO
	if err := c.ShouldBindJSON(&dto); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request body")
		return
	}
	if dto.Count == 0 {
		dto.Count = 1
	}

	events, err := h.simulator.SimulateRandomBatch(c.Request.Context(), dto.Count, dto.LotID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Simulated %d sensor events", len(events)),
		"events":  events,
	})
}

// GET /api/sensors/status
func (h *SensorHandler) GetStatus(c *gin.Context) {
	status, err := h.parkingService.SensorStatus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// GET /api/sensors/events?lot_id=&limit=
func (h *SensorHandler) GetRecentEvents(c *gin.Context) {
	lotID, ok := queryOptionalInt(c, "lot_id")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", defaultEventLimit)
	if !ok {
		return
	}

	events, err := h.simulator.RecentEvents(c.Request.Context(), lotID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// GET /api/sensors/auto
func (h *SensorHandler) GetAutoMode(c *gin.Context) {
	c.JSON(http.StatusOK, h.simulator.AutoModeStatus())
}

// POST /api/sensors/auto/start
func (h *SensorHandler) StartAutoMode(c *gin.Context) {
	var dto domain.AutoModeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, "interval_seconds and events_per_interval must be at least 1")
		return
	}

	status, started, err := h.simulator.StartAutoMode(time.Duration(dto.IntervalSeconds)*time.Second, dto.EventsPerInterval, dto.LotID)
	if err != nil {
		respondError(c, err)
		return
	}
	message := "Auto mode started"
	if !started {
		message = "Auto mode is already running"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "started": started, "status": status})
}

// POST /api/sensors/auto/stop
func (h *SensorHandler) StopAutoMode(c *gin.Context) {
	message := "Auto mode stopped"
	if !h.simulator.StopAutoMode() {
		message = "Auto mode is not running"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "status": h.simulator.AutoModeStatus()})
}
