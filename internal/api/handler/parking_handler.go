package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/service"
)

const defaultHistoryLimit = 100

type ParkingSessionHandler struct {
	sessions *service.SessionService
}

func NewParkingSessionHandler(s *service.SessionService) *ParkingSessionHandler {
	return &ParkingSessionHandler{sessions: s}
}

// POST /api/sessions/entry
func (h *ParkingSessionHandler) VehicleEntry(c *gin.Context) {
	var dto domain.SessionSpaceDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, "Missing required field: space_id")
		return
	}

	record, err := h.sessions.OnEntry(c.Request.Context(), dto.SpaceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// POST /api/sessions/exit
func (h *ParkingSessionHandler) VehicleExit(c *gin.Context) {
	var dto domain.SessionSpaceDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, "Missing required field: space_id")
		return
	}

	result, err := h.sessions.OnExit(c.Request.Context(), dto.SpaceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/sessions/active
func (h *ParkingSessionHandler) GetActiveSessions(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.ActiveSessions())
}

// GET /api/transactions?limit=
func (h *ParkingSessionHandler) GetTransactions(c *gin.Context) {
	limit, ok := queryInt(c, "limit", defaultHistoryLimit)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.sessions.Transactions(limit))
}
