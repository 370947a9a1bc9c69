package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emmoscript/AutoSlot/internal/service"
)

// LPRHandler exposes the synthetic plate-recognition history.
type LPRHandler struct {
	sessions *service.SessionService
}

func NewLPRHandler(s *service.SessionService) *LPRHandler {
	return &LPRHandler{sessions: s}
}

// GET /api/lpr/history?limit=
func (h *LPRHandler) GetHistory(c *gin.Context) {
	limit, ok := queryInt(c, "limit", defaultHistoryLimit)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.sessions.LPRHistory(limit))
}

// GET /api/lpr/analytics
func (h *LPRHandler) GetAnalytics(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.Analytics())
}
