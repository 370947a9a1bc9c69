package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emmoscript/AutoSlot/internal/domain"
	"github.com/emmoscript/AutoSlot/internal/pricing"
	"github.com/emmoscript/AutoSlot/internal/service"
)

type PricingHandler struct {
	pricingService *service.PricingService
}

func NewPricingHandler(ps *service.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: ps}
}

// GET /api/pricing/factors
func (h *PricingHandler) GetFactors(c *gin.Context) {
	c.JSON(http.StatusOK, h.pricingService.Snapshot())
}

// PATCH /api/pricing/factors
func (h *PricingHandler) UpdateFactors(c *gin.Context) {
	var patch pricing.FactorsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid pricing factors payload")
		return
	}

	snapshot, err := h.pricingService.UpdateFactors(patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// POST /api/pricing/toggle
func (h *PricingHandler) Toggle(c *gin.Context) {
	c.JSON(http.StatusOK, h.pricingService.Toggle())
}

// GET /api/spaces/:id/price?at=
func (h *PricingHandler) GetSpacePrice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	at, ok := queryTime(c, "at")
	if !ok {
		return
	}

	quote, err := h.pricingService.QuoteSpace(c.Request.Context(), id, at)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// GET /api/lots/:id/prices?at=
func (h *PricingHandler) GetLotPrices(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	at, ok := queryTime(c, "at")
	if !ok {
		return
	}

	quotes, err := h.pricingService.QuoteLot(c.Request.Context(), id, at)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quotes)
}

// GET /api/pricing/preview?base_price=&zone=&occupancy=&at=
func (h *PricingHandler) Preview(c *gin.Context) {
	req := service.PricingPreviewRequest{Zone: domain.ZoneType(c.Query("zone"))}

	var err error
	if req.BasePrice, err = strconv.ParseFloat(c.DefaultQuery("base_price", "5"), 64); err != nil {
		badRequest(c, "Invalid base_price")
		return
	}
	if req.Occupancy, err = strconv.ParseFloat(c.DefaultQuery("occupancy", "0"), 64); err != nil {
		badRequest(c, "Invalid occupancy")
		return
	}
	var ok bool
	if req.At, ok = queryTime(c, "at"); !ok {
		return
	}

	preview, err := h.pricingService.Preview(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func queryTime(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		badRequest(c, "Invalid "+name+", expected RFC3339")
		return time.Time{}, false
	}
	return t, true
}
