package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amar-rokto/api/internal/service"
	"github.com/amar-rokto/api/pkg/response"
)

// DashboardHandler exposes the admin and operator dashboard aggregates.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// AdminStats godoc
// @Summary Admin counters
// @Description Platform-wide totals and pending counts, cached
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *DashboardHandler) AdminStats(c *gin.Context) {
	stats, err := h.service.AdminStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// LowStock godoc
// @Summary Low stock overview
// @Description Every bank group at or under its alert threshold
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/low-stock [get]
func (h *DashboardHandler) LowStock(c *gin.Context) {
	entries, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// BankOverview godoc
// @Summary Operator dashboard header
// @Description The bank profile plus its own low-stock groups
// @Tags Dashboard
// @Produce json
// @Param bankId path string true "Blood bank ID"
// @Success 200 {object} response.Envelope
// @Router /banks/{bankId}/overview [get]
func (h *DashboardHandler) BankOverview(c *gin.Context) {
	bank, low, err := h.service.BankOverview(c.Request.Context(), c.Param("bankId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"bank": bank, "low_stock": low}, nil)
}
