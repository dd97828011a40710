package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amar-rokto/api/internal/dto"
	"github.com/amar-rokto/api/internal/service"
	appErrors "github.com/amar-rokto/api/pkg/errors"
	"github.com/amar-rokto/api/pkg/response"
)

// AlertHandler exposes the urgent-need alert board.
type AlertHandler struct {
	service *service.AlertService
}

// NewAlertHandler creates a new handler.
func NewAlertHandler(svc *service.AlertService) *AlertHandler {
	return &AlertHandler{service: svc}
}

// ListActive godoc
// @Summary Public alert board
// @Description Active urgent-need alerts, optionally filtered by city
// @Tags Alerts
// @Produce json
// @Param city query string false "City"
// @Success 200 {object} response.Envelope
// @Router /alerts [get]
func (h *AlertHandler) ListActive(c *gin.Context) {
	rows, err := h.service.ListActive(c.Request.Context(), c.Query("city"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Publish godoc
// @Summary Publish an alert
// @Tags Alerts
// @Accept json
// @Produce json
// @Param bankId path string true "Blood bank ID"
// @Param payload body dto.CreateAlertRequest true "Alert payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /banks/{bankId}/alerts [post]
func (h *AlertHandler) Publish(c *gin.Context) {
	var req dto.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid alert payload"))
		return
	}

	alert, err := h.service.Publish(c.Request.Context(), c.Param("bankId"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, alert)
}

// ListForBank godoc
// @Summary List a bank's alerts
// @Tags Alerts
// @Produce json
// @Param bankId path string true "Blood bank ID"
// @Success 200 {object} response.Envelope
// @Router /banks/{bankId}/alerts [get]
func (h *AlertHandler) ListForBank(c *gin.Context) {
	rows, err := h.service.ListForBank(c.Request.Context(), c.Param("bankId"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// SetActive godoc
// @Summary Toggle an alert
// @Tags Alerts
// @Accept json
// @Produce json
// @Param bankId path string true "Blood bank ID"
// @Param alertId path string true "Alert ID"
// @Success 204 {object} response.Envelope
// @Router /banks/{bankId}/alerts/{alertId} [patch]
func (h *AlertHandler) SetActive(c *gin.Context) {
	var payload struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid toggle payload"))
		return
	}

	if err := h.service.SetActive(c.Request.Context(), c.Param("bankId"), c.Param("alertId"), payload.Active, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete an alert
// @Tags Alerts
// @Produce json
// @Param bankId path string true "Blood bank ID"
// @Param alertId path string true "Alert ID"
// @Success 204 {object} response.Envelope
// @Router /banks/{bankId}/alerts/{alertId} [delete]
func (h *AlertHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("bankId"), c.Param("alertId"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
