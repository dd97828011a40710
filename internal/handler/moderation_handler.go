package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amar-rokto/api/internal/dto"
	"github.com/amar-rokto/api/internal/models"
	"github.com/amar-rokto/api/internal/service"
	appErrors "github.com/amar-rokto/api/pkg/errors"
	"github.com/amar-rokto/api/pkg/response"
)

// ModerationHandler exposes the bank operator's pending-queue endpoints.
type ModerationHandler struct {
	service *service.ModerationService
}

// NewModerationHandler creates a new handler.
func NewModerationHandler(svc *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{service: svc}
}

// ListPending godoc
// @Summary List pending records
// @Description Pending donations and blood requests awaiting the bank's decision
// @Tags Moderation
// @Produce json
// @Param bankId path string true "Blood bank ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /banks/{bankId}/pending [get]
func (h *ModerationHandler) ListPending(c *gin.Context) {
	snapshot, err := h.service.ListPending(c.Request.Context(), c.Param("bankId"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// Approve godoc
// @Summary Approve a pending record
// @Description Approve a donation (stock credited) or blood request (stock debited)
// @Tags Moderation
// @Accept json
// @Produce json
// @Param bankId path string true "Blood bank ID"
// @Param recordId path string true "Record ID"
// @Param payload body dto.ModerateRequest true "Record kind"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /banks/{bankId}/pending/{recordId}/approve [post]
func (h *ModerationHandler) Approve(c *gin.Context) {
	h.moderate(c, models.StatusApproved)
}

// Reject godoc
// @Summary Reject a pending record
// @Description Reject a donation or blood request without touching stock
// @Tags Moderation
// @Accept json
// @Produce json
// @Param bankId path string true "Blood bank ID"
// @Param recordId path string true "Record ID"
// @Param payload body dto.ModerateRequest true "Record kind"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /banks/{bankId}/pending/{recordId}/reject [post]
func (h *ModerationHandler) Reject(c *gin.Context) {
	h.moderate(c, models.StatusRejected)
}

func (h *ModerationHandler) moderate(c *gin.Context, status models.RecordStatus) {
	var req dto.ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid moderation payload"))
		return
	}

	bankID := c.Param("bankId")
	recordID := c.Param("recordId")
	claims := claimsFromContext(c)

	var result *dto.ModerationResult
	var err error
	if status == models.StatusApproved {
		result, err = h.service.Approve(c.Request.Context(), bankID, recordID, req.Kind, claims)
	} else {
		result, err = h.service.Reject(c.Request.Context(), bankID, recordID, req.Kind, claims)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AdjustStock godoc
// @Summary Adjust stock manually
// @Description Add or remove units for one blood group, clamped at zero
// @Tags Moderation
// @Accept json
// @Produce json
// @Param bankId path string true "Blood bank ID"
// @Param payload body dto.AdjustStockRequest true "Adjustment"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /banks/{bankId}/stock [patch]
func (h *ModerationHandler) AdjustStock(c *gin.Context) {
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid stock adjustment"))
		return
	}

	stock, err := h.service.AdjustStock(c.Request.Context(), c.Param("bankId"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"stock": stock}, nil)
}
