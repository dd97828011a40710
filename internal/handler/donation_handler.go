package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amar-rokto/api/internal/dto"
	"github.com/amar-rokto/api/internal/service"
	appErrors "github.com/amar-rokto/api/pkg/errors"
	"github.com/amar-rokto/api/pkg/response"
)

// DonationHandler exposes donor scheduling and history routes.
type DonationHandler struct {
	service *service.DonationService
}

// NewDonationHandler creates a new handler.
func NewDonationHandler(svc *service.DonationService) *DonationHandler {
	return &DonationHandler{service: svc}
}

// Schedule godoc
// @Summary Schedule a donation
// @Description Book a donation appointment; it enters the bank's pending queue
// @Tags Donations
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleDonationRequest true "Appointment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /donations [post]
func (h *DonationHandler) Schedule(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ScheduleDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid donation payload"))
		return
	}

	record, err := h.service.Schedule(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// History godoc
// @Summary List my donations
// @Description The caller's donation history, latest first
// @Tags Donations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /donations [get]
func (h *DonationHandler) History(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	rows, err := h.service.History(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Stats godoc
// @Summary Donor dashboard stats
// @Description Approved count, pending count and next upcoming appointment
// @Tags Donations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /donations/stats [get]
func (h *DonationHandler) Stats(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// BankHistory godoc
// @Summary List a bank's donation ledger
// @Description Every donation record for the bank regardless of status
// @Tags Donations
// @Produce json
// @Param bankId path string true "Blood bank ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /banks/{bankId}/donations [get]
func (h *DonationHandler) BankHistory(c *gin.Context) {
	rows, err := h.service.BankHistory(c.Request.Context(), c.Param("bankId"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
