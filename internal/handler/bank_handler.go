package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amar-rokto/api/internal/dto"
	"github.com/amar-rokto/api/internal/service"
	appErrors "github.com/amar-rokto/api/pkg/errors"
	"github.com/amar-rokto/api/pkg/response"
)

// BankHandler exposes the public bank directory and operator profile routes.
type BankHandler struct {
	service *service.BankService
}

// NewBankHandler creates a new handler.
func NewBankHandler(svc *service.BankService) *BankHandler {
	return &BankHandler{service: svc}
}

// Search godoc
// @Summary Search blood banks
// @Description Public directory with keyword, city and group filters
// @Tags Banks
// @Produce json
// @Param q query string false "Keyword"
// @Param city query string false "City"
// @Param group query string false "Blood group"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /banks [get]
func (h *BankHandler) Search(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	query := dto.BankSearchQuery{
		Keyword:  c.Query("q"),
		City:     c.Query("city"),
		Group:    c.Query("group"),
		Page:     page,
		PageSize: pageSize,
	}

	banks, pagination, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, banks, pagination)
}

// Get godoc
// @Summary Get a blood bank
// @Description Full profile including the current stock map
// @Tags Banks
// @Produce json
// @Param bankId path string true "Blood bank ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /banks/{bankId} [get]
func (h *BankHandler) Get(c *gin.Context) {
	bank, err := h.service.Get(c.Request.Context(), c.Param("bankId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bank, nil)
}

// Update godoc
// @Summary Update a blood bank profile
// @Description Operator-only profile update; search keywords are rebuilt
// @Tags Banks
// @Accept json
// @Produce json
// @Param bankId path string true "Blood bank ID"
// @Param payload body dto.UpdateBankRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /banks/{bankId} [put]
func (h *BankHandler) Update(c *gin.Context) {
	var req dto.UpdateBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bank payload"))
		return
	}

	bank, err := h.service.Update(c.Request.Context(), c.Param("bankId"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bank, nil)
}
