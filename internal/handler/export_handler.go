package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amar-rokto/api/internal/service"
	appErrors "github.com/amar-rokto/api/pkg/errors"
	"github.com/amar-rokto/api/pkg/response"
)

// ExportHandler streams CSV/PDF reports of a bank's ledgers.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Export godoc
// @Summary Export a bank report
// @Description Download the bank's donations, requests or stock as CSV or PDF
// @Tags Exports
// @Produce octet-stream
// @Param bankId path string true "Blood bank ID"
// @Param report path string true "Report: donations, requests or stock"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /banks/{bankId}/exports/{report} [get]
func (h *ExportHandler) Export(c *gin.Context) {
	bankID := c.Param("bankId")
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	claims := claimsFromContext(c)
	ctx := c.Request.Context()

	var (
		result *service.ExportResult
		err    error
	)
	switch c.Param("report") {
	case "donations":
		result, err = h.service.Donations(ctx, bankID, format, claims)
	case "requests":
		result, err = h.service.Requests(ctx, bankID, format, claims)
	case "stock":
		result, err = h.service.Stock(ctx, bankID, format, claims)
	default:
		err = appErrors.Clone(appErrors.ErrValidation, "report must be donations, requests or stock")
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
