package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/school-console/internal/dto"
	"github.com/noah-isme/school-console/internal/service"
	appErrors "github.com/noah-isme/school-console/pkg/errors"
	"github.com/noah-isme/school-console/pkg/export"
)

type dashboardExporter interface {
	Export(snap service.DashboardSnapshot, report service.ExportReport, format export.Format) (*service.ExportFile, error)
}

// ExportHandler streams CSV or PDF renderings of the current dashboard data.
type ExportHandler struct {
	sessionScope
	service  dashboardExporter
	validate *validator.Validate
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc dashboardExporter, validate *validator.Validate, loginPath string) *ExportHandler {
	return &ExportHandler{sessionScope: sessionScope{loginPath: loginPath}, service: svc, validate: validate}
}

// Export godoc
// @Summary Export dashboard data
// @Tags Dashboard
// @Produce text/csv
// @Produce application/pdf
// @Param report query string true "fees, students or questions"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /dashboard/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.fail(c, invalidPayload(err))
		return
	}
	if err := validateRequest(h.validate, req); err != nil {
		h.fail(c, err)
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		h.fail(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	file, err := h.service.Export(session.Dashboard.Snapshot(), service.ExportReport(req.Report), format)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
