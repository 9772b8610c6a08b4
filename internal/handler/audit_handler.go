package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-console/internal/models"
	"github.com/noah-isme/school-console/pkg/response"
)

type auditLister interface {
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, *models.Pagination, error)
}

// AuditHandler exposes the console audit trail.
type AuditHandler struct {
	sessionScope
	service auditLister
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(svc auditLister, loginPath string) *AuditHandler {
	return &AuditHandler{sessionScope: sessionScope{loginPath: loginPath}, service: svc}
}

// List godoc
// @Summary List console audit records
// @Tags Audit
// @Produce json
// @Param sessionId query string false "Console session ID"
// @Param resource query string false "Resource"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	filter := models.AuditFilter{
		ConsoleSessionID: strings.TrimSpace(c.Query("sessionId")),
		Resource:         strings.TrimSpace(c.Query("resource")),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("pageSize", "50")); err == nil {
		filter.PageSize = size
	}

	logs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, pagination)
}
