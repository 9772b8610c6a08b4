package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-console/internal/dto"
	"github.com/noah-isme/school-console/internal/models"
	"github.com/noah-isme/school-console/internal/service"
	appErrors "github.com/noah-isme/school-console/pkg/errors"
	"github.com/noah-isme/school-console/pkg/response"
)

type entityMutator interface {
	Submit(ctx context.Context, session *service.ConsoleSession, payload dto.EntityPayload) (dto.EntityAck, error)
	Delete(ctx context.Context, session *service.ConsoleSession, resource models.Resource, id models.ID) (dto.EntityAck, error)
}

// EntityHandler forwards entity form submissions and deletions to the school API.
type EntityHandler struct {
	sessionScope
	service entityMutator
}

// NewEntityHandler constructs the handler.
func NewEntityHandler(svc entityMutator, loginPath string) *EntityHandler {
	return &EntityHandler{sessionScope: sessionScope{loginPath: loginPath}, service: svc}
}

// Submit godoc
// @Summary Create or update an entity
// @Description A payload with an id updates the entity, otherwise one is created. The dashboard refetches afterwards.
// @Tags Entities
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /questions [post]
// @Router /classes [post]
// @Router /students [post]
// @Router /subjects [post]
// @Router /sessions-admin [post]
func (h *EntityHandler) Submit(resource models.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := h.session(c)
		if !ok {
			return
		}
		payload, err := bindPayload(c, resource)
		if err != nil {
			h.fail(c, err)
			return
		}
		ack, err := h.service.Submit(c.Request.Context(), session, payload)
		if err != nil {
			h.fail(c, err)
			return
		}
		status := http.StatusCreated
		if ack.Updated {
			status = http.StatusOK
		}
		response.JSON(c, status, ack, nil)
	}
}

// Delete godoc
// @Summary Delete an entity
// @Tags Entities
// @Produce json
// @Param id path string true "Entity ID"
// @Success 200 {object} response.Envelope
// @Router /questions/{id} [delete]
// @Router /classes/{id} [delete]
// @Router /students/{id} [delete]
// @Router /subjects/{id} [delete]
// @Router /sessions-admin/{id} [delete]
func (h *EntityHandler) Delete(resource models.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := h.session(c)
		if !ok {
			return
		}
		id := models.ID(strings.TrimSpace(c.Param("id")))
		ack, err := h.service.Delete(c.Request.Context(), session, resource, id)
		if err != nil {
			h.fail(c, err)
			return
		}
		response.JSON(c, http.StatusOK, ack, nil)
	}
}

func bindPayload(c *gin.Context, resource models.Resource) (dto.EntityPayload, error) {
	var (
		payload dto.EntityPayload
		err     error
	)
	switch resource {
	case models.ResourceQuestions:
		var p dto.QuestionPayload
		err = c.ShouldBindJSON(&p)
		payload = p
	case models.ResourceClasses:
		var p dto.ClassPayload
		err = c.ShouldBindJSON(&p)
		payload = p
	case models.ResourceStudents:
		var p dto.StudentPayload
		err = c.ShouldBindJSON(&p)
		payload = p
	case models.ResourceSubjects:
		var p dto.SubjectPayload
		err = c.ShouldBindJSON(&p)
		payload = p
	case models.ResourceSessions:
		var p dto.SessionPayload
		err = c.ShouldBindJSON(&p)
		payload = p
	default:
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown resource %q", resource))
	}
	if err != nil {
		return nil, invalidPayload(err)
	}
	return payload, nil
}
