package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/school-console/internal/dto"
	"github.com/noah-isme/school-console/internal/service"
	"github.com/noah-isme/school-console/pkg/response"
)

type consoleSessionService interface {
	Open(ctx context.Context, token string) (*service.ConsoleSession, error)
	Close(ctx context.Context, id string) error
}

// SessionHandler signs console users in and out.
type SessionHandler struct {
	sessionScope
	service   consoleSessionService
	validate  *validator.Validate
	headerKey string
}

// NewSessionHandler constructs the handler. headerKey is the header clients
// must echo the session id in.
func NewSessionHandler(svc consoleSessionService, validate *validator.Validate, headerKey, loginPath string) *SessionHandler {
	return &SessionHandler{
		sessionScope: sessionScope{loginPath: loginPath},
		service:      svc,
		validate:     validate,
		headerKey:    headerKey,
	}
}

// Open godoc
// @Summary Open a console session
// @Description Exchanges a bearer token issued by the login service for a console session id. The token may be sent in the body or the Authorization header.
// @Tags Console
// @Accept json
// @Produce json
// @Param payload body dto.OpenSessionRequest false "Token"
// @Success 201 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, invalidPayload(err))
			return
		}
	}
	if req.Token == "" {
		req.Token = bearerToken(c.GetHeader("Authorization"))
	}
	if err := validateRequest(h.validate, req); err != nil {
		response.Error(c, err)
		return
	}

	session, err := h.service.Open(c.Request.Context(), req.Token)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header(h.headerKey, session.ID)
	response.Created(c, dto.ConsoleSessionResponse{
		SessionID: session.ID,
		Header:    h.headerKey,
		ExpiresAt: session.ExpiresAt,
	})
}

// Current godoc
// @Summary Describe the current console session
// @Tags Console
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sessions/current [get]
func (h *SessionHandler) Current(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, session.Info(), nil)
}

// Close godoc
// @Summary Sign out of the console
// @Tags Console
// @Success 204
// @Router /sessions/current [delete]
func (h *SessionHandler) Close(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.service.Close(c.Request.Context(), session.ID); err != nil {
		h.fail(c, err)
		return
	}
	response.NoContent(c)
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
