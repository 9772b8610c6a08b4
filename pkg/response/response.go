package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-console/internal/models"
	appErrors "github.com/noah-isme/school-console/pkg/errors"
)

// RedirectMetaKey is the meta field telling the browser where to navigate.
const RedirectMetaKey = "redirect"

// Envelope represents the common response contract.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	envelope := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && len(meta[0]) > 0 {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error, meta ...map[string]interface{}) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	envelope := Envelope{Error: appErr}
	if len(meta) > 0 && len(meta[0]) > 0 {
		envelope.Meta = meta[0]
	}
	c.JSON(appErr.Status, envelope)
}

// LoginRequired answers 401 with the login page in meta.redirect. Any
// unauthorized error is reported with the LOGIN_REQUIRED code.
func LoginRequired(c *gin.Context, err error, loginPath string) {
	appErr := appErrors.FromError(err)
	if appErr == nil || !appErrors.IsUnauthorized(appErr) {
		appErr = appErrors.ErrLoginRequired
	}
	if appErr.Code != appErrors.ErrLoginRequired.Code {
		appErr = appErrors.Wrap(appErr, appErrors.ErrLoginRequired.Code, appErrors.ErrLoginRequired.Status, appErrors.ErrLoginRequired.Message)
	}
	Error(c, appErr, map[string]interface{}{RedirectMetaKey: loginPath})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
