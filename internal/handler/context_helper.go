package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/school-console/internal/middleware"
	"github.com/noah-isme/school-console/internal/service"
	appErrors "github.com/noah-isme/school-console/pkg/errors"
	"github.com/noah-isme/school-console/pkg/response"
)

// sessionScope gives handlers access to the resolved console session and the
// login redirect used when it has gone away.
type sessionScope struct {
	loginPath string
}

func (s sessionScope) session(c *gin.Context) (*service.ConsoleSession, bool) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.LoginRequired(c, appErrors.ErrLoginRequired, s.loginPath)
		return nil, false
	}
	return session, true
}

// fail answers with the error envelope, adding the login redirect for 401s.
func (s sessionScope) fail(c *gin.Context, err error) {
	if appErrors.IsUnauthorized(err) {
		response.LoginRequired(c, err, s.loginPath)
		return
	}
	response.Error(c, err)
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
}

// validateRequest runs struct validation and lists the failing fields.
func validateRequest(v *validator.Validate, req interface{}) error {
	if v == nil {
		return nil
	}
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return invalidPayload(err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return appErrors.Clone(appErrors.ErrValidation, "invalid "+strings.Join(fields, ", "))
}

func withMeta(c *gin.Context) map[string]interface{} {
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return meta
}
