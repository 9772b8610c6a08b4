package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-console/internal/service"
	appErrors "github.com/noah-isme/school-console/pkg/errors"
	"github.com/noah-isme/school-console/pkg/logger"
	"github.com/noah-isme/school-console/pkg/response"
)

// ContextSessionKey is the gin context key storing the resolved console session.
const ContextSessionKey = "consoleSession"

// sessionQueryParam lets EventSource clients, which cannot set headers, name
// their session.
const sessionQueryParam = "session"

type sessionResolver interface {
	Resolve(ctx context.Context, id string) (*service.ConsoleSession, error)
}

// ConsoleSession resolves the console session named by header and attaches it
// to the request. Missing, expired or signed-out sessions get a 401 with a
// redirect to loginPath.
func ConsoleSession(resolver sessionResolver, header, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(header))
		if id == "" {
			id = strings.TrimSpace(c.Query(sessionQueryParam))
		}
		if id == "" {
			response.LoginRequired(c, appErrors.Clone(appErrors.ErrLoginRequired, "console session header missing"), loginPath)
			c.Abort()
			return
		}

		session, err := resolver.Resolve(c.Request.Context(), id)
		if err != nil {
			if appErrors.IsUnauthorized(err) {
				response.LoginRequired(c, err, loginPath)
			} else {
				response.Error(c, err)
			}
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, session)
		c.Set(logger.SessionFieldKey, session.ID)
		c.Next()
	}
}

// CurrentSession returns the console session resolved for this request.
func CurrentSession(c *gin.Context) (*service.ConsoleSession, bool) {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*service.ConsoleSession)
	return session, ok && session != nil
}
