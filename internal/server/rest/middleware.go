package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/gin-gonic/gin"
)

// AuthContext identifies the caller of an authenticated request, whichever
// credential it presented.
type AuthContext struct {
	SubjectID string
}

const authContextKey = "auth"

func authFrom(c *gin.Context) AuthContext {
	v, _ := c.Get(authContextKey)
	ac, _ := v.(AuthContext)
	return ac
}

// authenticate accepts a bearer token or, when no Authorization header is
// sent, the session cookie. A bad bearer token is rejected even if a valid
// cookie is present.
func (s *HTTPServer) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := s.resolveSubject(c)
		if err != nil {
			s.writeError(c, err)
			c.Abort()
			return
		}
		c.Set(authContextKey, AuthContext{SubjectID: subject})
		c.Next()
	}
}

func (s *HTTPServer) resolveSubject(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", common.ErrInvalidToken
		}
		return s.users.Authenticate(strings.TrimSpace(token))
	}

	if cookie, err := c.Cookie(s.opts.CookieName); err == nil && cookie != "" {
		return s.users.ResolveSession(c.Request.Context(), cookie)
	}

	return "", common.ErrorUnauthorized
}

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *HTTPServer) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.logger.Error(c.Request.Context(), "panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		respond(c, http.StatusInternalServerError, codeInternal, "internal error")
		c.Abort()
	})
}
