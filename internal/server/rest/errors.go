package rest

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/ratelimit"
	"github.com/gin-gonic/gin"
)

const (
	codeValidation     = "VALIDATION_ERROR"
	codeConflict       = "CONFLICT"
	codeUnauthorized   = "UNAUTHORIZED"
	codeInvalidCreds   = "INVALID_CREDENTIALS"
	codeInvalidToken   = "INVALID_TOKEN"
	codeTokenExpired   = "TOKEN_EXPIRED"
	codeSessionExpired = "SESSION_EXPIRED"
	codeForbidden      = "FORBIDDEN"
	codeNotFound       = "NOT_FOUND"
	codeRateLimited    = "RATE_LIMITED"
	codeInternal       = "INTERNAL_ERROR"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string // empty: use the error's own detail
}

var errorMappings = []errorMapping{
	{common.ErrorValidation, http.StatusBadRequest, codeValidation, ""},
	{common.ErrorAlreadyExists, http.StatusConflict, codeConflict, ""},
	{common.ErrSessionExpired, http.StatusUnauthorized, codeSessionExpired, "session expired"},
	{common.ErrTokenExpired, http.StatusUnauthorized, codeTokenExpired, "token expired"},
	{common.ErrInvalidToken, http.StatusUnauthorized, codeInvalidToken, "invalid token"},
	{common.ErrorUnauthorized, http.StatusUnauthorized, codeUnauthorized, "authentication required"},
	{common.ErrorForbidden, http.StatusForbidden, codeForbidden, "access denied"},
	{common.ErrorNotFound, http.StatusNotFound, codeNotFound, "task not found"},
	{common.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited, "too many signin attempts, try again later"},
}

func respond(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{Code: code, Message: message})
}

// writeError maps err onto a status and error body. Unknown errors are
// logged and reported as a bare 500.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	var le *ratelimit.LimitError
	if errors.As(err, &le) {
		c.Header("Retry-After", strconv.Itoa(max(1, int(math.Ceil(le.RetryAfter.Seconds())))))
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			msg := m.message
			if msg == "" {
				msg = detail(err, m.target)
			}
			respond(c, m.status, m.code, msg)
			return
		}
	}

	s.logger.Error(c.Request.Context(), "request failed",
		"method", c.Request.Method, "path", c.Request.URL.Path, "error", err.Error())
	respond(c, http.StatusInternalServerError, codeInternal, "internal error")
}

// detail strips the sentinel prefix from "sentinel: detail" messages.
func detail(err, sentinel error) string {
	msg := err.Error()
	if d, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return d
	}
	return msg
}
