package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

func clientInfo(c *gin.Context) services.ClientInfo {
	return services.ClientInfo{UserAgent: c.Request.UserAgent(), IPAddress: c.ClientIP()}
}

func (s *HTTPServer) setSessionCookie(c *gin.Context, value string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.opts.CookieName, value, maxAge, "/", "", s.opts.CookieSecure, true)
}

func (s *HTTPServer) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, codeValidation, bindingMessage(err))
		return
	}

	res, err := s.users.SignUp(c.Request.Context(), req.Email, req.Password, req.Name, clientInfo(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "User signed up", "user_id", res.User.ID)
	s.setSessionCookie(c, res.SessionToken, res.SessionExpiresAt)
	c.JSON(http.StatusCreated, authResponse{User: newUserResponse(res.User), Token: res.Token, ExpiresAt: res.ExpiresAt})
}

func (s *HTTPServer) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, codeValidation, bindingMessage(err))
		return
	}

	res, err := s.users.SignIn(c.Request.Context(), req.Email, req.Password, clientInfo(c))
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			respond(c, http.StatusUnauthorized, codeInvalidCreds, "invalid email or password")
			return
		}
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "User signed in", "user_id", res.User.ID)
	s.setSessionCookie(c, res.SessionToken, res.SessionExpiresAt)
	c.JSON(http.StatusOK, authResponse{User: newUserResponse(res.User), Token: res.Token, ExpiresAt: res.ExpiresAt})
}

// signOut only expires the cookie; bearer tokens stay valid until they expire.
func (s *HTTPServer) signOut(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.opts.CookieName, "", -1, "/", "", s.opts.CookieSecure, true)
	c.JSON(http.StatusOK, messageResponse{Message: "signed out"})
}

func (s *HTTPServer) session(c *gin.Context) {
	info, err := s.users.SessionInfo(c.Request.Context(), authFrom(c).SubjectID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{User: newUserResponse(info.User), ExpiresAt: info.ExpiresAt, Active: info.Active})
}
