package rest

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/ready", nil).Code)

	down := newTestEnv(t, func(o *Options) { o.Ready = failingPinger{} })
	assert.Equal(t, http.StatusServiceUnavailable, down.do(t, http.MethodGet, "/ready", nil).Code)
}

func TestSignUp(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/signup",
		map[string]any{"email": " Ann@Example.com ", "password": "secret123", "name": "Ann"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	res := decode[authResponse](t, rec)
	assert.Equal(t, "ann@example.com", res.User.Email)
	require.NotNil(t, res.User.Name)
	assert.Equal(t, "Ann", *res.User.Name)
	assert.NotEmpty(t, res.Token)
	assert.True(t, res.ExpiresAt.After(time.Now().Add(6*24*time.Hour)))
	assert.NotContains(t, rec.Body.String(), "password")

	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.NotEmpty(t, c.Value)
}

func TestSignUp_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "dup@example.com")

	rec := env.do(t, http.MethodPost, "/api/auth/signup", map[string]any{"email": "DUP@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, codeConflict, decode[errorResponse](t, rec).Code)

	for _, body := range []map[string]any{
		{"email": "bad", "password": "secret123"},
		{"email": "a@x.com", "password": "short1"},
		{"email": "a@x.com", "password": "lettersonly"},
		{"email": "a@x.com"},
	} {
		rec := env.do(t, http.MethodPost, "/api/auth/signup", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, codeValidation, decode[errorResponse](t, rec).Code)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/signup", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignIn(t *testing.T) {
	env := newTestEnv(t)
	up := env.signUp(t, "bo@example.com")

	rec := env.do(t, http.MethodPost, "/api/auth/signin", map[string]any{"email": "BO@example.com", "password": "secret123"},
		withHeader("User-Agent", "tests/1.0"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[authResponse](t, rec)
	assert.Equal(t, up.userID, res.User.ID)
	require.NotNil(t, res.User.LastSigninAt)
	require.NotNil(t, sessionCookie(rec))
}

func TestSignIn_GenericFailure(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "cy@example.com")

	wrong := env.do(t, http.MethodPost, "/api/auth/signin", map[string]any{"email": "cy@example.com", "password": "wrong1234"})
	unknown := env.do(t, http.MethodPost, "/api/auth/signin", map[string]any{"email": "zz@example.com", "password": "secret123"})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.Equal(t, "invalid email or password", decode[errorResponse](t, wrong).Message)
}

func TestSignIn_RateLimited(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "di@example.com")

	for i := 0; i < 5; i++ {
		rec := env.do(t, http.MethodPost, "/api/auth/signin", map[string]any{"email": "di@example.com", "password": "wrong1234"})
		require.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i+1)
	}

	rec := env.do(t, http.MethodPost, "/api/auth/signin", map[string]any{"email": "di@example.com", "password": "secret123"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, codeRateLimited, decode[errorResponse](t, rec).Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestSignOut_ExpiresCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/signout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "signed out", decode[messageResponse](t, rec).Message)

	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestSession_BearerAndCookie(t *testing.T) {
	env := newTestEnv(t)
	up := env.signUp(t, "ed@example.com")

	rec := env.do(t, http.MethodGet, "/api/auth/session", nil, withBearer(up.token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[sessionResponse](t, rec)
	assert.Equal(t, up.userID, res.User.ID)
	assert.True(t, res.Active)

	rec = env.do(t, http.MethodGet, "/api/auth/session", nil, withCookie(up.session))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, up.userID, decode[sessionResponse](t, rec).User.ID)

	rec = env.do(t, http.MethodGet, "/api/auth/session", nil, withCookie(up.session+".sig"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_Failures(t *testing.T) {
	env := newTestEnv(t)
	up := env.signUp(t, "fay@example.com")

	tests := []struct {
		name string
		opts []reqOpt
		code string
	}{
		{"no credentials", nil, codeUnauthorized},
		{"garbage bearer", []reqOpt{withBearer("nope")}, codeInvalidToken},
		{"wrong scheme", []reqOpt{withHeader("Authorization", "Basic abc")}, codeInvalidToken},
		{"bad bearer does not fall back to cookie", []reqOpt{withBearer("nope"), withCookie(up.session)}, codeInvalidToken},
		{"unknown cookie", []reqOpt{withCookie("unknown")}, codeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/auth/session", nil, tt.opts...)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.code, decode[errorResponse](t, rec).Code)
		})
	}
}

func TestAuthenticate_ExpiredSession(t *testing.T) {
	env := newTestEnv(t)
	up := env.signUp(t, "gil@example.com")

	env.store.ExpireSessions(up.userID, time.Now().Add(-time.Minute))

	rec := env.do(t, http.MethodGet, "/api/tasks", nil, withCookie(up.session))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, codeSessionExpired, decode[errorResponse](t, rec).Code)
}

func TestCORS_Preflight(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodOptions, "/api/tasks", nil,
		withHeader("Origin", "http://localhost:3000"),
		withHeader("Access-Control-Request-Method", "POST"),
		withHeader("Access-Control-Request-Headers", "Authorization, Content-Type"))

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = env.do(t, http.MethodOptions, "/api/tasks", nil,
		withHeader("Origin", "http://evil.example"),
		withHeader("Access-Control-Request-Method", "POST"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Origin"), "evil"))
}
