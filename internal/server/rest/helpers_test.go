package rest

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/memrepo"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

const cookieName = "session_token"

type testEnv struct {
	handler http.Handler
	store   *memrepo.Store
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("db down") }

func newTestEnv(t *testing.T, opts ...func(*Options)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	store := memrepo.New()
	tokens, err := auth.NewTokenIssuer("test-secret", "HS256")
	require.NoError(t, err)
	limiter := ratelimit.NewMemoryLimiter(ratelimit.Settings{MaxAttempts: 5, Window: time.Minute})

	us := services.NewUserService(db, store, auth.NewPasswordHasher(bcrypt.MinCost), tokens, limiter, 7*24*time.Hour)
	ts := services.NewTaskService(db, store)

	o := Options{AllowedOrigins: []string{"http://localhost:3000"}, CookieName: cookieName}
	for _, fn := range opts {
		fn(&o)
	}

	srv := NewHTTPServer("127.0.0.1:0", logging.NewNop(), us, ts, o)
	return &testEnv{handler: srv.Handler(), store: store}
}

type reqOpt func(*http.Request)

func withBearer(token string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookie(value string) reqOpt {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: cookieName, Value: value}) }
}

func withHeader(k, v string) reqOpt {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

func (e *testEnv) do(t *testing.T, method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()

	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

type signedUp struct {
	userID  string
	token   string
	session string
}

func (e *testEnv) signUp(t *testing.T, email string) signedUp {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/signup", map[string]any{"email": email, "password": "secret123"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	res := decode[authResponse](t, rec)
	c := sessionCookie(rec)
	require.NotNil(t, c)
	return signedUp{userID: res.User.ID, token: res.Token, session: c.Value}
}
