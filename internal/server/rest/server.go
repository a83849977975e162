// Package rest exposes the auth and task services over HTTP/JSON using gin.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// UserService is satisfied by *services.UserService.
type UserService interface {
	SignUp(ctx context.Context, email, password string, name *string, client services.ClientInfo) (*services.AuthResult, error)
	SignIn(ctx context.Context, email, password string, client services.ClientInfo) (*services.AuthResult, error)
	Authenticate(token string) (string, error)
	ResolveSession(ctx context.Context, cookieValue string) (string, error)
	SessionInfo(ctx context.Context, subjectID string) (*services.SessionInfo, error)
}

// TaskService is satisfied by *services.TaskService.
type TaskService interface {
	List(ctx context.Context, ownerID string, status models.TaskStatus) ([]*models.Task, error)
	Get(ctx context.Context, ownerID string, id int64) (*models.Task, error)
	Create(ctx context.Context, ownerID, title string, description *string) (*models.Task, error)
	Update(ctx context.Context, ownerID string, id int64, patch models.TaskPatch) (*models.Task, error)
	Toggle(ctx context.Context, ownerID string, id int64) (*models.Task, error)
	Delete(ctx context.Context, ownerID string, id int64) error
}

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	AllowedOrigins []string
	CookieName     string
	CookieSecure   bool
	Ready          Pinger
}

type HTTPServer struct {
	address string
	users   UserService
	tasks   TaskService
	logger  logging.Logger
	opts    Options
}

func NewHTTPServer(a string, l logging.Logger, us UserService, ts TaskService, opts Options) *HTTPServer {
	if opts.CookieName == "" {
		opts.CookieName = "session_token"
	}
	return &HTTPServer{
		address: a,
		logger:  l.With("module", "http_server"),
		users:   us,
		tasks:   ts,
		opts:    opts,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
