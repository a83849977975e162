package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/ratelimit"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/memrepo"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

const testTTL = 7 * 24 * time.Hour

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// newTxDB returns a real database used only for transaction boundaries; the
// repositories themselves are in memory.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newTokenIssuer(t *testing.T) *auth.TokenIssuer {
	t.Helper()
	ti, err := auth.NewTokenIssuer("test-secret", "HS256")
	require.NoError(t, err)
	return ti
}

type userFixture struct {
	svc     *UserService
	store   *memrepo.Store
	tokens  *auth.TokenIssuer
	limiter *ratelimit.MemoryLimiter
	now     time.Time
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	store := memrepo.New()
	tokens := newTokenIssuer(t)
	limiter := ratelimit.NewMemoryLimiter(ratelimit.Settings{MaxAttempts: 5, Window: time.Minute})

	svc := NewUserService(newTxDB(t), store, auth.NewPasswordHasher(bcrypt.MinCost), tokens, limiter, testTTL)
	f := &userFixture{svc: svc, store: store, tokens: tokens, limiter: limiter, now: time.Now().UTC().Truncate(time.Second)}
	svc.now = func() time.Time { return f.now }
	return f
}

// brokenManager wraps a RepositoryManager and fails selected operations.
type brokenManager struct {
	repomanager.RepositoryManager
	sessionCreateErr error
	taskUpdateErr    error
}

func (m *brokenManager) Sessions(db dbx.DBTX) sessions.Repository {
	return &brokenSessions{Repository: m.RepositoryManager.Sessions(db), createErr: m.sessionCreateErr}
}

func (m *brokenManager) Tasks(db dbx.DBTX) tasks.Repository {
	return &brokenTasks{Repository: m.RepositoryManager.Tasks(db), updateErr: m.taskUpdateErr}
}

func (m *brokenManager) Users(db dbx.DBTX) users.Repository { return m.RepositoryManager.Users(db) }

type brokenSessions struct {
	sessions.Repository
	createErr error
}

func (r *brokenSessions) Create(ctx context.Context, s *models.Session) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.Repository.Create(ctx, s)
}

type brokenTasks struct {
	tasks.Repository
	updateErr error
}

func (r *brokenTasks) Update(ctx context.Context, t *models.Task) (*models.Task, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	return r.Repository.Update(ctx, t)
}
