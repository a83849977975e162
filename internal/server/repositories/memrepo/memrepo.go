// Package memrepo is an in-memory RepositoryManager for tests. All handles
// share one store regardless of the DBTX they are bound to, so writes are
// not rolled back with the surrounding transaction.
package memrepo

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
)

type Store struct {
	mu       sync.Mutex
	users    map[string]models.User
	sessions map[string]models.Session
	tasks    map[int64]models.Task
	nextTask int64

	// SessionWrites counts session inserts and deletes.
	SessionWrites int
	now           func() time.Time
}

func New() *Store {
	return &Store{
		users:    make(map[string]models.User),
		sessions: make(map[string]models.Session),
		tasks:    make(map[int64]models.Task),
		now:      time.Now,
	}
}

var _ repomanager.RepositoryManager = (*Store)(nil)

func (s *Store) RunMigrations(context.Context, *sql.DB) error { return nil }
func (s *Store) Users(dbx.DBTX) users.Repository             { return userRepo{s} }
func (s *Store) Sessions(dbx.DBTX) sessions.Repository       { return sessionRepo{s} }
func (s *Store) Tasks(dbx.DBTX) tasks.Repository             { return taskRepo{s} }

// Session returns the stored session with the given token hash.
func (s *Store) Session(tokenHash string) (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.sessions {
		if v.TokenHash == tokenHash {
			return v, true
		}
	}
	return models.Session{}, false
}

// ExpireSessions moves the expiry of every session of userID to at.
func (s *Store) ExpireSessions(userID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.sessions {
		if v.UserID == userID {
			v.ExpiresAt = at
			s.sessions[k] = v
		}
	}
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.users {
		if v.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	r.s.users[u.ID] = *u
	out := *u
	return &out, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.users {
		if v.Email == email {
			return &v, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &v, nil
}

func (r userRepo) UpdateLastSignin(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	v.LastSigninAt = &at
	v.UpdatedAt = at
	r.s.users[id] = v
	return nil
}

type sessionRepo struct{ s *Store }

func (r sessionRepo) Create(_ context.Context, sess *models.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[sess.ID] = *sess
	r.s.SessionWrites++
	return nil
}

func (r sessionRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.sessions {
		if v.TokenHash == tokenHash {
			return &v, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r sessionRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, v := range r.s.sessions {
		if v.ExpiresAt.Before(before) {
			delete(r.s.sessions, k)
			n++
		}
	}
	if n > 0 {
		r.s.SessionWrites++
	}
	return n, nil
}

type taskRepo struct{ s *Store }

func (r taskRepo) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextTask++
	now := r.s.now()
	t.ID = r.s.nextTask
	t.CreatedAt = now
	t.UpdatedAt = now
	r.s.tasks[t.ID] = *t
	out := *t
	return &out, nil
}

func (r taskRepo) GetByID(_ context.Context, id int64) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.tasks[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &v, nil
}

func (r taskRepo) ListByUser(_ context.Context, userID string, status models.TaskStatus) ([]*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Task{}
	for _, v := range r.s.tasks {
		if v.UserID != userID {
			continue
		}
		if status == models.TaskStatusPending && v.Completed || status == models.TaskStatusCompleted && !v.Completed {
			continue
		}
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r taskRepo) Update(_ context.Context, t *models.Task) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[t.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	t.UpdatedAt = r.s.now()
	r.s.tasks[t.ID] = *t
	out := *t
	return &out, nil
}

func (r taskRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.tasks, id)
	return nil
}
