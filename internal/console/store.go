// Package console is a single-user, in-memory todo prototype driven by a
// line-oriented REPL. Nothing is persisted between runs.
package console

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

type Task struct {
	ID          int64
	Title       string
	Description *string
	Completed   bool
	CreatedAt   time.Time
}

// NotFoundError is returned for unknown task ids. It matches
// common.ErrorNotFound.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("Task with ID %d not found", e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == common.ErrorNotFound }

// ErrEmptyTitle matches common.ErrorValidation.
var ErrEmptyTitle = fmt.Errorf("%w: Title cannot be empty", common.ErrorValidation)

// Store keeps tasks in memory. Ids start at 1 and are never reused.
type Store struct {
	tasks  map[int64]*Task
	nextID int64
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{tasks: make(map[int64]*Task), nextID: 1, now: time.Now}
}

func (s *Store) Add(title string, description *string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	t := &Task{
		ID:          s.nextID,
		Title:       title,
		Description: trimOptional(description),
		CreatedAt:   s.now(),
	}
	s.tasks[t.ID] = t
	s.nextID++
	return t, nil
}

// List returns all tasks ordered by creation time.
func (s *Store) List() []*Task {
	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Update changes the non-nil fields. A blank description clears it.
func (s *Store) Update(id int64, title, description *string) (*Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}

	if title != nil {
		tt := strings.TrimSpace(*title)
		if tt == "" {
			return nil, ErrEmptyTitle
		}
		t.Title = tt
	}
	if description != nil {
		t.Description = trimOptional(description)
	}
	return t, nil
}

func (s *Store) Delete(id int64) error {
	if _, ok := s.tasks[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(s.tasks, id)
	return nil
}

func (s *Store) Toggle(id int64) (*Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	t.Completed = !t.Completed
	return t, nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
