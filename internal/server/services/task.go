package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
)

// TaskService manages the tasks of an authenticated user. Every operation
// on a single task yields common.ErrorNotFound when the task does not exist
// and common.ErrorForbidden when it belongs to someone else.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

// ParseTaskStatus accepts "", "pending" and "completed".
func ParseTaskStatus(s string) (models.TaskStatus, error) {
	switch st := models.TaskStatus(s); st {
	case models.TaskStatusAll, models.TaskStatusPending, models.TaskStatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("%w: status must be pending or completed", common.ErrorValidation)
}

func (s *TaskService) List(ctx context.Context, ownerID string, status models.TaskStatus) ([]*models.Task, error) {
	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) ([]*models.Task, error) {
		list, err := s.repomanager.Tasks(tx).ListByUser(ctx, ownerID, status)
		if err != nil {
			return nil, fmt.Errorf("error listing tasks: %w", err)
		}
		return list, nil
	})
}

func (s *TaskService) Get(ctx context.Context, ownerID string, id int64) (*models.Task, error) {
	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*models.Task, error) {
		return loadOwned(ctx, s.repomanager.Tasks(tx), ownerID, id)
	})
}

func (s *TaskService) Create(ctx context.Context, ownerID, title string, description *string) (*models.Task, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	description, err = normalizeDescription(description)
	if err != nil {
		return nil, err
	}

	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*models.Task, error) {
		task, err := s.repomanager.Tasks(tx).Create(ctx, &models.Task{
			UserID:      ownerID,
			Title:       title,
			Description: description,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating task: %w", err)
		}
		return task, nil
	})
}

// Update applies the non-nil fields of patch.
func (s *TaskService) Update(ctx context.Context, ownerID string, id int64, patch models.TaskPatch) (*models.Task, error) {
	var (
		title string
		err   error
	)
	if patch.Title != nil {
		if title, err = normalizeTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	var description *string
	if patch.Description != nil {
		if description, err = normalizeDescription(patch.Description); err != nil {
			return nil, err
		}
	}

	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*models.Task, error) {
		repo := s.repomanager.Tasks(tx)

		task, err := loadOwned(ctx, repo, ownerID, id)
		if err != nil {
			return nil, err
		}

		if patch.Title != nil {
			task.Title = title
		}
		if patch.Description != nil {
			task.Description = description
		}
		if patch.Completed != nil {
			task.Completed = *patch.Completed
		}

		return save(ctx, repo, task)
	})
}

// Toggle flips the completion flag.
func (s *TaskService) Toggle(ctx context.Context, ownerID string, id int64) (*models.Task, error) {
	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*models.Task, error) {
		repo := s.repomanager.Tasks(tx)

		task, err := loadOwned(ctx, repo, ownerID, id)
		if err != nil {
			return nil, err
		}
		task.Completed = !task.Completed

		return save(ctx, repo, task)
	})
}

func (s *TaskService) Delete(ctx context.Context, ownerID string, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)

		if _, err := loadOwned(ctx, repo, ownerID, id); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return err
			}
			return fmt.Errorf("error deleting task: %w", err)
		}
		return nil
	})
}

func loadOwned(ctx context.Context, repo tasks.Repository, ownerID string, id int64) (*models.Task, error) {
	task, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("task %d: %w", id, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("error loading task: %w", err)
	}
	if task.UserID != ownerID {
		return nil, fmt.Errorf("task %d: %w", id, common.ErrorForbidden)
	}
	return task, nil
}

func save(ctx context.Context, repo tasks.Repository, task *models.Task) (*models.Task, error) {
	updated, err := repo.Update(ctx, task)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating task: %w", err)
	}
	return updated, nil
}
