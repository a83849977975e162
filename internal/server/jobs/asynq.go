package jobs

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/hibiken/asynq"
)

const (
	TaskTypePurgeSessions = "sessions:purge"
	queueName             = "maintenance"
)

// Manager schedules the purge through asynq: a Scheduler enqueues the task
// on a cron spec and a single-worker Server executes it.
type Manager struct {
	interval  time.Duration
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	purger    Purger
	logger    logging.Logger
}

func NewManager(redisURL string, interval time.Duration, p Purger, l logging.Logger) (*Manager, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	logger := l.With("module", "session_purge")
	al := asynqLogger{l: logger}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{queueName: 1},
		Logger:      al,
	})
	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Logger: al})

	m := &Manager{
		interval:  interval,
		server:    server,
		scheduler: scheduler,
		mux:       asynq.NewServeMux(),
		purger:    p,
		logger:    logger,
	}
	m.mux.HandleFunc(TaskTypePurgeSessions, m.handlePurge)
	return m, nil
}

func (m *Manager) cronSpec() string {
	return "@every " + m.interval.String()
}

// Run starts the worker and the scheduler and stops both when ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	task := asynq.NewTask(TaskTypePurgeSessions, nil)
	if _, err := m.scheduler.Register(m.cronSpec(), task,
		asynq.Queue(queueName), asynq.MaxRetry(0), asynq.Unique(m.interval)); err != nil {
		return fmt.Errorf("failed to register purge schedule: %w", err)
	}

	if err := m.server.Start(m.mux); err != nil {
		return fmt.Errorf("failed to start asynq server: %w", err)
	}
	if err := m.scheduler.Start(); err != nil {
		m.server.Shutdown()
		return fmt.Errorf("failed to start asynq scheduler: %w", err)
	}

	m.logger.Info(ctx, "Session purge scheduled", "spec", m.cronSpec())

	<-ctx.Done()

	m.logger.Info(ctx, "Stopping session purge...")
	m.scheduler.Shutdown()
	m.server.Shutdown()
	return nil
}

func (m *Manager) handlePurge(ctx context.Context, _ *asynq.Task) error {
	return purge(ctx, m.purger, m.logger)
}

// asynqLogger routes asynq's own logging through logging.Logger.
type asynqLogger struct {
	l logging.Logger
}

func (a asynqLogger) Debug(args ...any) { a.l.Debug(context.Background(), fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...any)  { a.l.Info(context.Background(), fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...any)  { a.l.Warn(context.Background(), fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...any) { a.l.Error(context.Background(), fmt.Sprint(args...)) }

func (a asynqLogger) Fatal(args ...any) {
	a.l.Error(context.Background(), fmt.Sprint(args...))
	os.Exit(1)
}
