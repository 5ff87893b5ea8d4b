package worker

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/jobs/runtime"
	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/repos"
)

const pollInterval = 1 * time.Second

// Config bounds the retry behavior the pool applies when claiming rows.
type Config struct {
	Concurrency  int
	MaxAttempts  int
	RetryDelay   time.Duration
	StaleRunning time.Duration
}

func (c Config) withDefaults() Config {
	if c.Concurrency < 1 {
		c.Concurrency = 2
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 10 * time.Second
	}
	if c.StaleRunning <= 0 {
		c.StaleRunning = 10 * time.Minute
	}
	return c
}

// Pool polls the task_runs table and dispatches claimed rows to registered
// handlers. Each worker claims and runs one task at a time, so Concurrency is
// also the number of tasks in flight.
type Pool struct {
	log      *logger.Logger
	db       *gorm.DB
	taskRuns repos.TaskRunRepo
	registry *runtime.Registry
	cfg      Config
}

func NewPool(baseLog *logger.Logger, db *gorm.DB, taskRuns repos.TaskRunRepo, registry *runtime.Registry, cfg Config) *Pool {
	return &Pool{
		log:      baseLog.With("component", "WorkerPool"),
		db:       db,
		taskRuns: taskRuns,
		registry: registry,
		cfg:      cfg.withDefaults(),
	}
}

// Start launches the worker goroutines. They stop when ctx is cancelled;
// tasks already running finish their current attempt first.
func (p *Pool) Start(ctx context.Context) {
	p.log.Info("Starting worker pool", "concurrency", p.cfg.Concurrency)
	for i := 0; i < p.cfg.Concurrency; i++ {
		go p.runWorker(ctx, i)
	}
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	log := p.log.With("worker", id)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("Worker stopping")
			return
		case <-ticker.C:
			p.claimAndRun(ctx, log)
		}
	}
}

func (p *Pool) claimAndRun(ctx context.Context, log *logger.Logger) {
	policy := repos.RunnablePolicy{
		MaxAttempts:  p.cfg.MaxAttempts,
		RetryDelay:   p.cfg.RetryDelay,
		StaleRunning: p.cfg.StaleRunning,
	}
	run, err := p.taskRuns.ClaimNextRunnable(ctx, nil, policy)
	if err != nil {
		log.Error("Failed to claim task", "error", err)
		return
	}
	if run == nil {
		return
	}

	jc := runtime.NewContext(ctx, p.db, run, p.taskRuns, p.log)
	handler, ok := p.registry.Get(run.TaskType)
	if !ok {
		// Unknown type is permanent: retrying would never succeed.
		log.Error("No handler registered for task", "task_type", run.TaskType, "task_id", run.ID)
		if err := jc.Fail(fmt.Errorf("no handler registered for type %q", run.TaskType)); err != nil {
			log.Error("Failed to mark task failed", "task_id", run.ID, "error", err)
		}
		return
	}

	runErr := p.runHandler(handler, jc)
	if runErr != nil {
		jc.Log.Error("Task failed", "attempt", run.Attempts, "error", runErr)
		if err := jc.Fail(runErr); err != nil {
			jc.Log.Error("Failed to mark task failed", "error", err)
		}
		return
	}
	if err := jc.Succeed(); err != nil {
		jc.Log.Error("Failed to mark task succeeded", "error", err)
	}
}

// runHandler isolates handler panics so one bad task cannot take a worker
// down with it.
func (p *Pool) runHandler(handler runtime.Handler, jc *runtime.Context) (runErr error) {
	defer func() {
		if r := recover(); r != nil {
			runErr = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return handler.Run(jc)
}
