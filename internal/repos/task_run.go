package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/types"
)

// RunnablePolicy controls which rows ClaimNextRunnable may pick up again.
type RunnablePolicy struct {
	MaxAttempts  int
	RetryDelay   time.Duration
	StaleRunning time.Duration
}

// TaskRunRepo is the durable task queue. Delivery is at-least-once: a claim
// takes the row lock for the claiming transaction only, so exclusivity of a
// running task rests on SKIP LOCKED plus the stale-heartbeat cutoff, not on
// any lease held for the duration of the work.
type TaskRunRepo interface {
	Enqueue(ctx context.Context, tx *gorm.DB, taskType string, payload map[string]any) (*types.TaskRun, error)
	ClaimNextRunnable(ctx context.Context, tx *gorm.DB, policy RunnablePolicy) (*types.TaskRun, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	Heartbeat(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type taskRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRunRepo(db *gorm.DB, baseLog *logger.Logger) TaskRunRepo {
	return &taskRunRepo{
		db:  db,
		log: baseLog.With("repo", "TaskRunRepo"),
	}
}

func (r *taskRunRepo) Enqueue(ctx context.Context, tx *gorm.DB, taskType string, payload map[string]any) (*types.TaskRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if taskType == "" {
		return nil, fmt.Errorf("task type is required")
	}
	raw := []byte("{}")
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal task payload: %w", err)
		}
		raw = b
	}
	run := &types.TaskRun{
		TaskType: taskType,
		Payload:  datatypes.JSON(raw),
		Status:   types.TaskStatusQueued,
	}
	if err := transaction.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *taskRunRepo) ClaimNextRunnable(ctx context.Context, tx *gorm.DB, policy RunnablePolicy) (*types.TaskRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	retryCutoff := now.Add(-policy.RetryDelay)
	staleCutoff := now.Add(-policy.StaleRunning)
	var claimed *types.TaskRun
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var run types.TaskRun
		q := txx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where(`
				(
					status = ?
					OR (
						status = ?
						AND attempts < ?
						AND (last_error_at IS NULL OR last_error_at < ?)
					)
					OR (
						status = ?
						AND heartbeat_at IS NOT NULL
						AND heartbeat_at < ?
					)
				)
			`, types.TaskStatusQueued, types.TaskStatusFailed, policy.MaxAttempts, retryCutoff, types.TaskStatusRunning, staleCutoff).
			Order("created_at ASC")
		qErr := q.First(&run).Error
		if errors.Is(qErr, gorm.ErrRecordNotFound) {
			return nil
		}
		if qErr != nil {
			return qErr
		}
		uErr := txx.Model(&types.TaskRun{}).
			Where("id = ?", run.ID).
			Updates(map[string]interface{}{
				"status":       types.TaskStatusRunning,
				"attempts":     gorm.Expr("attempts + 1"),
				"locked_at":    now,
				"heartbeat_at": now,
				"updated_at":   now,
			}).Error
		if uErr != nil {
			return uErr
		}
		claimed = &run
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *taskRunRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.TaskRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *taskRunRepo) Heartbeat(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.TaskRun{}).
		Where("id = ? AND status = ?", id, types.TaskStatusRunning).
		Updates(map[string]interface{}{
			"heartbeat_at": now,
			"updated_at":   now,
		}).Error
}
