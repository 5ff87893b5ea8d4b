package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/repos"
	"github.com/yungbote/catalog-backend/internal/types"
)

// Context wraps one claimed task row and everything a handler needs to work
// against it. The payload is decoded lazily on first access and cached.
type Context struct {
	Ctx context.Context
	DB  *gorm.DB
	Job *types.TaskRun
	Log *logger.Logger

	repo    repos.TaskRunRepo
	payload map[string]any
}

func NewContext(ctx context.Context, db *gorm.DB, job *types.TaskRun, repo repos.TaskRunRepo, baseLog *logger.Logger) *Context {
	return &Context{
		Ctx:  ctx,
		DB:   db,
		Job:  job,
		Log:  baseLog.With("task_type", job.TaskType, "task_id", job.ID),
		repo: repo,
	}
}

// Payload returns the decoded task payload. A malformed payload decodes to an
// empty map; handlers treat missing keys as the error case.
func (jc *Context) Payload() map[string]any {
	if jc.payload != nil {
		return jc.payload
	}
	decoded := map[string]any{}
	if len(jc.Job.Payload) > 0 {
		if err := json.Unmarshal(jc.Job.Payload, &decoded); err != nil {
			jc.Log.Warn("Failed to decode task payload", "error", err)
		}
	}
	jc.payload = decoded
	return jc.payload
}

// PayloadUUID reads a UUID-valued payload key.
func (jc *Context) PayloadUUID(key string) (uuid.UUID, error) {
	raw, ok := jc.Payload()[key].(string)
	if !ok || raw == "" {
		return uuid.Nil, fmt.Errorf("payload key %q is missing or not a string", key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("payload key %q is not a uuid: %w", key, err)
	}
	return id, nil
}

// PayloadString reads a string-valued payload key.
func (jc *Context) PayloadString(key string) (string, error) {
	raw, ok := jc.Payload()[key].(string)
	if !ok || raw == "" {
		return "", fmt.Errorf("payload key %q is missing or not a string", key)
	}
	return raw, nil
}

// Heartbeat refreshes the row's liveness marker so a long-running handler is
// not reclaimed as stale.
func (jc *Context) Heartbeat() {
	if err := jc.repo.Heartbeat(jc.Ctx, nil, jc.Job.ID); err != nil {
		jc.Log.Warn("Failed to heartbeat task", "error", err)
	}
}

func (jc *Context) Succeed() error {
	return jc.repo.UpdateFields(jc.Ctx, nil, jc.Job.ID, map[string]interface{}{
		"status": types.TaskStatusSucceeded,
		"error":  "",
	})
}

func (jc *Context) Fail(runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	return jc.repo.UpdateFields(jc.Ctx, nil, jc.Job.ID, map[string]interface{}{
		"status":        types.TaskStatusFailed,
		"error":         msg,
		"last_error_at": time.Now(),
	})
}
