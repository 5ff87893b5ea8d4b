package ingesttask

import (
	"github.com/yungbote/catalog-backend/internal/ingest"
	"github.com/yungbote/catalog-backend/internal/jobs/runtime"
	"github.com/yungbote/catalog-backend/internal/jobs/webhooktask"
	"github.com/yungbote/catalog-backend/internal/repos"
	"github.com/yungbote/catalog-backend/internal/webhook"
)

// TaskType is the queue discriminator for bulk CSV ingestion runs.
const TaskType = "product_ingestion"

// Handler runs the ingestion pipeline for the upload job named in the task
// payload and queues the upload.completed fan-out once the run succeeds.
type Handler struct {
	pipeline *ingest.Pipeline
	taskRuns repos.TaskRunRepo
}

func NewHandler(pipeline *ingest.Pipeline, taskRuns repos.TaskRunRepo) *Handler {
	return &Handler{pipeline: pipeline, taskRuns: taskRuns}
}

func (h *Handler) Type() string { return TaskType }

func (h *Handler) Run(jc *runtime.Context) error {
	jobID, err := jc.PayloadUUID("job_id")
	if err != nil {
		return err
	}
	if err := h.pipeline.Run(jc.Ctx, jobID); err != nil {
		return err
	}
	// Fire-and-forget: a queue hiccup here must not fail a completed run.
	_, err = h.taskRuns.Enqueue(jc.Ctx, nil, webhooktask.TaskType, map[string]any{
		"event":   webhook.EventUploadCompleted,
		"payload": map[string]any{"job_id": jobID.String()},
	})
	if err != nil {
		jc.Log.Warn("Failed to enqueue upload.completed dispatch", "job_id", jobID, "error", err)
	}
	return nil
}
