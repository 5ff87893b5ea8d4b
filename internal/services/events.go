package services

import (
	"context"

	"github.com/yungbote/catalog-backend/internal/jobs/webhooktask"
	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/repos"
)

// EventEmitter queues webhook fan-out for catalog events. Emission is
// fire-and-forget: a queue hiccup is logged but never fails the operation
// that produced the event.
type EventEmitter struct {
	log      *logger.Logger
	taskRuns repos.TaskRunRepo
}

func NewEventEmitter(baseLog *logger.Logger, taskRuns repos.TaskRunRepo) *EventEmitter {
	return &EventEmitter{
		log:      baseLog.With("service", "EventEmitter"),
		taskRuns: taskRuns,
	}
}

func (e *EventEmitter) Emit(ctx context.Context, event string, payload map[string]any) {
	_, err := e.taskRuns.Enqueue(ctx, nil, webhooktask.TaskType, map[string]any{
		"event":   event,
		"payload": payload,
	})
	if err != nil {
		e.log.Warn("Failed to enqueue webhook dispatch", "event", event, "error", err)
	}
}
