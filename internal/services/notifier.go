package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/repos"
	"github.com/yungbote/catalog-backend/internal/types"
)

// NotifyingUploadJobRepo decorates the upload job ledger with Redis pub/sub
// notifications, so dashboards can watch job lifecycles without polling.
// Publishing is best-effort: Redis being down never fails a ledger write.
// With a nil client the decorator is a transparent pass-through.
type NotifyingUploadJobRepo struct {
	inner   repos.UploadJobRepo
	rdb     *redis.Client
	channel string
	log     *logger.Logger
}

func NewNotifyingUploadJobRepo(inner repos.UploadJobRepo, rdb *redis.Client, channel string, baseLog *logger.Logger) repos.UploadJobRepo {
	if rdb == nil || channel == "" {
		return inner
	}
	return &NotifyingUploadJobRepo{
		inner:   inner,
		rdb:     rdb,
		channel: channel,
		log:     baseLog.With("service", "UploadJobNotifier"),
	}
}

type jobNotification struct {
	JobID         string  `json:"job_id"`
	Status        string  `json:"status"`
	ProcessedRows *int    `json:"processed_rows,omitempty"`
	TotalRows     *int    `json:"total_rows,omitempty"`
	Error         *string `json:"error,omitempty"`
}

func (n *NotifyingUploadJobRepo) publish(ctx context.Context, note jobNotification) {
	raw, err := json.Marshal(note)
	if err != nil {
		return
	}
	if err := n.rdb.Publish(ctx, n.channel, raw).Err(); err != nil {
		n.log.Warn("Failed to publish job notification", "job_id", note.JobID, "error", err)
	}
}

func (n *NotifyingUploadJobRepo) Create(ctx context.Context, tx *gorm.DB, job *types.UploadJob) error {
	if err := n.inner.Create(ctx, tx, job); err != nil {
		return err
	}
	n.publish(ctx, jobNotification{JobID: job.ID.String(), Status: string(job.Status)})
	return nil
}

func (n *NotifyingUploadJobRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.UploadJob, error) {
	return n.inner.GetByID(ctx, tx, id)
}

func (n *NotifyingUploadJobRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.UploadJob, error) {
	return n.inner.ListRecent(ctx, tx, limit)
}

func (n *NotifyingUploadJobRepo) SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.UploadStatus) error {
	if err := n.inner.SetStatus(ctx, tx, id, status); err != nil {
		return err
	}
	n.publish(ctx, jobNotification{JobID: id.String(), Status: string(status)})
	return nil
}

func (n *NotifyingUploadJobRepo) RecordProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, processedRows int) error {
	if err := n.inner.RecordProgress(ctx, tx, id, processedRows); err != nil {
		return err
	}
	n.publish(ctx, jobNotification{
		JobID:         id.String(),
		Status:        string(types.UploadStatusUpserting),
		ProcessedRows: &processedRows,
	})
	return nil
}

func (n *NotifyingUploadJobRepo) RecordCompletion(ctx context.Context, tx *gorm.DB, id uuid.UUID, totalRows int) error {
	if err := n.inner.RecordCompletion(ctx, tx, id, totalRows); err != nil {
		return err
	}
	n.publish(ctx, jobNotification{
		JobID:         id.String(),
		Status:        string(types.UploadStatusCompleted),
		ProcessedRows: &totalRows,
		TotalRows:     &totalRows,
	})
	return nil
}

func (n *NotifyingUploadJobRepo) RecordFailure(ctx context.Context, tx *gorm.DB, id uuid.UUID, message string) error {
	if err := n.inner.RecordFailure(ctx, tx, id, message); err != nil {
		return err
	}
	n.publish(ctx, jobNotification{
		JobID:  id.String(),
		Status: string(types.UploadStatusFailed),
		Error:  &message,
	})
	return nil
}
