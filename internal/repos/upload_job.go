package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/yungbote/catalog-backend/internal/pkg/errors"
	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/types"
)

// UploadJobRepo is the ledger of ingestion attempts. The pipeline is the only
// writer after Create; everyone else just polls.
type UploadJobRepo interface {
	Create(ctx context.Context, tx *gorm.DB, job *types.UploadJob) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.UploadJob, error)
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.UploadJob, error)
	SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.UploadStatus) error
	RecordProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, processedRows int) error
	RecordCompletion(ctx context.Context, tx *gorm.DB, id uuid.UUID, totalRows int) error
	RecordFailure(ctx context.Context, tx *gorm.DB, id uuid.UUID, message string) error
}

type uploadJobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUploadJobRepo(db *gorm.DB, baseLog *logger.Logger) UploadJobRepo {
	return &uploadJobRepo{
		db:  db,
		log: baseLog.With("repo", "UploadJobRepo"),
	}
}

func (r *uploadJobRepo) Create(ctx context.Context, tx *gorm.DB, job *types.UploadJob) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(job).Error
}

func (r *uploadJobRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.UploadJob, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var job types.UploadJob
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("upload job %s: %w", id, pkgerrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *uploadJobRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.UploadJob, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit < 1 {
		limit = 50
	}
	var out []*types.UploadJob
	err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *uploadJobRepo) SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status types.UploadStatus) error {
	return r.updateFields(ctx, tx, id, map[string]interface{}{
		"status": status,
	})
}

func (r *uploadJobRepo) RecordProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, processedRows int) error {
	return r.updateFields(ctx, tx, id, map[string]interface{}{
		"processed_rows": processedRows,
	})
}

func (r *uploadJobRepo) RecordCompletion(ctx context.Context, tx *gorm.DB, id uuid.UUID, totalRows int) error {
	return r.updateFields(ctx, tx, id, map[string]interface{}{
		"status":         types.UploadStatusCompleted,
		"total_rows":     totalRows,
		"processed_rows": totalRows,
	})
}

func (r *uploadJobRepo) RecordFailure(ctx context.Context, tx *gorm.DB, id uuid.UUID, message string) error {
	return r.updateFields(ctx, tx, id, map[string]interface{}{
		"status": types.UploadStatusFailed,
		"error":  message,
	})
}

func (r *uploadJobRepo) updateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.UploadJob{}).
		Where("id = ?", id).
		Updates(updates).Error
}
