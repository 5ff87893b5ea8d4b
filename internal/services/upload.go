package services

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/yungbote/catalog-backend/internal/jobs/ingesttask"
	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/repos"
	"github.com/yungbote/catalog-backend/internal/storage"
	"github.com/yungbote/catalog-backend/internal/types"
)

// UploadService accepts CSV uploads, parks the bytes in blob storage, opens a
// ledger entry, and queues the ingestion task. Everything after Enqueue
// returns happens asynchronously; clients poll the job.
type UploadService struct {
	log      *logger.Logger
	blob     storage.BlobStore
	ledger   repos.UploadJobRepo
	taskRuns repos.TaskRunRepo
}

func NewUploadService(baseLog *logger.Logger, blob storage.BlobStore, ledger repos.UploadJobRepo, taskRuns repos.TaskRunRepo) *UploadService {
	return &UploadService{
		log:      baseLog.With("service", "UploadService"),
		blob:     blob,
		ledger:   ledger,
		taskRuns: taskRuns,
	}
}

func (s *UploadService) Enqueue(ctx context.Context, originalName string, r io.Reader) (*types.UploadJob, error) {
	saved, err := s.blob.Save(ctx, originalName, r)
	if err != nil {
		return nil, err
	}

	job := &types.UploadJob{
		Filename:    saved.OriginalName,
		StoragePath: saved.Locator,
		Status:      types.UploadStatusReceived,
	}
	if err := s.ledger.Create(ctx, nil, job); err != nil {
		s.blob.Delete(ctx, saved.Locator)
		return nil, fmt.Errorf("create upload job: %w", err)
	}

	if _, err := s.taskRuns.Enqueue(ctx, nil, ingesttask.TaskType, map[string]any{
		"job_id": job.ID.String(),
	}); err != nil {
		// The bytes stay put; the failed entry tells the client what happened.
		if ferr := s.ledger.RecordFailure(ctx, nil, job.ID, "failed to queue ingestion task"); ferr != nil {
			s.log.Error("Failed to record queue failure", "job_id", job.ID, "error", ferr)
		}
		return nil, fmt.Errorf("enqueue ingestion task: %w", err)
	}

	if err := s.ledger.SetStatus(ctx, nil, job.ID, types.UploadStatusQueued); err != nil {
		return nil, err
	}
	job.Status = types.UploadStatusQueued
	s.log.Info("Upload accepted", "job_id", job.ID, "filename", job.Filename, "size_bytes", saved.SizeBytes)
	return job, nil
}

func (s *UploadService) GetJob(ctx context.Context, id uuid.UUID) (*types.UploadJob, error) {
	return s.ledger.GetByID(ctx, nil, id)
}

func (s *UploadService) ListJobs(ctx context.Context, limit int) ([]*types.UploadJob, error) {
	return s.ledger.ListRecent(ctx, nil, limit)
}
