package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/yungbote/catalog-backend/internal/pkg/errors"
	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/repos"
	"github.com/yungbote/catalog-backend/internal/storage"
	"github.com/yungbote/catalog-backend/internal/types"
)

// maxErrorLen caps the human-readable error stored on the ledger. Anything
// longer is cut and marked with an ellipsis; stack traces never reach clients.
const maxErrorLen = 900

// Upserter is the slice of the product repository the pipeline needs.
type Upserter interface {
	UpsertBatch(ctx context.Context, tx *gorm.DB, batch []*types.Product) error
}

type Config struct {
	ChunkSize  int
	ScratchDir string
}

// Pipeline drives one ingestion run: stream the stored CSV, normalize and
// dedupe each chunk, upsert it, and keep the ledger entry current so pollers
// see progress mid-run. A run either completes the job or marks it failed and
// returns the error for the task layer's bounded retry; retries reprocess the
// whole file, which is safe because upserts are idempotent per SKU.
type Pipeline struct {
	log        *logger.Logger
	ledger     repos.UploadJobRepo
	upserter   Upserter
	blob       storage.BlobStore
	chunkSize  int
	scratchDir string
}

func NewPipeline(baseLog *logger.Logger, ledger repos.UploadJobRepo, upserter Upserter, blob storage.BlobStore, cfg Config) *Pipeline {
	chunkSize := cfg.ChunkSize
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	return &Pipeline{
		log:        baseLog.With("component", "IngestionPipeline"),
		ledger:     ledger,
		upserter:   upserter,
		blob:       blob,
		chunkSize:  chunkSize,
		scratchDir: cfg.ScratchDir,
	}
}

func (p *Pipeline) Run(ctx context.Context, jobID uuid.UUID) error {
	job, err := p.ledger.GetByID(ctx, nil, jobID)
	if errors.Is(err, pkgerrors.ErrNotFound) {
		// Already cleaned up or never existed; nothing to retry.
		p.log.Warn("Upload job not found, skipping run", "job_id", jobID)
		return nil
	}
	if err != nil {
		return err
	}

	if err := p.ledger.SetStatus(ctx, nil, job.ID, types.UploadStatusParsing); err != nil {
		return p.fail(ctx, job.ID, fmt.Errorf("set status parsing: %w", err))
	}

	path := job.StoragePath
	if storage.IsRemoteLocator(path) {
		scratch, err := os.CreateTemp(p.scratchDir, "ingest-*.csv")
		if err != nil {
			return p.fail(ctx, job.ID, fmt.Errorf("create scratch file: %w", err))
		}
		scratchPath := scratch.Name()
		_ = scratch.Close()
		// Scratch files are scoped to this run, on every exit path.
		defer func() { _ = os.Remove(scratchPath) }()

		if err := p.blob.Materialize(ctx, path, scratchPath); err != nil {
			return p.fail(ctx, job.ID, fmt.Errorf("materialize %s: %w", path, err))
		}
		path = scratchPath
	}

	f, err := os.Open(path)
	if err != nil {
		return p.fail(ctx, job.ID, fmt.Errorf("open %s: %w", path, err))
	}
	defer f.Close()

	reader, err := NewChunkReader(f, p.chunkSize)
	if err != nil {
		return p.fail(ctx, job.ID, fmt.Errorf("read csv header: %w", err))
	}

	total := 0
	for {
		records, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return p.fail(ctx, job.ID, fmt.Errorf("read csv: %w", err))
		}

		if err := p.ledger.SetStatus(ctx, nil, job.ID, types.UploadStatusUpserting); err != nil {
			return p.fail(ctx, job.ID, fmt.Errorf("set status upserting: %w", err))
		}

		// Dedupe within the chunk by raw SKU, last row winning. Each chunk is
		// a separate statement, so across chunks the last chunk wins too.
		batch := map[string]*types.Product{}
		for _, record := range records {
			row, ok := NormalizeRecord(reader.Headers(), record)
			if !ok {
				continue
			}
			batch[row.SKU] = row.Product()
		}
		if len(batch) == 0 {
			continue
		}

		products := make([]*types.Product, 0, len(batch))
		for _, product := range batch {
			products = append(products, product)
		}
		if err := p.upserter.UpsertBatch(ctx, nil, products); err != nil {
			return p.fail(ctx, job.ID, fmt.Errorf("upsert batch: %w", err))
		}

		total += len(products)
		if err := p.ledger.RecordProgress(ctx, nil, job.ID, total); err != nil {
			return p.fail(ctx, job.ID, fmt.Errorf("record progress: %w", err))
		}
	}

	if err := p.ledger.RecordCompletion(ctx, nil, job.ID, total); err != nil {
		return p.fail(ctx, job.ID, fmt.Errorf("record completion: %w", err))
	}
	p.log.Info("Upload job completed", "job_id", job.ID, "total_rows", total)
	return nil
}

// fail records the truncated error on the ledger and passes the original
// error through for the retry policy.
func (p *Pipeline) fail(ctx context.Context, jobID uuid.UUID, err error) error {
	p.log.Error("Upload job failed", "job_id", jobID, "error", err)
	if rerr := p.ledger.RecordFailure(ctx, nil, jobID, TruncateError(err.Error())); rerr != nil {
		p.log.Error("Failed to record job failure", "job_id", jobID, "error", rerr)
	}
	return err
}

// TruncateError caps an error message at maxErrorLen characters, replacing
// the tail with an ellipsis.
func TruncateError(msg string) string {
	runes := []rune(msg)
	if len(runes) <= maxErrorLen {
		return msg
	}
	return string(runes[:maxErrorLen]) + "…"
}
