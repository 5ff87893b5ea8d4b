package ingesttask

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/catalog-backend/internal/ingest"
	"github.com/yungbote/catalog-backend/internal/jobs/runtime"
	"github.com/yungbote/catalog-backend/internal/jobs/webhooktask"
	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/repos"
	"github.com/yungbote/catalog-backend/internal/repos/testutil"
	"github.com/yungbote/catalog-backend/internal/storage"
	"github.com/yungbote/catalog-backend/internal/types"
	"github.com/yungbote/catalog-backend/internal/webhook"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestHandlerRunsIngestionForPayloadJob(t *testing.T) {
	db := testutil.SQLite(t)
	log := testLogger(t)
	ledger := repos.NewUploadJobRepo(db, log)
	products := repos.NewProductRepo(db, log)
	taskRuns := repos.NewTaskRunRepo(db, log)
	blob, err := storage.NewLocalStore(t.TempDir(), 0, log)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	csvPath := filepath.Join(t.TempDir(), "upload.csv")
	if err := os.WriteFile(csvPath, []byte("sku,name,price\na,Alpha,1.50\nb,Beta,2.00\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	job := &types.UploadJob{Filename: "upload.csv", StoragePath: csvPath, Status: types.UploadStatusQueued}
	if err := ledger.Create(ctx, nil, job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	pipeline := ingest.NewPipeline(log, ledger, products, blob, ingest.Config{})
	h := NewHandler(pipeline, taskRuns)
	if h.Type() != TaskType {
		t.Fatalf("type: got=%q", h.Type())
	}

	run, err := taskRuns.Enqueue(ctx, nil, TaskType, map[string]any{"job_id": job.ID.String()})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	jc := runtime.NewContext(ctx, db, run, taskRuns, log)
	if err := h.Run(jc); err != nil {
		t.Fatalf("Run: %v", err)
	}

	done, err := ledger.GetByID(ctx, nil, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if done.Status != types.UploadStatusCompleted {
		t.Fatalf("status: want=completed got=%s", done.Status)
	}
	if done.TotalRows == nil || *done.TotalRows != 2 {
		t.Fatalf("total_rows: got=%v", done.TotalRows)
	}

	_, total, err := products.List(ctx, nil, repos.ProductFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 {
		t.Fatalf("products: want=2 got=%d", total)
	}

	var dispatch types.TaskRun
	if err := db.First(&dispatch, "task_type = ?", webhooktask.TaskType).Error; err != nil {
		t.Fatalf("expected upload.completed dispatch task: %v", err)
	}
	if !strings.Contains(string(dispatch.Payload), webhook.EventUploadCompleted) {
		t.Fatalf("dispatch payload: got=%s", dispatch.Payload)
	}
}

func TestHandlerMissingJobIDFailsTask(t *testing.T) {
	db := testutil.SQLite(t)
	log := testLogger(t)
	taskRuns := repos.NewTaskRunRepo(db, log)

	run, err := taskRuns.Enqueue(context.Background(), nil, TaskType, nil)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	jc := runtime.NewContext(context.Background(), db, run, taskRuns, log)

	h := NewHandler(nil, taskRuns)
	if err := h.Run(jc); err == nil {
		t.Fatalf("missing job_id must error")
	}
}
