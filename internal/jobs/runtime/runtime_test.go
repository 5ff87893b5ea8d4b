package runtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/repos"
	"github.com/yungbote/catalog-backend/internal/types"
)

type nopHandler struct{ taskType string }

func (h nopHandler) Type() string          { return h.taskType }
func (h nopHandler) Run(jc *Context) error { return nil }

type nopTaskRuns struct{}

func (nopTaskRuns) Enqueue(ctx context.Context, tx *gorm.DB, taskType string, payload map[string]any) (*types.TaskRun, error) {
	return nil, nil
}
func (nopTaskRuns) ClaimNextRunnable(ctx context.Context, tx *gorm.DB, policy repos.RunnablePolicy) (*types.TaskRun, error) {
	return nil, nil
}
func (nopTaskRuns) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}
func (nopTaskRuns) Heartbeat(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return nil
}

func testContext(t *testing.T, payload string) *Context {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	run := &types.TaskRun{
		ID:       uuid.New(),
		TaskType: "product_ingestion",
		Payload:  datatypes.JSON([]byte(payload)),
	}
	return NewContext(context.Background(), nil, run, nopTaskRuns{}, log)
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(nopHandler{taskType: "a"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(nopHandler{taskType: "a"}); err == nil {
		t.Fatalf("duplicate registration must be rejected")
	}
	if err := r.Register(nopHandler{}); err == nil {
		t.Fatalf("empty type must be rejected")
	}
	if _, ok := r.Get("a"); !ok {
		t.Fatalf("registered handler not found")
	}
	if _, ok := r.Get("b"); ok {
		t.Fatalf("unregistered type must miss")
	}
}

func TestContextPayloadUUID(t *testing.T) {
	id := uuid.New()
	jc := testContext(t, `{"job_id":"`+id.String()+`"}`)

	got, err := jc.PayloadUUID("job_id")
	if err != nil {
		t.Fatalf("PayloadUUID: %v", err)
	}
	if got != id {
		t.Fatalf("uuid: want=%s got=%s", id, got)
	}

	if _, err := jc.PayloadUUID("missing"); err == nil {
		t.Fatalf("missing key must error")
	}

	jc = testContext(t, `{"job_id":"not-a-uuid"}`)
	if _, err := jc.PayloadUUID("job_id"); err == nil {
		t.Fatalf("malformed uuid must error")
	}
}

func TestContextPayloadString(t *testing.T) {
	jc := testContext(t, `{"event":"product.created","count":3}`)

	got, err := jc.PayloadString("event")
	if err != nil {
		t.Fatalf("PayloadString: %v", err)
	}
	if got != "product.created" {
		t.Fatalf("event: got=%q", got)
	}
	if _, err := jc.PayloadString("count"); err == nil {
		t.Fatalf("non-string value must error")
	}
}

func TestContextPayloadToleratesMalformedJSON(t *testing.T) {
	jc := testContext(t, `{not json`)
	if got := jc.Payload(); len(got) != 0 {
		t.Fatalf("malformed payload should decode to empty map, got=%v", got)
	}
}
