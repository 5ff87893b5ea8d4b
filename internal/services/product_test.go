package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/jobs/webhooktask"
	pkgerrors "github.com/yungbote/catalog-backend/internal/pkg/errors"
	"github.com/yungbote/catalog-backend/internal/repos"
	"github.com/yungbote/catalog-backend/internal/repos/testutil"
	"github.com/yungbote/catalog-backend/internal/types"
)

func newProductFixture(t *testing.T) (*ProductService, *gorm.DB) {
	t.Helper()
	db := testutil.SQLite(t)
	log := testLogger(t)
	events := NewEventEmitter(log, repos.NewTaskRunRepo(db, log))
	return NewProductService(log, repos.NewProductRepo(db, log), events), db
}

func dispatchEvents(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var runs []*types.TaskRun
	if err := db.Where("task_type = ?", webhooktask.TaskType).Order("created_at ASC").Find(&runs).Error; err != nil {
		t.Fatalf("load dispatch tasks: %v", err)
	}
	events := make([]string, 0, len(runs))
	for _, run := range runs {
		events = append(events, string(run.Payload))
	}
	return events
}

func TestProductServiceCreateAppliesDefaultsAndEmitsEvent(t *testing.T) {
	svc, db := newProductFixture(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, ProductInput{SKU: " W-1 "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.SKU != "W-1" || p.Name != "W-1" {
		t.Fatalf("defaults: sku=%q name=%q", p.SKU, p.Name)
	}
	if p.Currency != "USD" || !p.IsActive || !p.Price.IsZero() {
		t.Fatalf("defaults: %+v", p)
	}

	events := dispatchEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("dispatch tasks: want=1 got=%d", len(events))
	}
}

func TestProductServiceCreateRequiresSKU(t *testing.T) {
	svc, _ := newProductFixture(t)
	_, err := svc.Create(context.Background(), ProductInput{Name: "no sku"})
	if !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got=%v", err)
	}
}

func TestProductServiceUpdateIsPartial(t *testing.T) {
	svc, _ := newProductFixture(t)
	ctx := context.Background()

	price := decimal.RequireFromString("9.99")
	desc := "original"
	p, err := svc.Create(ctx, ProductInput{SKU: "W-1", Name: "Widget", Description: &desc, Price: &price, Currency: "EUR"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	inactive := false
	updated, err := svc.Update(ctx, p.ID, ProductInput{IsActive: &inactive})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.IsActive {
		t.Fatalf("is_active not updated")
	}
	if updated.Name != "Widget" || updated.Currency != "EUR" || !updated.Price.Equal(price) {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
	if updated.Description == nil || *updated.Description != "original" {
		t.Fatalf("description changed: %v", updated.Description)
	}
}

func TestProductServiceUpdateMissingProduct(t *testing.T) {
	svc, _ := newProductFixture(t)
	_, err := svc.Update(context.Background(), uuid.New(), ProductInput{Name: "x"})
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got=%v", err)
	}
}

func TestProductServiceDeleteAllEmitsBulkEvent(t *testing.T) {
	svc, db := newProductFixture(t)
	ctx := context.Background()

	for _, sku := range []string{"A", "B"} {
		if _, err := svc.Create(ctx, ProductInput{SKU: sku}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	deleted, err := svc.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted: want=2 got=%d", deleted)
	}

	// Two creates plus the bulk delete.
	events := dispatchEvents(t, db)
	if len(events) != 3 {
		t.Fatalf("dispatch tasks: want=3 got=%d", len(events))
	}
}
