package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	pkgerrors "github.com/yungbote/catalog-backend/internal/pkg/errors"
	"github.com/yungbote/catalog-backend/internal/repos/testutil"
	"github.com/yungbote/catalog-backend/internal/types"
)

func TestWebhookRepoListEnabledForEvent(t *testing.T) {
	db := testutil.SQLite(t)
	repo := NewWebhookRepo(db, testutil.Logger(t))
	ctx := context.Background()

	seed := []*types.Webhook{
		{Name: "a", TargetURL: "http://a.test", Event: "product.created", IsEnabled: true},
		{Name: "b", TargetURL: "http://b.test", Event: "product.created", IsEnabled: false},
		{Name: "c", TargetURL: "http://c.test", Event: "product.deleted", IsEnabled: true},
	}
	for _, hook := range seed {
		hook.Headers = datatypes.JSON([]byte("{}"))
		if err := repo.Create(ctx, nil, hook); err != nil {
			t.Fatalf("seed %s: %v", hook.Name, err)
		}
	}

	hooks, err := repo.ListEnabledForEvent(ctx, nil, "product.created")
	if err != nil {
		t.Fatalf("ListEnabledForEvent: %v", err)
	}
	if len(hooks) != 1 || hooks[0].Name != "a" {
		t.Fatalf("want only enabled hook a, got=%d", len(hooks))
	}

	hooks, err = repo.ListEnabledForEvent(ctx, nil, "product.updated")
	if err != nil {
		t.Fatalf("ListEnabledForEvent no subscribers: %v", err)
	}
	if len(hooks) != 0 {
		t.Fatalf("want none, got=%d", len(hooks))
	}
}

func TestWebhookRepoDeleteNotFound(t *testing.T) {
	db := testutil.SQLite(t)
	repo := NewWebhookRepo(db, testutil.Logger(t))

	err := repo.Delete(context.Background(), nil, uuid.New())
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got=%v", err)
	}
}

func TestWebhookDeliveryRepoListByWebhook(t *testing.T) {
	db := testutil.SQLite(t)
	hooks := NewWebhookRepo(db, testutil.Logger(t))
	deliveries := NewWebhookDeliveryRepo(db, testutil.Logger(t))
	ctx := context.Background()

	hook := &types.Webhook{Name: "a", TargetURL: "http://a.test", Event: "product.created", Headers: datatypes.JSON([]byte("{}")), IsEnabled: true}
	if err := hooks.Create(ctx, nil, hook); err != nil {
		t.Fatalf("create hook: %v", err)
	}
	other := &types.Webhook{Name: "b", TargetURL: "http://b.test", Event: "product.created", Headers: datatypes.JSON([]byte("{}")), IsEnabled: true}
	if err := hooks.Create(ctx, nil, other); err != nil {
		t.Fatalf("create other hook: %v", err)
	}

	code := 200
	for i := 0; i < 3; i++ {
		record := &types.WebhookDelivery{
			WebhookID:    hook.ID,
			Event:        "product.created",
			Payload:      datatypes.JSON([]byte(`{"id":"x"}`)),
			ResponseCode: &code,
			Status:       types.DeliveryStatusSuccess,
		}
		if err := deliveries.Create(ctx, nil, record); err != nil {
			t.Fatalf("create delivery: %v", err)
		}
	}
	if err := deliveries.Create(ctx, nil, &types.WebhookDelivery{
		WebhookID: other.ID,
		Event:     "product.created",
		Payload:   datatypes.JSON([]byte(`{}`)),
		Status:    types.DeliveryStatusFailed,
	}); err != nil {
		t.Fatalf("create other delivery: %v", err)
	}

	got, err := deliveries.ListByWebhook(ctx, nil, hook.ID, 2)
	if err != nil {
		t.Fatalf("ListByWebhook: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("limit: want=2 got=%d", len(got))
	}
	for _, record := range got {
		if record.WebhookID != hook.ID {
			t.Fatalf("cross-hook leak: %v", record.WebhookID)
		}
	}
}
