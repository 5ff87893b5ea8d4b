package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/yungbote/catalog-backend/internal/pkg/errors"
	"github.com/yungbote/catalog-backend/internal/repos"
	"github.com/yungbote/catalog-backend/internal/repos/testutil"
	"github.com/yungbote/catalog-backend/internal/types"
	"github.com/yungbote/catalog-backend/internal/webhook"
)

func newWebhookFixture(t *testing.T) *WebhookService {
	t.Helper()
	db := testutil.SQLite(t)
	log := testLogger(t)
	return NewWebhookService(
		log,
		repos.NewWebhookRepo(db, log),
		repos.NewWebhookDeliveryRepo(db, log),
		webhook.NewDispatcher(log, 2*time.Second),
	)
}

func TestWebhookServiceCreateValidation(t *testing.T) {
	svc := newWebhookFixture(t)
	ctx := context.Background()

	cases := []WebhookInput{
		{TargetURL: "", Event: "product.created"},
		{TargetURL: "not a url", Event: "product.created"},
		{TargetURL: "ftp://host/path", Event: "product.created"},
		{TargetURL: "http://host.test/hook", Event: ""},
	}
	for _, input := range cases {
		if _, err := svc.Create(ctx, input); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
			t.Fatalf("input %+v: want ErrInvalidArgument, got=%v", input, err)
		}
	}

	hook, err := svc.Create(ctx, WebhookInput{TargetURL: "https://host.test/hook", Event: "product.created"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if hook.Name != "product.created" {
		t.Fatalf("name defaults to event, got=%q", hook.Name)
	}
	if !hook.IsEnabled {
		t.Fatalf("hooks default to enabled")
	}
}

func TestWebhookServiceUpdateIsPartial(t *testing.T) {
	svc := newWebhookFixture(t)
	ctx := context.Background()

	hook, err := svc.Create(ctx, WebhookInput{
		Name:      "orders",
		TargetURL: "https://host.test/hook",
		Event:     "product.created",
		Headers:   map[string]string{"X-Api-Key": "secret"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	disabled := false
	updated, err := svc.Update(ctx, hook.ID, WebhookInput{IsEnabled: &disabled})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.IsEnabled {
		t.Fatalf("is_enabled not updated")
	}
	if updated.Name != "orders" || updated.TargetURL != "https://host.test/hook" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	if _, err := svc.Update(ctx, hook.ID, WebhookInput{TargetURL: "bogus"}); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("invalid target on update: want ErrInvalidArgument, got=%v", err)
	}
}

func TestWebhookServiceTestRecordsDelivery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	svc := newWebhookFixture(t)
	ctx := context.Background()

	hook, err := svc.Create(ctx, WebhookInput{TargetURL: srv.URL, Event: "product.created"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, err := svc.Test(ctx, hook.ID)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got=%+v", result)
	}
	if result.ResponseCode == nil || *result.ResponseCode != http.StatusNoContent {
		t.Fatalf("response code: got=%v", result.ResponseCode)
	}

	deliveries, err := svc.ListDeliveries(ctx, hook.ID, 10)
	if err != nil {
		t.Fatalf("ListDeliveries: %v", err)
	}
	if len(deliveries) != 1 {
		t.Fatalf("deliveries: want=1 got=%d", len(deliveries))
	}
	if deliveries[0].Event != "webhook.test" || deliveries[0].Status != types.DeliveryStatusSuccess {
		t.Fatalf("delivery record: %+v", deliveries[0])
	}
}

func TestWebhookServiceListDeliveriesUnknownHook(t *testing.T) {
	svc := newWebhookFixture(t)
	hook, err := svc.Create(context.Background(), WebhookInput{TargetURL: "https://host.test", Event: "x"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(context.Background(), hook.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.ListDeliveries(context.Background(), hook.ID, 10); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got=%v", err)
	}
}
