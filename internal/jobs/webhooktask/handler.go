package webhooktask

import (
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/catalog-backend/internal/jobs/runtime"
	"github.com/yungbote/catalog-backend/internal/repos"
	"github.com/yungbote/catalog-backend/internal/types"
	"github.com/yungbote/catalog-backend/internal/webhook"
)

// TaskType is the queue discriminator for webhook fan-out.
const TaskType = "webhook_dispatch"

// fanOutLimit bounds concurrent POSTs within one dispatch task.
const fanOutLimit = 8

// Handler fans one catalog event out to every enabled subscriber and logs a
// delivery record per attempt. Unreachable or erroring subscribers are
// recorded as failed deliveries without failing the task; only infrastructure
// errors (listing hooks, writing logs) surface as task errors and retry.
type Handler struct {
	hooks      repos.WebhookRepo
	deliveries repos.WebhookDeliveryRepo
	dispatcher *webhook.Dispatcher
}

func NewHandler(hooks repos.WebhookRepo, deliveries repos.WebhookDeliveryRepo, dispatcher *webhook.Dispatcher) *Handler {
	return &Handler{
		hooks:      hooks,
		deliveries: deliveries,
		dispatcher: dispatcher,
	}
}

func (h *Handler) Type() string { return TaskType }

func (h *Handler) Run(jc *runtime.Context) error {
	event, err := jc.PayloadString("event")
	if err != nil {
		return err
	}
	payload, err := json.Marshal(jc.Payload()["payload"])
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	subscribers, err := h.hooks.ListEnabledForEvent(jc.Ctx, nil, event)
	if err != nil {
		return fmt.Errorf("list subscribers for %s: %w", event, err)
	}
	if len(subscribers) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(jc.Ctx)
	g.SetLimit(fanOutLimit)
	for _, hook := range subscribers {
		hook := hook
		g.Go(func() error {
			result := h.dispatcher.Deliver(gctx, hook, event, payload)
			status := types.DeliveryStatusFailed
			if result.Succeeded() {
				status = types.DeliveryStatusSuccess
			}
			body := result.Body
			if result.Err != nil {
				body = result.Err.Error()
			}
			durationMs := result.DurationMs
			record := &types.WebhookDelivery{
				WebhookID:      hook.ID,
				Event:          event,
				Payload:        datatypes.JSON(payload),
				ResponseCode:   result.StatusCode,
				ResponseTimeMs: &durationMs,
				ResponseBody:   body,
				Status:         status,
			}
			if err := h.deliveries.Create(gctx, nil, record); err != nil {
				return fmt.Errorf("record delivery for webhook %s: %w", hook.ID, err)
			}
			return nil
		})
	}
	return g.Wait()
}
