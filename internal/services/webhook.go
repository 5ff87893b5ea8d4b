package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	pkgerrors "github.com/yungbote/catalog-backend/internal/pkg/errors"
	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/repos"
	"github.com/yungbote/catalog-backend/internal/types"
	"github.com/yungbote/catalog-backend/internal/webhook"
)

// WebhookInput carries the mutable fields of a subscription. On update, nil
// pointers mean "leave unchanged".
type WebhookInput struct {
	Name      string            `json:"name"`
	TargetURL string            `json:"target_url"`
	Event     string            `json:"event"`
	Headers   map[string]string `json:"headers"`
	IsEnabled *bool             `json:"is_enabled"`
}

// TestResult is what the synchronous test endpoint reports back.
type TestResult struct {
	Success        bool   `json:"success"`
	ResponseCode   *int   `json:"response_code"`
	ResponseTimeMs int    `json:"response_time_ms"`
	Error          string `json:"error,omitempty"`
}

type WebhookService struct {
	log        *logger.Logger
	hooks      repos.WebhookRepo
	deliveries repos.WebhookDeliveryRepo
	dispatcher *webhook.Dispatcher
}

func NewWebhookService(baseLog *logger.Logger, hooks repos.WebhookRepo, deliveries repos.WebhookDeliveryRepo, dispatcher *webhook.Dispatcher) *WebhookService {
	return &WebhookService{
		log:        baseLog.With("service", "WebhookService"),
		hooks:      hooks,
		deliveries: deliveries,
		dispatcher: dispatcher,
	}
}

func (s *WebhookService) Create(ctx context.Context, input WebhookInput) (*types.Webhook, error) {
	if err := validateTarget(input.TargetURL); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Event) == "" {
		return nil, fmt.Errorf("event is required: %w", pkgerrors.ErrInvalidArgument)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = input.Event
	}
	isEnabled := true
	if input.IsEnabled != nil {
		isEnabled = *input.IsEnabled
	}

	hook := &types.Webhook{
		Name:      name,
		TargetURL: strings.TrimSpace(input.TargetURL),
		Event:     strings.TrimSpace(input.Event),
		Headers:   encodeHeaders(input.Headers),
		IsEnabled: isEnabled,
	}
	if err := s.hooks.Create(ctx, nil, hook); err != nil {
		return nil, err
	}
	return hook, nil
}

func (s *WebhookService) Get(ctx context.Context, id uuid.UUID) (*types.Webhook, error) {
	return s.hooks.GetByID(ctx, nil, id)
}

func (s *WebhookService) List(ctx context.Context) ([]*types.Webhook, error) {
	return s.hooks.List(ctx, nil)
}

func (s *WebhookService) Update(ctx context.Context, id uuid.UUID, input WebhookInput) (*types.Webhook, error) {
	hook, err := s.hooks.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		hook.Name = name
	}
	if target := strings.TrimSpace(input.TargetURL); target != "" {
		if err := validateTarget(target); err != nil {
			return nil, err
		}
		hook.TargetURL = target
	}
	if event := strings.TrimSpace(input.Event); event != "" {
		hook.Event = event
	}
	if input.Headers != nil {
		hook.Headers = encodeHeaders(input.Headers)
	}
	if input.IsEnabled != nil {
		hook.IsEnabled = *input.IsEnabled
	}

	if err := s.hooks.Save(ctx, nil, hook); err != nil {
		return nil, err
	}
	return hook, nil
}

func (s *WebhookService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.hooks.Delete(ctx, nil, id)
}

func (s *WebhookService) ListDeliveries(ctx context.Context, webhookID uuid.UUID, limit int) ([]*types.WebhookDelivery, error) {
	if _, err := s.hooks.GetByID(ctx, nil, webhookID); err != nil {
		return nil, err
	}
	return s.deliveries.ListByWebhook(ctx, nil, webhookID, limit)
}

// Test fires a synthetic event at the hook right now, logging the attempt
// like any other delivery, and reports the outcome to the caller.
func (s *WebhookService) Test(ctx context.Context, id uuid.UUID) (*TestResult, error) {
	hook, err := s.hooks.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	event := "webhook.test"
	payload, _ := json.Marshal(map[string]any{
		"webhook_id": hook.ID.String(),
		"message":    "test delivery",
	})
	result := s.dispatcher.Deliver(ctx, hook, event, payload)

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
	if err := s.deliveries.Create(ctx, nil, record); err != nil {
		s.log.Error("Failed to record test delivery", "webhook_id", hook.ID, "error", err)
	}

	out := &TestResult{
		Success:        result.Succeeded(),
		ResponseCode:   result.StatusCode,
		ResponseTimeMs: result.DurationMs,
	}
	if result.Err != nil {
		out.Error = result.Err.Error()
	}
	return out, nil
}

func validateTarget(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("target_url must be an absolute http(s) url: %w", pkgerrors.ErrInvalidArgument)
	}
	return nil
}

func encodeHeaders(headers map[string]string) datatypes.JSON {
	if len(headers) == 0 {
		return datatypes.JSON([]byte("{}"))
	}
	raw, _ := json.Marshal(headers)
	return datatypes.JSON(raw)
}
