package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/types"
)

// maxResponseBody caps how much of a subscriber's response is kept on the
// delivery log.
const maxResponseBody = 2000

// DeliveryResult captures one POST attempt against a subscriber endpoint.
// StatusCode is nil when the request never got a response.
type DeliveryResult struct {
	StatusCode *int
	DurationMs int
	Body       string
	Err        error
}

func (r DeliveryResult) Succeeded() bool {
	return r.Err == nil && r.StatusCode != nil && *r.StatusCode >= 200 && *r.StatusCode < 300
}

// Dispatcher POSTs event envelopes to webhook targets. It is shared by the
// async dispatch task and the synchronous test endpoint.
type Dispatcher struct {
	log    *logger.Logger
	client *http.Client
}

func NewDispatcher(baseLog *logger.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		log:    baseLog.With("component", "WebhookDispatcher"),
		client: &http.Client{Timeout: timeout},
	}
}

// Deliver POSTs {"event": ..., "payload": ...} to the hook's target with the
// hook's extra headers. Network failures and non-2xx responses are both
// reported through the result, never as a returned error, so one bad
// subscriber cannot poison the rest of a fan-out.
func (d *Dispatcher) Deliver(ctx context.Context, hook *types.Webhook, event string, payload json.RawMessage) DeliveryResult {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	envelope, err := json.Marshal(map[string]json.RawMessage{
		"event":   json.RawMessage(fmt.Sprintf("%q", event)),
		"payload": payload,
	})
	if err != nil {
		return DeliveryResult{Err: fmt.Errorf("marshal envelope: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.TargetURL, bytes.NewReader(envelope))
	if err != nil {
		return DeliveryResult{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	for key, val := range decodeHeaders(hook.Headers) {
		req.Header.Set(key, val)
	}

	started := time.Now()
	resp, err := d.client.Do(req)
	elapsed := int(time.Since(started).Milliseconds())
	if err != nil {
		d.log.Warn("Webhook request failed", "webhook_id", hook.ID, "target", hook.TargetURL, "error", err)
		return DeliveryResult{DurationMs: elapsed, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	code := resp.StatusCode
	return DeliveryResult{
		StatusCode: &code,
		DurationMs: elapsed,
		Body:       string(body),
	}
}

func decodeHeaders(raw []byte) map[string]string {
	headers := map[string]string{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &headers)
	}
	return headers
}
