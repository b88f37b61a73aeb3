package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Dispatcher delivers events and direct messages to the notification
// collaborator over HTTP webhooks. Delivery is best-effort: a dispatch failure
// is logged and swallowed so the state transition that triggered it still
// commits.
type Dispatcher struct {
	source     string
	httpClient *http.Client
	endpoints  map[string]string // eventType -> webhook URL
	messageURL string            // direct-message gateway, optional
}

func NewDispatcher(source string) *Dispatcher {
	return &Dispatcher{
		source: source,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		endpoints: make(map[string]string),
	}
}

// RegisterEndpoint registers a webhook endpoint for an event type.
func (d *Dispatcher) RegisterEndpoint(eventType, webhookURL string) {
	d.endpoints[eventType] = webhookURL
}

// SetMessageGateway sets the URL direct messages are POSTed to. Unset means
// messages are only logged.
func (d *Dispatcher) SetMessageGateway(url string) {
	d.messageURL = url
}

// Publish emits a typed event.
func (d *Dispatcher) Publish(ctx context.Context, eventType string, data map[string]any) error {
	envelope := Envelope{
		EventID:        "evt_" + uuid.NewString(),
		EventType:      eventType,
		SchemaVersion:  "1.0",
		IdempotencyKey: fmt.Sprintf("%s_%s_%d", eventType, data["listing_id"], time.Now().Unix()),
		Timestamp:      time.Now().UTC(),
		Source:         d.source,
		Data:           data,
	}

	slog.InfoContext(ctx, "event_published",
		"event_id", envelope.EventID,
		"event_type", envelope.EventType,
		"source", envelope.Source,
	)

	if webhookURL, ok := d.endpoints[eventType]; ok {
		d.post(ctx, webhookURL, eventType, envelope)
	}
	return nil
}

// Send delivers a direct message to a recipient over the given channel.
func (d *Dispatcher) Send(ctx context.Context, channel, recipient, body string) error {
	msg := Message{
		Channel:   channel,
		Recipient: recipient,
		Body:      body,
		SentAt:    time.Now().UTC(),
	}

	slog.InfoContext(ctx, "message_sent",
		"channel", channel,
		"recipient", recipient,
	)

	if d.messageURL != "" {
		d.post(ctx, d.messageURL, "message", msg)
	}
	return nil
}

func (d *Dispatcher) post(ctx context.Context, url, kind string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.WarnContext(ctx, "notify_marshal_failed", "kind", kind, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		slog.WarnContext(ctx, "notify_request_failed", "kind", kind, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "notify_delivery_failed", "url", url, "kind", kind, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		slog.WarnContext(ctx, "notify_delivery_error", "url", url, "kind", kind, "status", resp.StatusCode)
	}
}
