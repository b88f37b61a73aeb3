package notify

import "time"

// Envelope wraps every published event.
type Envelope struct {
	EventID        string         `json:"event_id"`
	EventType      string         `json:"event_type"`
	SchemaVersion  string         `json:"schema_version"`
	IdempotencyKey string         `json:"idempotency_key"`
	Timestamp      time.Time      `json:"timestamp"`
	Source         string         `json:"source"`
	Data           map[string]any `json:"data"`
}

// Message is a direct notice to a poster or worker over a delivery channel.
type Message struct {
	Channel   string    `json:"channel"` // sms | email | push
	Recipient string    `json:"recipient"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
}

// Event type constants
const (
	EventListingCreated        = "listing.created"
	EventListingCancelled      = "listing.cancelled"
	EventListingCompleted      = "listing.completed"
	EventListingWindowExtended = "listing.window_extended"
	EventListingRequeued       = "listing.requeued"

	EventBidSubmitted = "bid.submitted"
	EventBidAccepted  = "bid.accepted"

	EventSLAWarning  = "task.sla_warning"
	EventSLAViolated = "task.sla_violated"
)
