package events

import "time"

const RequestLifecycleTopic = "detachement.request.lifecycle.v1"

const (
	RequestSubmitted = "request_submitted"
	RequestValidated = "request_validated"
	RequestRefused   = "request_refused"
	RequestCancelled = "request_cancelled"
)

type RequestLifecycleEvent struct {
	EventType  string    `json:"event_type"`
	TraceID    string    `json:"trace_id,omitempty"`
	RequestID  string    `json:"request_id"`
	Entity     string    `json:"entity"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	Days       float64   `json:"days"`
	OccurredAt time.Time `json:"occurred_at"`
}
