package ports

import (
	"context"
	"time"
)

// DecisionEvent is published whenever a reviewer's decision has been
// acknowledged by the clinic API. Consumed by the notification bot.
type DecisionEvent struct {
	EventID   string    `json:"event_id"`
	RequestID int64     `json:"request_id"`
	PatientID string    `json:"patient_id"`
	Role      string    `json:"role"`
	Decision  string    `json:"decision"`
	Comment   string    `json:"comment,omitempty"`
	Status    string    `json:"status"`
	DecidedAt time.Time `json:"decided_at"`
}

type DecisionPublisher interface {
	PublishDecision(ctx context.Context, evt DecisionEvent) error
}
