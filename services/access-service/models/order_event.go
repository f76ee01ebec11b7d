package models

import "time"

const (
	EventOrderCreated          = "order_created"
	EventOrderCaptured         = "order_captured"
	EventCaptureNotCompleted   = "capture_not_completed"
	EventCaptureFailed         = "capture_failed"
	EventCaptureAlreadyGranted = "capture_already_granted"
)

// OrderEvent is published for out-of-band reconciliation. Access decisions
// never read it back.
type OrderEvent struct {
	Type      string    `json:"type"`
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status,omitempty"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}
