package providers

import (
	"context"
	"encoding/json"
	"fmt"
)

// StatusCompleted is the only capture status that grants access.
const StatusCompleted = "COMPLETED"

// Amount is a decimal money value already formatted for the provider.
type Amount struct {
	Value    string
	Currency string
}

// Order is a freshly created provider order.
type Order struct {
	ID     string
	Status string
}

// CaptureResult is the provider's answer to a capture. Raw holds the
// provider's full response and is what clients receive.
type CaptureResult struct {
	ID     string
	Status string
	Raw    json.RawMessage
}

// Completed reports whether the capture moved money.
func (r *CaptureResult) Completed() bool {
	return r != nil && r.Status == StatusCompleted
}

func (r CaptureResult) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	return json.Marshal(struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}{r.ID, r.Status})
}

// CompletedResult stands in for a capture the provider already settled
// earlier, e.g. when a retried capture is refused as a duplicate.
func CompletedResult(orderID string) *CaptureResult {
	return &CaptureResult{ID: orderID, Status: StatusCompleted}
}

// PaymentProvider creates and captures one-time orders.
type PaymentProvider interface {
	CreateOrder(ctx context.Context, amount Amount) (*Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error)
}

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	KindNotConfigured ErrorKind = "provider_not_configured"
	KindRejected      ErrorKind = "provider_rejected"
	KindUnavailable   ErrorKind = "provider_unavailable"
)

// ProviderError describes a failed provider call. Name and Message come
// from the provider's error body and never contain credentials.
type ProviderError struct {
	Kind       ErrorKind
	Op         string
	StatusCode int
	Name       string
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
