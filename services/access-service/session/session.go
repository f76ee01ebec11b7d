package session

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned by a Store when no live record exists for
// the id. Expired records are reported the same way.
var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side state bound to a browser cookie.
type Session struct {
	Paid      bool       `json:"paid"`
	OrderID   string     `json:"orderId,omitempty"`
	PaidAt    *time.Time `json:"paidAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// New returns an unpaid session created at now.
func New(now time.Time) *Session {
	return &Session{CreatedAt: now.UTC()}
}

// HasAccess reports whether the session holds a completed payment.
func (s *Session) HasAccess() bool {
	return s != nil && s.Paid
}

// Grant records a completed payment. A paid session is never reset to
// unpaid; granting again only replaces the order reference.
func (s *Session) Grant(orderID string, at time.Time) {
	paidAt := at.UTC()
	s.Paid = true
	s.OrderID = orderID
	s.PaidAt = &paidAt
}

func (s *Session) clone() *Session {
	cp := *s
	if s.PaidAt != nil {
		t := *s.PaidAt
		cp.PaidAt = &t
	}
	return &cp
}

// Store persists sessions by id. Put refreshes the record's expiry.
// Destroy on a missing id is not an error.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, id string, s *Session) error
	Destroy(ctx context.Context, id string) error
}
