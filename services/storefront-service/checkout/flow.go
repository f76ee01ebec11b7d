// Package checkout implements the two-step purchase protocol the payment
// widget drives: Initiate creates a provider order, Finalize captures it and
// turns the outcome into an access decision.
package checkout

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kpsbusiness/paywall/services/common/logger"
	"github.com/kpsbusiness/paywall/services/storefront-service/clients"
	"go.uber.org/zap"
)

const statusCompleted = "COMPLETED"

// Messages shown to the buyer when a purchase does not unlock access.
const (
	MsgDeclined     = "Payment failed. Please try again."
	MsgUnavailable  = "Payment is temporarily unavailable. Please try again later."
	MsgMissingOrder = "Missing order reference. Please try again."
)

// Gateway is the part of the access gateway the flow talks to.
type Gateway interface {
	CreateOrder(ctx context.Context, headers http.Header) (string, []string, error)
	CaptureOrder(ctx context.Context, headers http.Header, orderID string) (*clients.CaptureReply, []string, error)
}

// Decision is the storefront's answer to a finalized purchase.
type Decision struct {
	Granted bool   `json:"granted"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

type Flow struct {
	gateway Gateway
	logger  *zap.Logger
}

func NewFlow(gateway Gateway, logger *zap.Logger) *Flow {
	return &Flow{gateway: gateway, logger: logger}
}

// Initiate creates an order and returns its id for the widget.
func (f *Flow) Initiate(ctx context.Context, headers http.Header) (string, []string, error) {
	id, cookies, err := f.gateway.CreateOrder(ctx, headers)
	if err != nil {
		logger.With(ctx, f.logger).Error("Checkout initiate failed", zap.Error(err))
		return "", cookies, err
	}
	logger.With(ctx, f.logger).Info("Checkout initiated", zap.String("order_id", id))
	return id, cookies, nil
}

// Finalize captures orderID. Only a COMPLETED capture grants access; every
// other outcome, including gateway failures, is a non-granting decision.
func (f *Flow) Finalize(ctx context.Context, headers http.Header, orderID string) (Decision, []string) {
	log := logger.With(ctx, f.logger)

	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return Decision{Message: MsgMissingOrder}, nil
	}
	log = log.With(zap.String("order_id", orderID))

	reply, cookies, err := f.gateway.CaptureOrder(ctx, headers, orderID)
	if err != nil {
		var ge *clients.GatewayError
		if errors.As(err, &ge) && ge.StatusCode == http.StatusBadRequest {
			log.Warn("Gateway rejected capture request", zap.Error(err))
			return Decision{Message: MsgMissingOrder}, cookies
		}
		log.Error("Checkout finalize failed", zap.Error(err))
		return Decision{Message: MsgUnavailable}, cookies
	}

	if reply.Status != statusCompleted {
		log.Warn("Capture not completed", zap.String("status", reply.Status))
		return Decision{Status: reply.Status, Message: MsgDeclined}, cookies
	}

	log.Info("Checkout completed, access granted")
	return Decision{Granted: true, Status: reply.Status}, cookies
}
