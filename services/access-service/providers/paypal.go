package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/plutov/paypal/v4"
)

const (
	ModeSandbox = "sandbox"
	ModeLive    = "live"
)

// PayPalConfig configures the PayPal Orders v2 client.
type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	Mode         string
	Timeout      time.Duration
	// APIBase overrides the mode-derived endpoint.
	APIBase string
}

// PayPalProvider talks to PayPal's Orders v2 API. A provider built without
// credentials still answers every call, with a KindNotConfigured error.
type PayPalProvider struct {
	client  *paypal.Client
	initErr error
	timeout time.Duration
}

func NewPayPalProvider(cfg PayPalConfig) *PayPalProvider {
	p := &PayPalProvider{timeout: cfg.Timeout}

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		p.initErr = &ProviderError{
			Kind:    KindNotConfigured,
			Op:      "init",
			Message: "PayPal client id or secret is missing",
		}
		return p
	}

	base := cfg.APIBase
	if base == "" {
		base = paypal.APIBaseSandBox
		if cfg.Mode == ModeLive {
			base = paypal.APIBaseLive
		}
	}

	client, err := paypal.NewClient(cfg.ClientID, cfg.ClientSecret, base)
	if err != nil {
		p.initErr = &ProviderError{Kind: KindNotConfigured, Op: "init", Message: "PayPal client could not be created", Err: err}
		return p
	}
	client.Client = &http.Client{Timeout: cfg.Timeout}
	p.client = client
	return p
}

// Ready reports whether the provider can make calls.
func (p *PayPalProvider) Ready() bool {
	return p.initErr == nil
}

func (p *PayPalProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *PayPalProvider) CreateOrder(ctx context.Context, amount Amount) (*Order, error) {
	if p.initErr != nil {
		return nil, p.initErr
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	units := []paypal.PurchaseUnitRequest{{
		Amount: &paypal.PurchaseUnitAmount{Currency: amount.Currency, Value: amount.Value},
	}}
	order, err := p.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, nil)
	if err != nil {
		return nil, classify("create order", err)
	}
	return &Order{ID: order.ID, Status: order.Status}, nil
}

func (p *PayPalProvider) CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	if p.initErr != nil {
		return nil, p.initErr
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	resp, err := p.client.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, classify("capture order", err)
	}

	// A response that cannot be re-encoded falls back to id and status.
	raw, _ := json.Marshal(resp)
	return &CaptureResult{ID: resp.ID, Status: resp.Status, Raw: raw}, nil
}

func classify(op string, err error) *ProviderError {
	var apiErr *paypal.ErrorResponse
	if errors.As(err, &apiErr) {
		pe := &ProviderError{
			Kind:    KindRejected,
			Op:      op,
			Name:    apiErr.Name,
			Message: apiErr.Message,
			Err:     err,
		}
		if apiErr.Response != nil {
			pe.StatusCode = apiErr.Response.StatusCode
		}
		switch {
		case pe.StatusCode >= http.StatusInternalServerError:
			pe.Kind = KindUnavailable
		case pe.StatusCode == http.StatusUnauthorized && pe.Message == "":
			pe.Message = "PayPal rejected the API credentials"
		}
		return pe
	}

	pe := &ProviderError{Kind: KindUnavailable, Op: op, Message: "PayPal could not be reached", Err: err}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		pe.Message = "PayPal did not answer in time"
	}
	return pe
}
