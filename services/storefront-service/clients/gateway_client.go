package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// PaymentConfig mirrors the gateway's public payment configuration.
type PaymentConfig struct {
	PayPalClientID string `json:"paypalClientId"`
	Currency       string `json:"currency"`
	Amount         string `json:"amount"`
}

// CaptureReply holds the fields of the provider capture object the
// storefront acts on.
type CaptureReply struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// GatewayError is a non-2xx answer from the access gateway.
type GatewayError struct {
	StatusCode int
	Code       string
	Message    string
	Reason     string
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("gateway error: status=%d", e.StatusCode)
	if e.Code != "" {
		msg += " code=" + e.Code
	}
	if e.Reason != "" {
		msg += " reason=" + e.Reason
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

type GatewayClient struct {
	baseURL string
	client  *http.Client
}

func NewGatewayClient(baseURL string, timeout time.Duration) *GatewayClient {
	return &GatewayClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *GatewayClient) Do(ctx context.Context, method, path string, headers http.Header, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	for k, v := range headers {
		for _, vv := range v {
			req.Header.Add(k, vv)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return g.client.Do(req)
}

// call performs a JSON round trip and returns the Set-Cookie values the
// gateway sent, even when the call failed.
func (g *GatewayClient) call(ctx context.Context, method, path string, headers http.Header, in, out interface{}) ([]string, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = BodyFromBytes(b)
	}

	resp, err := g.Do(ctx, method, path, headers, body)
	if err != nil {
		return nil, fmt.Errorf("gateway %s %s: %w", method, path, err)
	}
	setCookies := resp.Header.Values("Set-Cookie")
	return setCookies, DecodeJSON(resp, out)
}

// CheckAccess asks whether the browser session has paid.
func (g *GatewayClient) CheckAccess(ctx context.Context, headers http.Header) (bool, []string, error) {
	var out struct {
		HasAccess bool `json:"hasAccess"`
	}
	cookies, err := g.call(ctx, http.MethodGet, "/api/check-access", headers, nil, &out)
	if err != nil {
		return false, cookies, err
	}
	return out.HasAccess, cookies, nil
}

func (g *GatewayClient) Config(ctx context.Context, headers http.Header) (*PaymentConfig, error) {
	var out PaymentConfig
	if _, err := g.call(ctx, http.MethodGet, "/api/config", headers, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *GatewayClient) CreateOrder(ctx context.Context, headers http.Header) (string, []string, error) {
	var out struct {
		ID string `json:"id"`
	}
	cookies, err := g.call(ctx, http.MethodPost, "/api/create-order", headers, nil, &out)
	if err != nil {
		return "", cookies, err
	}
	if out.ID == "" {
		return "", cookies, fmt.Errorf("gateway returned no order id")
	}
	return out.ID, cookies, nil
}

func (g *GatewayClient) CaptureOrder(ctx context.Context, headers http.Header, orderID string) (*CaptureReply, []string, error) {
	var out CaptureReply
	in := map[string]string{"orderID": orderID}
	cookies, err := g.call(ctx, http.MethodPost, "/api/capture-order", headers, in, &out)
	if err != nil {
		return nil, cookies, err
	}
	return &out, cookies, nil
}

func (g *GatewayClient) Logout(ctx context.Context, headers http.Header) ([]string, error) {
	var out struct {
		Success bool `json:"success"`
	}
	return g.call(ctx, http.MethodPost, "/api/logout", headers, nil, &out)
}

// DecodeJSON decodes a 2xx body into out, or a gateway error body into a
// *GatewayError.
func DecodeJSON(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		ge := &GatewayError{StatusCode: resp.StatusCode}
		var body struct {
			Error   string `json:"error"`
			Code    string `json:"code"`
			Details struct {
				Reason string `json:"reason"`
			} `json:"details"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
			ge.Message = body.Error
			ge.Code = body.Code
			ge.Reason = body.Details.Reason
		}
		return ge
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}

func BodyFromBytes(b []byte) io.Reader {
	if len(b) == 0 {
		return nil
	}
	return bytes.NewReader(b)
}
