package models

// AccessResponse answers GET /api/check-access.
type AccessResponse struct {
	HasAccess bool `json:"hasAccess"`
}

// PublicConfig is the client-safe payment configuration. It must never
// carry the client secret.
type PublicConfig struct {
	PayPalClientID string `json:"paypalClientId"`
	Currency       string `json:"currency"`
	Amount         string `json:"amount"`
}

type CreateOrderResponse struct {
	ID string `json:"id"`
}

type CaptureOrderRequest struct {
	OrderID string `json:"orderID"`
}

type LogoutResponse struct {
	Success bool `json:"success"`
}

// Health reports service liveness and whether payments can be taken.
type Health struct {
	Status          string `json:"status"`
	Service         string `json:"service"`
	PaymentReady    bool   `json:"paymentReady"`
	PayPalMode      string `json:"paypalMode"`
	HasClientID     bool   `json:"hasClientId"`
	HasClientSecret bool   `json:"hasClientSecret"`
	SessionStore    string `json:"sessionStore"`
}
