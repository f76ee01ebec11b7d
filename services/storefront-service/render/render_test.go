package render_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kpsbusiness/paywall/services/storefront-service/clients"
	"github.com/kpsbusiness/paywall/services/storefront-service/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.New()
	require.NoError(t, err)
	return r
}

func TestNewGateView(t *testing.T) {
	v := render.NewGateView(&clients.PaymentConfig{PayPalClientID: "id", Currency: "USD", Amount: "449.95"})
	assert.False(t, v.Unavailable)
	assert.Equal(t, "$449.95", v.PriceLabel)

	v = render.NewGateView(&clients.PaymentConfig{PayPalClientID: "id", Currency: "CHF", Amount: "10"})
	assert.Equal(t, "10.00 CHF", v.PriceLabel)

	for _, cfg := range []*clients.PaymentConfig{
		nil,
		{Currency: "USD", Amount: "1.00"},
		{PayPalClientID: "id", Currency: "USD", Amount: "free"},
		{PayPalClientID: "id", Currency: "USD", Amount: "0"},
	} {
		assert.True(t, render.NewGateView(cfg).Unavailable)
	}
}

func TestGatePage_WithWidget(t *testing.T) {
	r := newRenderer(t)
	var buf bytes.Buffer

	gate := render.NewGateView(&clients.PaymentConfig{PayPalClientID: "client-id", Currency: "USD", Amount: "449.95"})
	require.NoError(t, r.GatePage(&buf, gate))

	html := buf.String()
	assert.Contains(t, html, "Unlock Access")
	assert.Contains(t, html, "$449.95")
	assert.Contains(t, html, "paypal-button-container")
	assert.Contains(t, html, `"paypalClientId":"client-id"`)
	assert.NotContains(t, html, "Payment is temporarily unavailable. Please try again later.</p>")
	assert.NotContains(t, html, "canva.com")
}

func TestGatePage_Unavailable(t *testing.T) {
	r := newRenderer(t)
	var buf bytes.Buffer

	require.NoError(t, r.GatePage(&buf, render.NewGateView(nil)))

	html := buf.String()
	assert.Contains(t, html, "Payment is temporarily unavailable")
	assert.NotContains(t, html, "paypal-button-container")
}

func TestDashboardFragment(t *testing.T) {
	r := newRenderer(t)
	var buf bytes.Buffer

	require.NoError(t, r.DashboardFragment(&buf))

	html := buf.String()
	assert.NotContains(t, html, "<html")
	assert.Equal(t, 6, strings.Count(html, `<article class="card">`))
	assert.Equal(t, 1, strings.Count(html, "Coming Soon"))
	assert.Contains(t, html, "Fanvue Blueprint")
	assert.Contains(t, html, `rel="noopener noreferrer"`)
	assert.Contains(t, html, `action="/logout"`)
}

func TestDashboardPage(t *testing.T) {
	r := newRenderer(t)
	var buf bytes.Buffer

	require.NoError(t, r.DashboardPage(&buf))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "KPS Business -N- The Box")
	assert.NotContains(t, html, "Unlock Access")
}
