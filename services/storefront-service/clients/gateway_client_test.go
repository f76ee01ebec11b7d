package clients_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kpsbusiness/paywall/services/storefront-service/clients"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, h http.HandlerFunc) *clients.GatewayClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return clients.NewGatewayClient(srv.URL+"/", 2*time.Second)
}

func cookieHeader(v string) http.Header {
	h := http.Header{}
	h.Set("Cookie", v)
	return h
}

func TestCheckAccess_ForwardsCookie(t *testing.T) {
	var gotCookie string
	g := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/check-access", r.URL.Path)
		gotCookie = r.Header.Get("Cookie")
		w.Write([]byte(`{"hasAccess":true}`))
	})

	ok, _, err := g.CheckAccess(context.Background(), cookieHeader("paywall.sid=abc"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "paywall.sid=abc", gotCookie)
}

func TestCaptureOrder_RelaysSetCookie(t *testing.T) {
	g := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ORDER123", body["orderID"])
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		http.SetCookie(w, &http.Cookie{Name: "paywall.sid", Value: "signed", HttpOnly: true})
		w.Write([]byte(`{"id":"ORDER123","status":"COMPLETED","purchase_units":[]}`))
	})

	reply, cookies, err := g.CaptureOrder(context.Background(), nil, "ORDER123")
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", reply.Status)
	require.Len(t, cookies, 1)
	assert.Contains(t, cookies[0], "paywall.sid=signed")
}

func TestCreateOrder_GatewayError(t *testing.T) {
	g := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to create order","code":"upstream_error","details":{"reason":"provider_not_configured"}}`))
	})

	_, _, err := g.CreateOrder(context.Background(), nil)
	var ge *clients.GatewayError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, http.StatusInternalServerError, ge.StatusCode)
	assert.Equal(t, "upstream_error", ge.Code)
	assert.Equal(t, "provider_not_configured", ge.Reason)
	assert.Equal(t, "Failed to create order", ge.Message)
}

func TestCreateOrder_EmptyID(t *testing.T) {
	g := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, _, err := g.CreateOrder(context.Background(), nil)
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	g := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"paypalClientId":"client-id","currency":"USD","amount":"449.95"}`))
	})

	cfg, err := g.Config(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, clients.PaymentConfig{PayPalClientID: "client-id", Currency: "USD", Amount: "449.95"}, *cfg)
}

func TestGatewayUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	g := clients.NewGatewayClient(srv.URL, time.Second)

	ok, _, err := g.CheckAccess(context.Background(), nil)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestLogout_RelaysClearedCookie(t *testing.T) {
	g := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		http.SetCookie(w, &http.Cookie{Name: "paywall.sid", Value: "", MaxAge: -1})
		w.Write([]byte(`{"success":true}`))
	})

	cookies, err := g.Logout(context.Background(), cookieHeader("paywall.sid=abc"))
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Contains(t, cookies[0], "Max-Age=0")
}
