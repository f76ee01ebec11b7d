package controllers

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kpsbusiness/paywall/services/common/logger"
	"github.com/kpsbusiness/paywall/services/storefront-service/checkout"
	"github.com/kpsbusiness/paywall/services/storefront-service/clients"
	"github.com/kpsbusiness/paywall/services/storefront-service/render"
	"go.uber.org/zap"
)

const ServiceName = "storefront-service"

// Gateway is the access gateway as seen by page handlers.
type Gateway interface {
	CheckAccess(ctx context.Context, headers http.Header) (bool, []string, error)
	Config(ctx context.Context, headers http.Header) (*clients.PaymentConfig, error)
	Logout(ctx context.Context, headers http.Header) ([]string, error)
}

type StorefrontController struct {
	gateway  Gateway
	flow     *checkout.Flow
	renderer *render.Renderer
	logger   *zap.Logger
}

func NewStorefrontController(gateway Gateway, flow *checkout.Flow, renderer *render.Renderer, logger *zap.Logger) *StorefrontController {
	return &StorefrontController{gateway: gateway, flow: flow, renderer: renderer, logger: logger}
}

func (s *StorefrontController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": ServiceName})
}

// Home renders the dashboard for paid sessions and the purchase gate for
// everyone else. Any failure to confirm access renders the gate.
func (s *StorefrontController) Home(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.With(ctx, s.logger)
	h := forwardHeaders(c)

	paid, cookies, err := s.gateway.CheckAccess(ctx, h)
	relayCookies(c, cookies)
	if err != nil {
		log.Warn("Access check failed, serving gate", zap.Error(err))
		paid = false
	}

	if paid {
		s.html(c, func(w io.Writer) error { return s.renderer.DashboardPage(w) })
		return
	}

	cfg, err := s.gateway.Config(ctx, h)
	if err != nil {
		log.Warn("Payment config unavailable, gate rendered without widget", zap.Error(err))
	}
	gate := render.NewGateView(cfg)
	s.html(c, func(w io.Writer) error { return s.renderer.GatePage(w, gate) })
}

// DashboardFragment serves the dashboard markup swapped in after a purchase.
func (s *StorefrontController) DashboardFragment(c *gin.Context) {
	ctx := c.Request.Context()

	paid, cookies, err := s.gateway.CheckAccess(ctx, forwardHeaders(c))
	relayCookies(c, cookies)
	if err != nil {
		logger.With(ctx, s.logger).Warn("Access check failed for dashboard fragment", zap.Error(err))
	}
	if err != nil || !paid {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	s.html(c, func(w io.Writer) error { return s.renderer.DashboardFragment(w) })
}

func (s *StorefrontController) Initiate(c *gin.Context) {
	id, cookies, err := s.flow.Initiate(c.Request.Context(), forwardHeaders(c))
	relayCookies(c, cookies)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": checkout.MsgUnavailable})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// Finalize always answers 200; the decision body says whether access was
// granted.
func (s *StorefrontController) Finalize(c *gin.Context) {
	var req struct {
		OrderID string `json:"orderID"`
	}
	// An unreadable body is treated as a missing order id.
	_ = c.ShouldBindJSON(&req)

	decision, cookies := s.flow.Finalize(c.Request.Context(), forwardHeaders(c), req.OrderID)
	relayCookies(c, cookies)
	c.JSON(http.StatusOK, decision)
}

func (s *StorefrontController) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	cookies, err := s.gateway.Logout(ctx, forwardHeaders(c))
	relayCookies(c, cookies)
	if err != nil {
		logger.With(ctx, s.logger).Error("Logout failed at gateway", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// html renders into a buffer so a template failure can still become a 500.
func (s *StorefrontController) html(c *gin.Context, fn func(w io.Writer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		logger.With(c.Request.Context(), s.logger).Error("Template render failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// forwardHeaders picks the inbound headers the gateway needs. Only the
// session cookie and the request id cross the boundary.
func forwardHeaders(c *gin.Context) http.Header {
	h := http.Header{}
	if cookie := c.GetHeader("Cookie"); cookie != "" {
		h.Set("Cookie", cookie)
	}
	if id := logger.GetRequestID(c); id != "" {
		h.Set(logger.RequestIDHeader, id)
	}
	return h
}

func relayCookies(c *gin.Context, cookies []string) {
	for _, v := range cookies {
		c.Writer.Header().Add("Set-Cookie", v)
	}
}
