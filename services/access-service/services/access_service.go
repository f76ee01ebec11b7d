package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	awspkg "github.com/kpsbusiness/paywall/pkg/aws"
	"github.com/kpsbusiness/paywall/services/access-service/config"
	"github.com/kpsbusiness/paywall/services/access-service/models"
	"github.com/kpsbusiness/paywall/services/access-service/providers"
	"github.com/kpsbusiness/paywall/services/access-service/session"
	apperrors "github.com/kpsbusiness/paywall/services/common/errors"
	"github.com/kpsbusiness/paywall/services/common/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const ServiceName = "access-service"

// AccessDecision is the outcome of finalizing a purchase.
type AccessDecision struct {
	Granted bool
	// Capture is the provider's answer, relayed to the client as-is.
	Capture *providers.CaptureResult
	// SessionErr is set when access was granted but could not be persisted.
	SessionErr *apperrors.Error
}

// AccessService owns the ANONYMOUS -> PAID session state machine.
type AccessService interface {
	CheckAccess(ctx context.Context, sessionID string) bool
	PublicConfig() models.PublicConfig
	Health() models.Health
	CreateOrder(ctx context.Context) (*models.CreateOrderResponse, *apperrors.Error)
	CaptureOrder(ctx context.Context, sessionID, orderID string) (*AccessDecision, *apperrors.Error)
	Logout(ctx context.Context, sessionID string) *apperrors.Error
}

// Deps are the collaborators of the access service. Events and Metrics are
// optional.
type Deps struct {
	Provider providers.PaymentProvider
	Store    session.Store
	Config   *config.Config
	Events   awspkg.SNSPublisher
	Metrics  awspkg.MetricsRecorder
	Logger   *zap.Logger
}

type accessServiceImpl struct {
	provider     providers.PaymentProvider
	store        session.Store
	cfg          *config.Config
	paymentReady bool
	events       awspkg.SNSPublisher
	metrics      awspkg.MetricsRecorder
	logger       *zap.Logger
	captures     singleflight.Group
	now          func() time.Time
}

func NewAccessService(d Deps) AccessService {
	return &accessServiceImpl{
		provider:     d.Provider,
		store:        d.Store,
		cfg:          d.Config,
		paymentReady: d.Config.Status().PaymentReady(),
		events:       d.Events,
		metrics:      d.Metrics,
		logger:       d.Logger,
		now:          time.Now,
	}
}

// CheckAccess fails closed: any lookup problem means no access.
func (s *accessServiceImpl) CheckAccess(ctx context.Context, sessionID string) bool {
	if sessionID == "" {
		return false
	}
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrSessionNotFound) {
			logger.With(ctx, s.logger).Warn("Session lookup failed, denying access", zap.Error(err))
		}
		return false
	}
	return sess.HasAccess()
}

func (s *accessServiceImpl) PublicConfig() models.PublicConfig {
	return models.PublicConfig{
		PayPalClientID: s.cfg.PayPalClientID,
		Currency:       s.cfg.Currency,
		Amount:         s.cfg.AmountString(),
	}
}

func (s *accessServiceImpl) Health() models.Health {
	return models.Health{
		Status:          "OK",
		Service:         ServiceName,
		PaymentReady:    s.paymentReady,
		PayPalMode:      s.cfg.PayPalMode,
		HasClientID:     s.cfg.PayPalClientID != "",
		HasClientSecret: s.cfg.PayPalClientSecret != "",
		SessionStore:    s.cfg.SessionStore,
	}
}

func (s *accessServiceImpl) amount() providers.Amount {
	return providers.Amount{Value: s.cfg.AmountString(), Currency: s.cfg.Currency}
}

func (s *accessServiceImpl) CreateOrder(ctx context.Context) (*models.CreateOrderResponse, *apperrors.Error) {
	log := logger.With(ctx, s.logger)
	amount := s.amount()
	log.Info("Creating order", zap.String("amount", amount.Value), zap.String("currency", amount.Currency))

	order, err := s.provider.CreateOrder(ctx, amount)
	if err != nil {
		log.Error("Failed to create order", zap.Error(err))
		s.count(awspkg.MetricOrdersFailed)
		return nil, s.upstreamError("Failed to create order", err)
	}

	log.Info("Order created", zap.String("order_id", order.ID), zap.String("status", order.Status))
	s.count(awspkg.MetricOrdersCreated)
	s.publish(ctx, models.EventOrderCreated, order.ID, order.Status)
	return &models.CreateOrderResponse{ID: order.ID}, nil
}

// CaptureOrder finalizes a purchase. Concurrent captures of the same order
// for the same session share a single provider call.
func (s *accessServiceImpl) CaptureOrder(ctx context.Context, sessionID, orderID string) (*AccessDecision, *apperrors.Error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, apperrors.Validation("Order ID is required")
	}

	// A capture that reached the provider is recorded even if the client
	// disconnects; the provider timeout still bounds it.
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := s.captures.Do(sessionID+":"+orderID, func() (any, error) {
		decision, appErr := s.capture(flightCtx, sessionID, orderID)
		if appErr != nil {
			return nil, appErr
		}
		return decision, nil
	})
	if shared {
		logger.With(ctx, s.logger).Info("Joined in-flight capture", zap.String("order_id", orderID))
	}
	if err != nil {
		return nil, apperrors.As(err)
	}
	return v.(*AccessDecision), nil
}

func (s *accessServiceImpl) capture(ctx context.Context, sessionID, orderID string) (*AccessDecision, *apperrors.Error) {
	log := logger.With(ctx, s.logger).With(zap.String("order_id", orderID))
	log.Info("Capturing order")

	current := s.load(ctx, sessionID)

	result, err := s.provider.CaptureOrder(ctx, orderID)
	if err != nil {
		if current.HasAccess() && current.OrderID == orderID {
			log.Warn("Capture failed for an order this session already paid for, access retained", zap.Error(err))
			s.publish(ctx, models.EventCaptureAlreadyGranted, orderID, providers.StatusCompleted)
			return &AccessDecision{Granted: true, Capture: providers.CompletedResult(orderID)}, nil
		}
		log.Error("Failed to capture order", zap.Error(err))
		s.count(awspkg.MetricPaymentFailed)
		s.publish(ctx, models.EventCaptureFailed, orderID, "")
		return nil, s.upstreamError("Failed to capture order", err)
	}

	log.Info("Order captured", zap.String("status", result.Status))

	if !result.Completed() {
		log.Warn("Order status is not COMPLETED, access not granted", zap.String("status", result.Status))
		s.count(awspkg.MetricPaymentFailed)
		s.publish(ctx, models.EventCaptureNotCompleted, orderID, result.Status)
		return &AccessDecision{Granted: false, Capture: result}, nil
	}

	s.count(awspkg.MetricPaymentSucceeded)
	s.publish(ctx, models.EventOrderCaptured, orderID, result.Status)

	sess := current
	if sess == nil {
		sess = session.New(s.now())
	}
	sess.Grant(orderID, s.now())

	decision := &AccessDecision{Granted: true, Capture: result}
	if err := s.store.Put(ctx, sessionID, sess); err != nil {
		log.Error("Failed to save session, access will not persist", zap.Error(err))
		s.count(awspkg.MetricSessionSaveFailed)
		decision.SessionErr = apperrors.Session("Failed to save session", err)
		return decision, nil
	}

	log.Info("Session saved, access granted")
	s.count(awspkg.MetricAccessGranted)
	return decision, nil
}

// load returns the stored session or nil. Read failures are logged and
// treated as an anonymous session.
func (s *accessServiceImpl) load(ctx context.Context, sessionID string) *session.Session {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrSessionNotFound) {
			logger.With(ctx, s.logger).Warn("Session lookup failed during capture", zap.Error(err))
		}
		return nil
	}
	return sess
}

func (s *accessServiceImpl) Logout(ctx context.Context, sessionID string) *apperrors.Error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.Destroy(ctx, sessionID); err != nil {
		logger.With(ctx, s.logger).Error("Failed to destroy session", zap.Error(err))
		return apperrors.Session("Failed to destroy session", err)
	}
	return nil
}

// upstreamError converts a provider failure into a sanitized client error.
func (s *accessServiceImpl) upstreamError(message string, err error) *apperrors.Error {
	details := map[string]any{"reason": string(providers.KindUnavailable)}

	var pe *providers.ProviderError
	if errors.As(err, &pe) {
		details["reason"] = string(pe.Kind)
		if pe.StatusCode != 0 {
			details["statusCode"] = pe.StatusCode
		}
		if pe.Name != "" {
			details["providerError"] = pe.Name
		}
		if pe.Message != "" {
			details["providerMessage"] = pe.Message
		}
	}

	if !s.cfg.IsProduction() {
		details["debugInfo"] = map[string]any{
			"paypalMode":      s.cfg.PayPalMode,
			"hasClientId":     s.cfg.PayPalClientID != "",
			"hasClientSecret": s.cfg.PayPalClientSecret != "",
		}
	}
	return apperrors.Upstream(message, err, details)
}

func (s *accessServiceImpl) publish(ctx context.Context, eventType, orderID, status string) {
	log := logger.With(ctx, s.logger)
	if s.events == nil || s.cfg.OrderEventsTopicARN == "" {
		log.Debug("Order event topic not configured, skipping publish", zap.String("type", eventType))
		return
	}

	event := models.OrderEvent{
		Type:      eventType,
		OrderID:   orderID,
		Status:    status,
		Amount:    s.cfg.AmountString(),
		Currency:  s.cfg.Currency,
		Timestamp: s.now().UTC(),
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		log.Error("Failed to marshal order event", zap.Error(err))
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.events.Publish(pubCtx, s.cfg.OrderEventsTopicARN, eventBytes); err != nil {
		log.Error("Failed to publish order event", zap.String("type", eventType), zap.Error(err))
		return
	}
	log.Info("Published order event", zap.String("type", eventType), zap.String("order_id", orderID))
}

func (s *accessServiceImpl) count(metric string) {
	if s.metrics == nil || !s.metrics.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.metrics.RecordCount(ctx, metric, map[string]string{"Service": ServiceName})
	}()
}
