package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kpsbusiness/paywall/services/access-service/models"
	"github.com/kpsbusiness/paywall/services/access-service/services"
	"github.com/kpsbusiness/paywall/services/access-service/session"
	apperrors "github.com/kpsbusiness/paywall/services/common/errors"
	"github.com/kpsbusiness/paywall/services/common/logger"
	"go.uber.org/zap"
)

type AccessController struct {
	svc      services.AccessService
	sessions *session.Manager
	logger   *zap.Logger
}

func NewAccessController(svc services.AccessService, sessions *session.Manager, logger *zap.Logger) *AccessController {
	return &AccessController{svc: svc, sessions: sessions, logger: logger}
}

// CheckAccess handles GET /api/check-access
func (ac *AccessController) CheckAccess(c *gin.Context) {
	hasAccess := false
	if sid, ok := ac.sessions.SessionID(c); ok {
		hasAccess = ac.svc.CheckAccess(c.Request.Context(), sid)
	}
	c.JSON(http.StatusOK, models.AccessResponse{HasAccess: hasAccess})
}

// Config handles GET /api/config
func (ac *AccessController) Config(c *gin.Context) {
	c.JSON(http.StatusOK, ac.svc.PublicConfig())
}

// Health handles GET /api/health
func (ac *AccessController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, ac.svc.Health())
}

// CreateOrder handles POST /api/create-order. A browser without a session
// is bound to a fresh id here, so the capture and any retry of it land on
// the same session. Nothing is written to the store.
func (ac *AccessController) CreateOrder(c *gin.Context) {
	resp, appErr := ac.svc.CreateOrder(c.Request.Context())
	if appErr != nil {
		apperrors.Respond(c, appErr)
		return
	}

	if sid, fresh := ac.sessions.Resolve(c); fresh {
		ac.issue(c, sid)
	}
	c.JSON(http.StatusOK, resp)
}

// CaptureOrder handles POST /api/capture-order. A request without a session
// gets its fresh id bound whatever the outcome, except for invalid input. A
// completed and saved capture re-issues the cookie to refresh its lifetime.
func (ac *AccessController) CaptureOrder(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.With(ctx, ac.logger)

	var req models.CaptureOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid capture request body", zap.Error(err))
	}

	sid, fresh := ac.sessions.Resolve(c)
	decision, appErr := ac.svc.CaptureOrder(ctx, sid, req.OrderID)
	if appErr != nil {
		if fresh && appErr.Kind != apperrors.KindValidation {
			ac.issue(c, sid)
		}
		apperrors.Respond(c, appErr)
		return
	}

	if fresh || (decision.Granted && decision.SessionErr == nil) {
		ac.issue(c, sid)
	}
	c.JSON(http.StatusOK, decision.Capture)
}

func (ac *AccessController) issue(c *gin.Context, sid string) {
	if err := ac.sessions.Issue(c, sid); err != nil {
		logger.With(c.Request.Context(), ac.logger).Error("Failed to issue session cookie", zap.Error(err))
	}
}

// Logout handles POST /api/logout. The cookie is cleared even when the
// store could not destroy the record.
func (ac *AccessController) Logout(c *gin.Context) {
	if sid, ok := ac.sessions.SessionID(c); ok {
		if appErr := ac.svc.Logout(c.Request.Context(), sid); appErr != nil {
			logger.With(c.Request.Context(), ac.logger).Warn("Logout could not destroy session", zap.Error(appErr))
		}
	}
	ac.sessions.Clear(c)
	c.JSON(http.StatusOK, models.LogoutResponse{Success: true})
}
