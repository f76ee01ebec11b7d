package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kpsbusiness/paywall/services/common/auth"
)

// DefaultCookieName names the browser cookie carrying the signed session id.
const DefaultCookieName = "paywall.sid"

// ManagerConfig configures the session cookie.
type ManagerConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	// Secure marks the cookie HTTPS-only; enabled in production.
	Secure bool
}

// Manager binds requests to session ids through a signed, HttpOnly cookie.
// It never touches the Store; persistence is the service's job.
type Manager struct {
	signer     *auth.Signer
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

func NewManager(cfg ManagerConfig) (*Manager, error) {
	signer, err := auth.NewSigner(cfg.Secret)
	if err != nil {
		return nil, err
	}
	name := cfg.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	return &Manager{
		signer:     signer,
		cookieName: name,
		ttl:        cfg.TTL,
		secure:     cfg.Secure,
		now:        time.Now,
	}, nil
}

// SessionID returns the id carried by a valid session cookie.
func (m *Manager) SessionID(c *gin.Context) (string, bool) {
	raw, err := c.Cookie(m.cookieName)
	if err != nil || raw == "" {
		return "", false
	}
	id, err := m.signer.Parse(raw)
	if err != nil {
		return "", false
	}
	return id, true
}

// Resolve returns the request's session id, minting a fresh one when the
// request carries no valid cookie. A fresh id is not sent to the browser
// until Issue is called; callers use fresh to decide when to bind it.
func (m *Manager) Resolve(c *gin.Context) (id string, fresh bool) {
	if id, ok := m.SessionID(c); ok {
		return id, false
	}
	return uuid.NewString(), true
}

// Issue writes a cookie binding id for the configured lifetime.
func (m *Manager) Issue(c *gin.Context, id string) error {
	token, err := m.signer.Sign(id, m.now(), m.ttl)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, token, int(m.ttl.Seconds()), "/", "", m.secure, true)
	return nil
}

// Clear expires the session cookie.
func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}
