package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kpsbusiness/paywall/services/access-service/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newManager(t *testing.T, secret string) *session.Manager {
	t.Helper()
	m, err := session.NewManager(session.ManagerConfig{Secret: secret, TTL: 24 * time.Hour})
	require.NoError(t, err)
	return m
}

func issuedCookie(t *testing.T, m *session.Manager, id string) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, m.Issue(c, id))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func contextWithCookie(cookie *http.Cookie) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		c.Request.AddCookie(cookie)
	}
	return c
}

func TestManager_IssueSetsHardenedCookie(t *testing.T) {
	m := newManager(t, "secret")
	cookie := issuedCookie(t, m, "sid-1")

	assert.Equal(t, session.DefaultCookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int((24 * time.Hour).Seconds()), cookie.MaxAge)
	assert.False(t, cookie.Secure)
}

func TestManager_ResolvesIssuedCookie(t *testing.T) {
	m := newManager(t, "secret")
	cookie := issuedCookie(t, m, "sid-1")

	id, fresh := m.Resolve(contextWithCookie(cookie))
	assert.Equal(t, "sid-1", id)
	assert.False(t, fresh)
}

func TestManager_IgnoresTamperedCookie(t *testing.T) {
	m := newManager(t, "secret")
	other := newManager(t, "other-secret")
	cookie := issuedCookie(t, other, "sid-1")

	_, ok := m.SessionID(contextWithCookie(cookie))
	assert.False(t, ok)

	id, fresh := m.Resolve(contextWithCookie(cookie))
	assert.True(t, fresh)
	assert.NotEqual(t, "sid-1", id)
	assert.NotEmpty(t, id)
}

func TestManager_NoCookie(t *testing.T) {
	m := newManager(t, "secret")

	_, ok := m.SessionID(contextWithCookie(nil))
	assert.False(t, ok)
}

func TestManager_Clear(t *testing.T) {
	m := newManager(t, "secret")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	m.Clear(c)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := session.NewManager(session.ManagerConfig{TTL: time.Hour})
	assert.Error(t, err)
}
