package auth_test

import (
	"testing"
	"time"

	"github.com/kpsbusiness/paywall/services/common/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_RoundTrip(t *testing.T) {
	s, err := auth.NewSigner("test-secret")
	require.NoError(t, err)

	token, err := s.Sign("sid-1", time.Now(), time.Hour)
	require.NoError(t, err)

	id, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", id)
}

func TestSigner_RejectsForeignSecret(t *testing.T) {
	a, _ := auth.NewSigner("secret-a")
	b, _ := auth.NewSigner("secret-b")

	token, err := a.Sign("sid-1", time.Now(), time.Hour)
	require.NoError(t, err)

	_, err = b.Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestSigner_RejectsExpired(t *testing.T) {
	s, _ := auth.NewSigner("test-secret")

	token, err := s.Sign("sid-1", time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	_, err = s.Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestSigner_RejectsGarbage(t *testing.T) {
	s, _ := auth.NewSigner("test-secret")

	_, err := s.Parse("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestNewSigner_RequiresSecret(t *testing.T) {
	_, err := auth.NewSigner("")
	assert.Error(t, err)
}
