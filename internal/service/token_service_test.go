package service

import (
	"testing"
	"time"

	"storeauth/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T, clock Clock) *TokenService {
	t.Helper()
	svc, err := NewTokenService(TokenConfig{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		Issuer:        "storeauth",
	}, clock)
	require.NoError(t, err)
	return svc
}

func TestNewTokenService_RejectsBadSecrets(t *testing.T) {
	_, err := NewTokenService(TokenConfig{AccessSecret: []byte("a")}, nil)
	assert.Error(t, err)

	_, err = NewTokenService(TokenConfig{AccessSecret: []byte("same"), RefreshSecret: []byte("same")}, nil)
	assert.Error(t, err)
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := newTestTokenService(t, newFakeClock())
	claims := Claims{UserID: uuid.New(), Role: entity.UserRoleAdmin}

	pair, err := svc.IssuePair(claims)
	require.NoError(t, err)

	got, err := svc.Verify(pair.AccessToken, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, claims, got)

	got, err = svc.Verify(pair.RefreshToken, RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, claims, got)
}

func TestTokenService_KindsAreNotInterchangeable(t *testing.T) {
	svc := newTestTokenService(t, newFakeClock())
	pair, err := svc.IssuePair(Claims{UserID: uuid.New(), Role: entity.UserRoleUser})
	require.NoError(t, err)

	_, err = svc.Verify(pair.RefreshToken, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify(pair.AccessToken, RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Expiry(t *testing.T) {
	clock := newFakeClock()
	svc := newTestTokenService(t, clock)
	pair, err := svc.IssuePair(Claims{UserID: uuid.New(), Role: entity.UserRoleUser})
	require.NoError(t, err)

	clock.Advance(13 * time.Hour)
	_, err = svc.Verify(pair.AccessToken, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify(pair.RefreshToken, RefreshToken)
	assert.NoError(t, err, "refresh token lives for a week")

	clock.Advance(7 * 24 * time.Hour)
	_, err = svc.Verify(pair.RefreshToken, RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Tampered(t *testing.T) {
	svc := newTestTokenService(t, newFakeClock())
	token, err := svc.IssueAccess(Claims{UserID: uuid.New(), Role: entity.UserRoleUser})
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = svc.Verify(tampered, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, "Unauthorized", err.Error())

	_, err = svc.Verify("not-a-token", AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewTokenService(TokenConfig{
		AccessSecret:  []byte("other-access"),
		RefreshSecret: []byte("other-refresh"),
		Issuer:        "storeauth",
	}, newFakeClock())
	require.NoError(t, err)
	_, err = other.Verify(token, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
