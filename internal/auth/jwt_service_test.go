package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJWTServiceRoundTrip(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "test-secret", Issuer: "grocery-api"})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(42, UserTypeShopper, "fp-abc")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.UserID)
	require.Equal(t, UserTypeShopper, claims.UserType)
	require.Equal(t, "fp-abc", claims.Fingerprint)
	require.Equal(t, "grocery-api", claims.Issuer)
}

func TestJWTServiceRejectsExpiredToken(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	svc, err := NewJWTService(JWTConfig{Secret: "test-secret", AccessTokenTTL: time.Minute, Clock: clock})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(7, UserTypeShopper, "")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)

	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestJWTServiceRejectsWrongSecret(t *testing.T) {
	issuer, err := NewJWTService(JWTConfig{Secret: "secret-one"})
	require.NoError(t, err)
	validator, err := NewJWTService(JWTConfig{Secret: "secret-two"})
	require.NoError(t, err)

	token, err := issuer.GenerateAccessToken(7, UserTypeShopper, "")
	require.NoError(t, err)

	_, err = validator.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.Error(t, err)
}
