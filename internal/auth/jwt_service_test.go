package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soundbay/soundbay/internal/models"
)

func TestJWTServiceRoundTrip(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "test-secret", Issuer: "soundbay"})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken("user-1", models.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, models.RoleAdmin, claims.Role)
	require.Equal(t, "soundbay", claims.Issuer)
}

func TestJWTServiceRejectsExpired(t *testing.T) {
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := issued

	svc, err := NewJWTService(JWTConfig{
		Secret:         "test-secret",
		AccessTokenTTL: time.Minute,
		Clock:          func() time.Time { return clock },
	})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken("user-1", models.RoleUser)
	require.NoError(t, err)

	clock = issued.Add(2 * time.Minute)
	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestJWTServiceRejectsWrongSecret(t *testing.T) {
	issuer, err := NewJWTService(JWTConfig{Secret: "secret-a"})
	require.NoError(t, err)
	verifier, err := NewJWTService(JWTConfig{Secret: "secret-b"})
	require.NoError(t, err)

	token, err := issuer.GenerateAccessToken("user-1", models.RoleUser)
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.Error(t, err)
}
