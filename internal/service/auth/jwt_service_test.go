package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/taskapi/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := 60 * time.Minute
	svc, err := newHMACJWTService(testSecret, lifetime, fixedClock(fixedTime))
	require.NoError(t, err)

	token, err := svc.GenerateToken(context.Background(), "ci-pipeline")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "ci-pipeline", claims.Subject)
	assert.Equal(t, ScopeTasks, claims.Scope)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(lifetime).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)

	_, err = svc.GenerateToken(context.Background(), "")
	assert.Error(t, err)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := 60 * time.Minute

	issuer, err := newHMACJWTService(testSecret, lifetime, fixedClock(issued))
	require.NoError(t, err)
	token, err := issuer.GenerateToken(context.Background(), "client")
	require.NoError(t, err)

	otherIssuer, err := newHMACJWTService(
		"wrong-secret-that-is-long-enough-for-testing", lifetime, fixedClock(issued))
	require.NoError(t, err)
	forged, err := otherIssuer.GenerateToken(context.Background(), "client")
	require.NoError(t, err)

	unscoped, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "client",
		ExpiresAt: jwt.NewNumericDate(issued.Add(lifetime)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		now     time.Time
		wantErr error
	}{
		{name: "valid", token: token, now: issued.Add(time.Minute)},
		{name: "within clock skew", token: token, now: issued.Add(lifetime + time.Minute)},
		{name: "expired", token: token, now: issued.Add(2 * lifetime), wantErr: ErrExpiredToken},
		{name: "wrong secret", token: forged, now: issued, wantErr: ErrInvalidToken},
		{name: "malformed", token: "not-a-token", now: issued, wantErr: ErrInvalidToken},
		{name: "missing", token: "", now: issued, wantErr: ErrMissingToken},
		{name: "missing scope", token: unscoped, now: issued, wantErr: ErrMissingScope},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			validator, err := newHMACJWTService(testSecret, lifetime, fixedClock(tt.now))
			require.NoError(t, err)

			claims, err := validator.ValidateToken(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "client", claims.Subject)
		})
	}
}
