package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	_, err := NewJWTService("too-short", time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc, err := NewJWTService(testSecret, time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateToken(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "stegosight-control", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	svc, err := NewJWTService(testSecret, time.Hour)
	require.NoError(t, err)

	impl := svc.(*hmacJWTService)
	issued := time.Now().Add(-2 * time.Hour)
	impl.timeFunc = func() time.Time { return issued }

	token, err := svc.GenerateToken(context.Background())
	require.NoError(t, err)

	impl.timeFunc = time.Now
	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_RejectsWrongKey(t *testing.T) {
	issuer, err := NewJWTService(testSecret, time.Hour)
	require.NoError(t, err)
	verifier, err := NewJWTService("ffffffffffffffffffffffffffffffff", time.Hour)
	require.NoError(t, err)

	token, err := issuer.GenerateToken(context.Background())
	require.NoError(t, err)

	_, err = verifier.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc, err := NewJWTService(testSecret, time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBcryptVerifier_RoundTrip(t *testing.T) {
	hash, err := HashPassphrase("correct horse battery staple")
	require.NoError(t, err)

	v := NewBcryptVerifier()
	assert.NoError(t, v.Compare(hash, "correct horse battery staple"))
	assert.ErrorIs(t, v.Compare(hash, "wrong"), ErrInvalidPassphrase)
}
