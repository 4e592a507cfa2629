package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, expiry time.Duration) *Provider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewProviderFromKeys(key, &key.PublicKey, expiry)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	p := newTestProvider(t, time.Hour)

	tok, err := p.Sign("user1", "admin")
	require.NoError(t, err)
	claims, err := p.Verify(tok)

	require.NoError(t, err)
	assert.Equal(t, "user1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestVerify_Expired(t *testing.T) {
	p := newTestProvider(t, -time.Minute)

	tok, err := p.Sign("user1", "user")
	require.NoError(t, err)
	_, err = p.Verify(tok)

	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_OtherKeyRejected(t *testing.T) {
	signer := newTestProvider(t, time.Hour)
	verifier := newTestProvider(t, time.Hour)

	tok, err := signer.Sign("user1", "user")
	require.NoError(t, err)
	_, err = verifier.Verify(tok)

	assert.Error(t, err)
}

func TestVerify_HMACRejected(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user1"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = p.Verify(tok)

	assert.Error(t, err)
}

func TestSign_WithoutPrivateKey(t *testing.T) {
	p := newTestProvider(t, time.Hour)
	p.privateKey = nil

	_, err := p.Sign("user1", "user")

	assert.Error(t, err)
}
