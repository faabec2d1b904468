package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("segredo123")
	require.NoError(t, err)
	assert.NotEqual(t, "segredo123", hash)

	ok, err := h.Compare(hash, "segredo123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(hash, "errada")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Compare("not-a-hash", "segredo123")
	assert.Error(t, err)
}

func TestNewBcryptHasherFallsBackToDefaultCost(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewBcryptHasher(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewBcryptHasher(99).cost)
}

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService(TokenConfig{SecretKey: "k", Expiration: time.Hour, TokenIssuer: "secretaria"})

	id := NewSessionID()
	token, err := svc.Sign(id)
	require.NoError(t, err)

	got, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenServiceRejectsForeignSignature(t *testing.T) {
	a := NewTokenService(TokenConfig{SecretKey: "a", Expiration: time.Hour, TokenIssuer: "secretaria"})
	b := NewTokenService(TokenConfig{SecretKey: "b", Expiration: time.Hour, TokenIssuer: "secretaria"})

	token, err := a.Sign("sid")
	require.NoError(t, err)

	_, err = b.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceExpired(t *testing.T) {
	svc := NewTokenService(TokenConfig{SecretKey: "k", Expiration: -time.Minute, TokenIssuer: "secretaria"})

	token, err := svc.Sign("sid")
	require.NoError(t, err)

	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenServiceEmpty(t *testing.T) {
	svc := NewTokenService(TokenConfig{SecretKey: "k", Expiration: time.Hour})
	_, err := svc.Parse("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
