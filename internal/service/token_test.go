package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karmafeed/internal/model"
)

func TestTokenService_IssueAndParse(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.Issue(42)
	require.NoError(t, err)

	userID, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenService_Expired(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer := NewTokenService("secret", time.Minute, WithClock(func() time.Time { return issuedAt }))
	token, err := issuer.Issue(7)
	require.NoError(t, err)

	later := NewTokenService("secret", time.Minute, WithClock(func() time.Time { return issuedAt.Add(time.Hour) }))
	_, err = later.Parse(token)
	assert.ErrorIs(t, err, model.ErrTokenExpired)
}

func TestTokenService_Invalid(t *testing.T) {
	token, err := NewTokenService("other", time.Hour).Issue(7)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 7})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noClaim, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "7"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	svc := NewTokenService("secret", time.Hour)
	for name, tok := range map[string]string{
		"wrong secret":  token,
		"unsigned":      unsigned,
		"missing claim": noClaim,
		"garbage":       "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Parse(tok)
			assert.True(t, errors.Is(err, model.ErrTokenInvalid), "got %v", err)
		})
	}
}
