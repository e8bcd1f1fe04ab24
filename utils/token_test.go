package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePairRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Minute, time.Hour)

	pair, err := m.GeneratePair("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	claims, err := m.ParseToken(pair.Access, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.NotEmpty(t, claims.ID)

	claims, err = m.ParseToken(pair.Refresh, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestParseTokenRejectsWrongType(t *testing.T) {
	m := NewTokenManager("secret", time.Minute, time.Hour)
	pair, err := m.GeneratePair("user-1")
	require.NoError(t, err)

	_, err = m.ParseToken(pair.Refresh, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute, time.Hour)
	issued := time.Now().Add(-2 * time.Minute)
	m.now = func() time.Time { return issued }
	access, err := m.GenerateAccessToken("user-1")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseToken(access, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	issuer := NewTokenManager("one", time.Minute, time.Hour)
	verifier := NewTokenManager("two", time.Minute, time.Hour)

	access, err := issuer.GenerateAccessToken("user-1")
	require.NoError(t, err)

	_, err = verifier.ParseToken(access, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = verifier.ParseToken("not-a-jwt", TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHelpers(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "Alice@example.com", NormalizeEmail(" Alice@EXAMPLE.com "))
	assert.Equal(t, "no-at-sign", NormalizeEmail("no-at-sign"))
}
