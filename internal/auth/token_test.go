package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("secret", "nourish-together", time.Hour)

	signed, err := tokens.Issue("user-1")
	require.NoError(t, err)

	userID, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestTokens_RejectsWrongSecret(t *testing.T) {
	signed, err := NewTokens("secret", "", time.Hour).Issue("user-1")
	require.NoError(t, err)

	_, err = NewTokens("other", "", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_RejectsExpired(t *testing.T) {
	tokens := NewTokens("secret", "", time.Minute)
	issuedAt := time.Now().Add(-2 * time.Hour)
	tokens.now = func() time.Time { return issuedAt }

	signed, err := tokens.Issue("user-1")
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_RejectsOtherIssuer(t *testing.T) {
	signed, err := NewTokens("secret", "someone-else", time.Hour).Issue("user-1")
	require.NoError(t, err)

	_, err = NewTokens("secret", "nourish-together", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user-1"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokens("secret", "", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	tok, err = BearerToken("bearer   xyz ")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	_, err = BearerToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = BearerToken("Basic dXNlcjpwYXNz")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = BearerToken("Bearer ")
	assert.Error(t, err)
}
