package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims Claims, method jwt.SigningMethod) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() Claims {
	return Claims{
		Role: "registrar",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ncscm-field-office",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestParseValidToken(t *testing.T) {
	parser := NewParser("secret")

	principal, err := parser.Parse(signToken(t, "secret", validClaims(), jwt.SigningMethodHS256))
	require.NoError(t, err)

	assert.Equal(t, "ncscm-field-office", principal.Subject)
	assert.Equal(t, "registrar", principal.Role)
	assert.False(t, principal.IsAnonymous())
}

func TestParseRejectsWrongSecret(t *testing.T) {
	_, err := NewParser("secret").Parse(signToken(t, "other", validClaims(), jwt.SigningMethodHS256))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	_, err := NewParser("secret").Parse(signToken(t, "secret", claims, jwt.SigningMethodHS256))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsOtherAlgorithm(t *testing.T) {
	_, err := NewParser("secret").Parse(signToken(t, "secret", validClaims(), jwt.SigningMethodHS512))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRequiresSubject(t *testing.T) {
	claims := validClaims()
	claims.Subject = ""

	_, err := NewParser("secret").Parse(signToken(t, "secret", claims, jwt.SigningMethodHS256))
	assert.ErrorIs(t, err, ErrInvalidToken)
}
