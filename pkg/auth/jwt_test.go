package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-hs256"

func signTestToken(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newTestValidator(t *testing.T) *JWTValidator {
	t.Helper()
	v, err := NewJWTValidator(JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     testSecret,
		Issuer:        "https://cognito-idp.us-east-1.amazonaws.com/test-pool",
	})
	require.NoError(t, err)
	return v
}

func baseClaims() Claims {
	now := time.Now()
	return Claims{
		UserID: "user-123",
		Email:  "reader@example.com",
		Groups: []string{"admins"},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://cognito-idp.us-east-1.amazonaws.com/test-pool",
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
}

func TestJWTValidator_ValidToken(t *testing.T) {
	v := newTestValidator(t)
	token := signTestToken(t, baseClaims())

	claims, err := v.ValidateToken("Bearer " + token)

	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.Contains(t, claims.Groups, "admins")
}

func TestJWTValidator_ExpiredToken(t *testing.T) {
	v := newTestValidator(t)
	claims := baseClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	token := signTestToken(t, claims)

	_, err := v.ValidateToken(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTValidator_WrongIssuer(t *testing.T) {
	v := newTestValidator(t)
	claims := baseClaims()
	claims.Issuer = "https://evil.example.com"
	token := signTestToken(t, claims)

	_, err := v.ValidateToken(token)

	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestJWTValidator_MissingToken(t *testing.T) {
	v := newTestValidator(t)

	_, err := v.ValidateToken("")

	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestJWTValidator_TamperedSignature(t *testing.T) {
	v := newTestValidator(t)
	token := signTestToken(t, baseClaims())

	_, err := v.ValidateToken(token + "x")

	assert.Error(t, err)
}

func TestUserContext_IsAdmin(t *testing.T) {
	admin := UserFromClaims(&Claims{UserID: "u1", Groups: []string{"admins"}})
	reader := UserFromClaims(&Claims{UserID: "u2", Groups: []string{"readers"}})

	assert.True(t, admin.IsAdmin())
	assert.False(t, reader.IsAdmin())
}
