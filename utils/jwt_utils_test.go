package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func signTestToken(t *testing.T, claims Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyBearerToken(t *testing.T) {
	claims := Claims{
		Email: "alice@example.com",
		Name:  "Alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed := signTestToken(t, claims, testSecret)

	got, err := VerifyBearerToken(signed, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "Alice", got.Name)
}

func TestVerifyBearerTokenWrongSecret(t *testing.T) {
	claims := Claims{
		Email: "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed := signTestToken(t, claims, "other-secret")

	_, err := VerifyBearerToken(signed, testSecret)
	assert.Error(t, err)
}

func TestVerifyBearerTokenExpired(t *testing.T) {
	claims := Claims{
		Email: "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed := signTestToken(t, claims, testSecret)

	_, err := VerifyBearerToken(signed, testSecret)
	assert.Error(t, err)
}

func TestVerifyBearerTokenMissingEmail(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed := signTestToken(t, claims, testSecret)

	_, err := VerifyBearerToken(signed, testSecret)
	assert.Error(t, err)
}

func TestVerifyBearerTokenGarbage(t *testing.T) {
	_, err := VerifyBearerToken("not-a-token", testSecret)
	assert.Error(t, err)
}
