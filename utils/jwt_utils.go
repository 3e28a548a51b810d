package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the verified payload of a bearer token issued by the external
// identity provider. The core only ever consumes the Email claim; issuing and
// refreshing tokens is the provider's job, not ours.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// VerifyBearerToken validates an HS256 token and returns its claims. Any
// parse, signature, or expiry failure comes back as an error; the caller
// treats all of them as unauthenticated.
func VerifyBearerToken(tokenString, jwtSecret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.Email == "" {
		return nil, errors.New("token missing email claim")
	}

	return claims, nil
}
