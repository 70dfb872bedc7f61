// Package auth issues and verifies the HS256 access tokens carried by
// scanner devices.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// RoleScanner is the only role accepted by the scanner API.
const RoleScanner = "scanner"

// Claims are the standard claims plus the gate the operator was issued for.
// The subject is the operator name.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
	Gate string `json:"gate,omitempty"`
}

func GenerateToken(operator, gate string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Role: RoleScanner,
		Gate: gate,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies tokenString and returns its claims. Expired tokens
// yield common.ErrTokenExpired, anything else common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" || claims.Role != RoleScanner {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
