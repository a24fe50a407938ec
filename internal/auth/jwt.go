// Package auth issues and reads the JWT access tokens that identify the
// owner of a session.
package auth

import (
	"errors"
	"time"

	"github.com/Kaktotak00p/notes/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the owner id. Tokens minted by other
// issuers may carry the owner only in "sub".
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
}

func (c *Claims) owner() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
	})

	return token.SignedString(secretKey)
}

// GetUserIDFromToken verifies an HS256 token with secretKey and returns its owner.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.owner() == "" {
		return "", common.ErrInvalidToken
	}

	return claims.owner(), nil
}

// OwnerFromToken reads the owner and expiry of a token without verifying its
// signature. The client holds no signing secret; the remote store and the
// extraction server do the verification.
func OwnerFromToken(tokenString string, now time.Time) (string, time.Time, error) {
	claims := &Claims{}

	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return "", time.Time{}, common.ErrInvalidToken
	}

	owner := claims.owner()
	if owner == "" {
		return "", time.Time{}, common.ErrInvalidToken
	}

	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
		if !now.Before(expires) {
			return "", expires, common.ErrTokenExpired
		}
	}

	return owner, expires, nil
}
