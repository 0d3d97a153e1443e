package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RolePlayer Role = "player"
	RoleBookie Role = "bookie"
)

var ErrUnknownRole = errors.New("unknown role")

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePlayer, "":
		return RolePlayer, nil
	case RoleBookie:
		return RoleBookie, nil
	}
	return "", ErrUnknownRole
}

// Claims identify a panel session. APIToken is the backend bearer token the
// session forwards on every upstream call.
type Claims struct {
	UserID    string `json:"uid"`
	Role      Role   `json:"role"`
	SessionID string `json:"sid"`
	APIToken  string `json:"api,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) IsBookie() bool {
	return c.Role == RoleBookie
}

func GenerateToken(secret []byte, userID string, role Role, sessionID, apiToken string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Role:      role,
		SessionID: sessionID,
		APIToken:  apiToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ParseToken(secret []byte, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}
