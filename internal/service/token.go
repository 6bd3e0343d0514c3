package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openclaw/waba-signup-go/internal/model"
)

// SessionClaims is the payload of an issued session token. The full
// association list rides inside the token so the frontend can render every
// WABA of every business without another round trip.
type SessionClaims struct {
	Name             string                      `json:"name,omitempty"`
	Email            string                      `json:"email,omitempty"`
	APIType          string                      `json:"apiType"`
	BusinessAccounts []model.BusinessAssociation `json:"businessAccounts"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a session token for a completed signup.
func (i *TokenIssuer) Issue(user model.UserIdentity, associations []model.BusinessAssociation) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Name:             user.Name,
		Email:            user.Email,
		APIType:          "meta",
		BusinessAccounts: associations,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies a session token and returns its claims.
func (i *TokenIssuer) Parse(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	return claims, nil
}
