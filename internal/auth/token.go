package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/vitabu/textbook-store/internal/models"
)

// TokenIssuer mints and parses the bearer tokens used by the HTTP layer.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

type claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (t *TokenIssuer) Issue(p Principal) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: p.Username,
		Role:     string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", p.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Parse validates the signature and expiry and rebuilds the principal.
// The embedded role must still be one of the known roles; a token minted
// with anything else is rejected outright.
func (t *TokenIssuer) Parse(tokenString string) (Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return Principal{}, fmt.Errorf("invalid token")
	}

	var id int64
	if _, err := fmt.Sscanf(c.Subject, "%d", &id); err != nil {
		return Principal{}, fmt.Errorf("invalid subject claim: %w", err)
	}

	role := models.Role(c.Role)
	if !role.Valid() {
		return Principal{}, fmt.Errorf("unknown role %q", c.Role)
	}

	return Principal{ID: id, Username: c.Username, Role: role}, nil
}
