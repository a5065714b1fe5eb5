package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier turns inbound credentials into a verified participant identity.
// The arena core only ever sees the identity; a verification failure aborts
// the connection attempt before anything reaches the core.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Claims is the payload carried inside arena tokens.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256-signed tokens.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || strings.TrimSpace(claims.UserID) == "" {
		return "", jwt.ErrSignatureInvalid
	}
	return strings.TrimSpace(claims.UserID), nil
}

// GenerateToken signs a token for userID; used by tooling and tests.
func (v *JWTVerifier) GenerateToken(userID string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "chess-arena",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// InsecureVerifier treats the presented token as the identity itself.
// Development only; selected when no JWT secret is configured.
type InsecureVerifier struct{}

func (InsecureVerifier) Verify(_ context.Context, token string) (string, error) {
	id := strings.TrimSpace(token)
	if id == "" {
		return "", fmt.Errorf("empty identity")
	}
	return id, nil
}
