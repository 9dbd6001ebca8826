package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dentalcare/dentalcare/internal/platform/apperr"
)

// Claims is the token payload. Subject carries the user's email. There is
// deliberately no field that could hold a password or its digest.
type Claims struct {
	jwt.RegisteredClaims
	UserID        int64  `json:"user_id"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	ChatSessionID int64  `json:"chat_session_id"`
}

// Identity returns the subject identity carried by the claims.
func (c *Claims) Identity() Identity {
	return Identity{
		Email:         c.Subject,
		UserID:        c.UserID,
		ChatSessionID: c.ChatSessionID,
	}
}

// TokenService issues and validates HMAC-signed JWTs with one fixed algorithm.
type TokenService struct {
	key    []byte
	method jwt.SigningMethod
	now    func() time.Time
}

func NewTokenService(secret, algorithm string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("token signing secret is empty")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &TokenService{key: []byte(secret), method: method, now: time.Now}, nil
}

// Issue signs claims after stamping issued-at and expiry.
func (s *TokenService) Issue(claims Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(s.method, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token. Any failure (bad signature,
// malformed structure, expiry, wrong algorithm) is KindInvalidToken.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, apperr.InvalidToken(err)
	}
	if !token.Valid {
		return nil, apperr.InvalidToken(errors.New("token not valid"))
	}
	if claims.Subject == "" {
		return nil, apperr.InvalidToken(errors.New("token has no subject"))
	}
	return claims, nil
}
