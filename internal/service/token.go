package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"karmafeed/internal/model"
)

// TokenService issues and checks HS256 bearer tokens carrying a user_id claim.
type TokenService struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, maxAge time.Duration, opts ...Option) *TokenService {
	o := applyOptions(opts)
	return &TokenService{secret: []byte(secret), maxAge: maxAge, now: o.now}
}

func (s *TokenService) Issue(userID int64) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(s.maxAge).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the token and returns its user id.
func (s *TokenService) Parse(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, model.ErrTokenExpired
		}
		return 0, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, model.ErrTokenInvalid
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("%w: missing user_id claim", model.ErrTokenInvalid)
	}
	return int64(userIDFloat), nil
}
