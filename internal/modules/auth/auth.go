package auth

import (
	"context"
	"errors"

	"github.com/dgrijalva/jwt-go"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Claims is the JWT payload issued on login.
type Claims struct {
	Role       string `json:"role"`
	SellerType string `json:"seller_type,omitempty"`
	jwt.StandardClaims
}

// Service defines the interface for authentication-related business logic.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
	ParseToken(token string) (*Claims, error)
}
