package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Roles a MediBridge account can hold.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleSeller  = "seller"
)

// Seller types.
const (
	SellerRetail    = "retail"
	SellerWholesale = "wholesale"
	SellerHospital  = "hospital"
	SellerNGO       = "ngo"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("a user with this email or username already exists")
)

// User represents an account on the storefront.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name,omitempty"`
	Role         string    `json:"role"`
	SellerType   string    `json:"seller_type,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Repository defines user data storage.
type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}
