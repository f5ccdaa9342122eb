package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client is a borrower. Clients own their loans: deleting a client cascades
// to its loans and their installments.
type Client struct {
	ID         uuid.UUID `json:"id" db:"id"`
	LegacyID   *int64    `json:"legacy_id,omitempty" db:"legacy_id"`
	Name       string    `json:"name" db:"name"`
	Email      string    `json:"email" db:"email"`
	Phone      string    `json:"phone" db:"phone"`
	AccessCode string    `json:"-" db:"access_code"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// User is a staff account on the admin side.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type CreateClientRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

type UpdateClientRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

// CreateClientResponse includes the generated access code exactly once, at
// creation time; it is never returned by any other endpoint.
type CreateClientResponse struct {
	Client     *Client `json:"client"`
	AccessCode string  `json:"access_code"`
}

type LoginRequest struct {
	AccessCode string `json:"access_code" validate:"required"`
}

type StaffLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterStaffRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin collector"`
}

type LoginResponse struct {
	Token  string  `json:"token"`
	Client *Client `json:"client,omitempty"`
	User   *User   `json:"user,omitempty"`
}
