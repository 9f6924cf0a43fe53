package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize in JSON
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PublicUser is the only user shape written to clients.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// PublicUsers maps a slice of users to their public views. The result is never nil.
func PublicUsers(users []*User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}

// UserPayload is the sign-up and profile update body. Field order drives the
// order of validation error keys.
type UserPayload struct {
	Email                string `json:"email" validate:"required,email,max=254"`
	Username             string `json:"username" validate:"required,min=4,max=20"`
	Password             string `json:"password" validate:"required,min=8,max=64"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,min=8,max=64"`
	FirstName            string `json:"first_name" validate:"required,min=2,max=50"`
	LastName             string `json:"last_name" validate:"required,min=2,max=100"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=4,max=20"`
	Password string `json:"password" validate:"required,min=8,max=64"`
}

type LoginResponse struct {
	User        PublicUser `json:"user"`
	AccessToken string     `json:"access_token"`
}
