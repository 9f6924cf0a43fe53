package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthToken is the opaque per-user credential issued on login.
type AuthToken struct {
	Key       string    `json:"-" db:"key"` // Never return in JSON
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
