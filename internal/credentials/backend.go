package credentials

import (
	"context"

	"input-portal/internal/models"
)

// Columns is the canonical shape of the persisted registry.
var Columns = []string{"company", "username", "password_hash", "role"}

// Backend persists the whole registry. Every mutation is a full
// read-modify-write: Load, change the slice, Save it back.
type Backend interface {
	Load(ctx context.Context) ([]models.User, error)
	Save(ctx context.Context, users []models.User) error
}
