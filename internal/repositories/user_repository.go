package repositories

import (
	"errors"

	"etalase/internal/models"
)

// ErrNotFound is returned when a requested record does not exist in the
// record store, as opposed to the store being unreachable.
var ErrNotFound = errors.New("record not found")

// UserRepository defines the interface for user record access.
type UserRepository interface {
	GetByID(id string) (*models.User, error)
	// FindByEmail returns the single user matching the email, or ErrNotFound.
	FindByEmail(email string) (*models.User, error)
	// Create stores a new user and returns it with the assigned ID.
	Create(user *models.User) (*models.User, error)
	// Replace overwrites the whole user record and returns what the store
	// actually persisted.
	Replace(user *models.User) (*models.User, error)
}
