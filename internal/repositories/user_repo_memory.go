package repositories

import (
	"fmt"
	"sync"

	"etalase/internal/models"

	"github.com/google/uuid"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
// It backs the embedded mock record store and the tests.
type MemoryUserRepository struct {
	users map[string]models.User
	ids   []string // insertion order, so listings are deterministic
	mu    sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]models.User),
	}
}

// GetByID returns a user by ID.
func (r *MemoryUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	u := user.Clone()
	u.Normalize()
	return u, nil
}

// FindByEmail returns the user matching the email, or ErrNotFound.
func (r *MemoryUserRepository) FindByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.ids {
		if user, ok := r.users[id]; ok && user.Email == email {
			u := user.Clone()
			u.Normalize()
			return u, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
}

// Create stores a new user, assigning an ID when none is set.
func (r *MemoryUserRepository) Create(user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *user.Clone()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	stored.Normalize()
	if _, exists := r.users[stored.ID]; !exists {
		r.ids = append(r.ids, stored.ID)
	}
	r.users[stored.ID] = stored
	return stored.Clone(), nil
}

// Replace overwrites an existing user record.
func (r *MemoryUserRepository) Replace(user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return nil, fmt.Errorf("user with ID %s: %w", user.ID, ErrNotFound)
	}
	stored := *user.Clone()
	stored.Normalize()
	r.users[stored.ID] = stored
	return stored.Clone(), nil
}

// GetAll returns every user in insertion order. The mock store serves
// unfiltered /users listings from this.
func (r *MemoryUserRepository) GetAll() ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userList := make([]models.User, 0, len(r.ids))
	for _, id := range r.ids {
		u := r.users[id]
		userList = append(userList, *u.Clone())
	}
	return userList, nil
}
