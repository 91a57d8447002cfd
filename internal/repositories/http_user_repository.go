package repositories

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"etalase/internal/models"
)

// HTTPUserRepository talks to the external record store over its
// json-server style API (GET /users/{id}, GET /users?email=, POST /users,
// PUT /users/{id}).
type HTTPUserRepository struct {
	baseURL string
	client  *http.Client
}

// NewHTTPUserRepository creates a new instance of HTTPUserRepository.
func NewHTTPUserRepository(baseURL string) *HTTPUserRepository {
	return &HTTPUserRepository{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetByID retrieves a user record by its ID.
func (r *HTTPUserRepository) GetByID(id string) (*models.User, error) {
	resp, err := r.client.Get(fmt.Sprintf("%s/users/%s", r.baseURL, url.PathEscape(id)))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get user by ID %s: unexpected status %d", id, resp.StatusCode)
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", id, err)
	}
	user.Normalize()
	return &user, nil
}

// FindByEmail retrieves the single user matching the email. The record store
// answers the query with a sequence of zero or one records.
func (r *HTTPUserRepository) FindByEmail(email string) (*models.User, error) {
	resp, err := r.client.Get(fmt.Sprintf("%s/users?email=%s", r.baseURL, url.QueryEscape(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email %s: %w", email, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to query user by email %s: unexpected status %d", email, resp.StatusCode)
	}

	var users []models.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to decode user query for %s: %w", email, err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
	}
	users[0].Normalize()
	return &users[0], nil
}

// Create stores a new user record and returns it with the assigned ID.
func (r *HTTPUserRepository) Create(user *models.User) (*models.User, error) {
	body, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}

	resp, err := r.client.Post(r.baseURL+"/users", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to create user: unexpected status %d", resp.StatusCode)
	}

	var created models.User
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode created user: %w", err)
	}
	created.Normalize()
	return &created, nil
}

// Replace overwrites the whole user record (PUT) and returns the record the
// store persisted. Callers must pass the complete desired record; the
// transport only supports whole-record replacement.
func (r *HTTPUserRepository) Replace(user *models.User) (*models.User, error) {
	body, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user %s: %w", user.ID, err)
	}

	req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/users/%s", r.baseURL, url.PathEscape(user.ID)), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build update request for user %s: %w", user.ID, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("user with ID %s: %w", user.ID, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to update user %s: unexpected status %d", user.ID, resp.StatusCode)
	}

	var updated models.User
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to decode updated user %s: %w", user.ID, err)
	}
	updated.Normalize()
	return &updated, nil
}
