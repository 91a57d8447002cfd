package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"etalase/internal/models"

	"github.com/dgrijalva/jwt-go"
)

// Store persists the current session user to disk so a restart can restore
// the session without re-login. The value is wrapped in a signed token;
// anything missing, malformed or tampered with is treated as no session.
type Store struct {
	path   string
	secret []byte
}

// New creates a Store writing to the given file path.
func New(path, secret string) *Store {
	return &Store{
		path:   path,
		secret: []byte(secret),
	}
}

// Save serializes the user into a signed token and writes it to disk.
func (s *Store) Save(user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal session user: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user": string(raw),
		"iat":  time.Now().Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(signed), 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load reads the persisted session, returning (nil, nil) when there is no
// usable session rather than failing the caller.
func (s *Store) Load() (*models.User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	token, err := jwt.Parse(string(data), func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil
	}
	raw, ok := claims["user"].(string)
	if !ok {
		return nil, nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, nil
	}
	user.Normalize()
	return &user, nil
}

// Clear removes the persisted session. Clearing an absent session is fine.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
