package stores

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"etalase/internal/localstore"
	"etalase/internal/models"
	"etalase/internal/repositories"
	"etalase/pkg/notify"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// OrderDraft carries what checkout knows about an order before the session
// store stamps the id, status and creation time.
type OrderDraft struct {
	Items         []models.CartItem
	Total         float64
	ShippingInfo  models.ShippingInfo
	PaymentMethod string
}

// SessionStore owns the authenticated identity and is the sole gateway for
// reading and writing the remote user record. Cart and wishlist stores hold
// projections of that record and route every mutation through here, so one
// code path serializes conceptual access to the single shared resource.
type SessionStore struct {
	users    repositories.UserRepository
	local    *localstore.Store
	bus      *notify.Bus
	validate *validator.Validate

	mu   sync.RWMutex
	user *models.User
	gen  uint64
	subs []func()
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(users repositories.UserRepository, local *localstore.Store, bus *notify.Bus) *SessionStore {
	return &SessionStore{
		users:    users,
		local:    local,
		bus:      bus,
		validate: validator.New(),
	}
}

// Subscribe registers a callback invoked after every change of the current
// user value, including logout. Derived stores re-project from it.
func (s *SessionStore) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// CurrentUser returns a copy of the authenticated user, or nil when
// anonymous. Callers never get a reference into the authoritative value.
func (s *SessionStore) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// IsAuthenticated reports whether a user is logged in.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Generation returns the sync generation counter, bumped on every accepted
// change of the current user value.
func (s *SessionStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// setUser replaces the authoritative user value and notifies subscribers.
// Subscribers run outside the lock; they are free to read back.
func (s *SessionStore) setUser(u *models.User) {
	s.mu.Lock()
	if u != nil {
		u.Normalize()
	}
	s.user = u
	s.gen++
	subs := append([]func(){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// adopt takes a server-confirmed record as the new authoritative state and
// persists it for session restore.
func (s *SessionStore) adopt(u *models.User) {
	s.setUser(u)
	if err := s.local.Save(u); err != nil {
		log.Printf("failed to persist session locally: %v", err)
	}
}

// passwordMatches compares a stored password against a login attempt.
// New registrations store bcrypt hashes; older records in the store hold
// plaintext and are compared directly.
func passwordMatches(stored, given string) bool {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return stored == given
}

func (s *SessionStore) login(email, password string) error {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrTransientFetch, err)
	}

	if !passwordMatches(user.Password, password) {
		return ErrInvalidCredentials
	}
	if user.IsBlock {
		return ErrAccountBlocked
	}

	s.adopt(user)
	return nil
}

// Login authenticates by email and password. It never propagates an error
// to the caller; failures surface as notifications and a false return, and
// leave the current user unchanged.
func (s *SessionStore) Login(email, password string) bool {
	if err := s.login(email, password); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			s.bus.Error("User not found")
		case errors.Is(err, ErrInvalidCredentials):
			s.bus.Error("Invalid credentials")
		case errors.Is(err, ErrAccountBlocked):
			s.bus.Error("Your account is blocked")
		default:
			log.Printf("login failed: %v", err)
			s.bus.Error("Login failed")
		}
		return false
	}

	s.bus.Success("Login successful")
	return true
}

// registerInput is validated before any remote call is made.
type registerInput struct {
	Name     string `validate:"required,min=2,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Register creates a new user record with empty collections and logs it in.
// A taken email fails without creating or mutating anything.
func (s *SessionStore) Register(name, email, password string) bool {
	if err := s.validate.Struct(registerInput{Name: name, Email: email, Password: password}); err != nil {
		s.bus.Error("Please provide a valid name, email and a password of at least 6 characters")
		return false
	}

	if _, err := s.users.FindByEmail(email); err == nil {
		s.bus.Error("Email already registered")
		return false
	} else if !errors.Is(err, repositories.ErrNotFound) {
		log.Printf("registration email check failed: %v", err)
		s.bus.Error("Registration failed")
		return false
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("failed to hash password: %v", err)
		s.bus.Error("Registration failed")
		return false
	}

	newUser := &models.User{
		Name:      name,
		Email:     email,
		Password:  string(hashed),
		Role:      models.RoleUser,
		IsBlock:   false,
		Cart:      []models.CartItem{},
		Wishlist:  []models.WishlistItem{},
		Orders:    []models.Order{},
		CreatedAt: time.Now(),
	}

	created, err := s.users.Create(newUser)
	if err != nil {
		log.Printf("failed to create user: %v", err)
		s.bus.Error("Registration failed")
		return false
	}

	s.adopt(created)
	s.bus.Success("Registration successful")
	return true
}

// Logout clears the current user and the persisted session marker.
// Logging out while anonymous is a no-op apart from the notification.
func (s *SessionStore) Logout() {
	if err := s.local.Clear(); err != nil {
		log.Printf("failed to clear persisted session: %v", err)
	}
	s.setUser(nil)
	s.bus.Success("Logged out successfully")
}

// UpdateUser replaces the remote user record with the given complete value
// and takes the server's response as the new local state. On failure the
// local state is left untouched.
func (s *SessionStore) UpdateUser(updated models.User) bool {
	s.mu.RLock()
	current := s.user
	s.mu.RUnlock()
	if current == nil {
		s.bus.Error("Please login first")
		return false
	}

	updated.ID = current.ID
	updated.Normalize()
	stored, err := s.users.Replace(&updated)
	if err != nil {
		log.Printf("failed to update user %s: %v", updated.ID, err)
		s.bus.Error("Failed to update user")
		return false
	}

	s.adopt(stored)
	return true
}

// AddOrder places an order: it re-fetches the remote record so concurrent
// server-side changes are not clobbered, appends the stamped order and
// clears the cart in one combined write, then takes the server's response
// as local state. Returns the new order id, or "" on failure.
func (s *SessionStore) AddOrder(draft OrderDraft) string {
	s.mu.RLock()
	current := s.user
	s.mu.RUnlock()
	if current == nil {
		s.bus.Error("You must be logged in to place an order")
		return ""
	}

	orderID := fmt.Sprintf("ord_%d", time.Now().UnixMilli())
	order := models.Order{
		ID:            orderID,
		Items:         append([]models.CartItem{}, draft.Items...),
		Total:         draft.Total,
		ShippingInfo:  draft.ShippingInfo,
		PaymentMethod: draft.PaymentMethod,
		Status:        models.OrderStatusProcessing,
		CreatedAt:     time.Now(),
	}

	fresh, err := s.users.GetByID(current.ID)
	if err != nil {
		log.Printf("failed to fetch user %s before order: %v", current.ID, err)
		s.bus.Error("Failed to create order")
		return ""
	}

	fresh.Orders = append(fresh.Orders, order)
	fresh.Cart = []models.CartItem{}

	stored, err := s.users.Replace(fresh)
	if err != nil {
		log.Printf("failed to persist order %s: %v", orderID, err)
		s.bus.Error("Failed to create order")
		return ""
	}

	s.adopt(stored)
	s.bus.Success("Order placed successfully!")
	return orderID
}

// RefreshUser re-fetches the current user from the record store. A failed
// fetch keeps the last known local state rather than failing the caller.
func (s *SessionStore) RefreshUser() {
	s.mu.RLock()
	current := s.user
	s.mu.RUnlock()
	if current == nil {
		return
	}

	fresh, err := s.users.GetByID(current.ID)
	if err != nil {
		log.Printf("refresh of user %s failed, keeping local state: %v", current.ID, err)
		return
	}
	s.adopt(fresh)
}

// Restore loads the persisted session at startup and best-effort reconciles
// it with the record store. When reconciliation fails, the restored (and
// possibly stale) identity stays in effect instead of forcing a re-login.
func (s *SessionStore) Restore() {
	user, err := s.local.Load()
	if err != nil {
		log.Printf("failed to load persisted session: %v", err)
		return
	}
	if user == nil {
		return
	}

	s.setUser(user)
	s.RefreshUser()
}
