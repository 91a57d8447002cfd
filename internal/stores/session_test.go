package stores_test

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"etalase/internal/localstore"
	"etalase/internal/models"
	"etalase/internal/repositories"
	"etalase/internal/stores"
	"etalase/pkg/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(user *models.User) (*models.User, error) {
	args := m.Called(user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Replace(user *models.User) (*models.User, error) {
	args := m.Called(user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func notFoundErr(what string) error {
	return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
}

func storedUser() *models.User {
	return &models.User{
		ID:       "user-1",
		Name:     "Test User",
		Email:    "a@b.com",
		Password: "x",
		Role:     models.RoleUser,
		IsBlock:  false,
		Cart:     []models.CartItem{},
		Wishlist: []models.WishlistItem{},
		Orders:   []models.Order{},
	}
}

func newSession(t *testing.T, repo repositories.UserRepository) *stores.SessionStore {
	t.Helper()
	local := localstore.New(filepath.Join(t.TempDir(), "session"), "test-secret")
	return stores.NewSessionStore(repo, local, notify.NewBus())
}

// TestMain suppresses store logging during tests for cleaner output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func TestSessionStore_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	session := newSession(t, mockRepo)

	// Successful login sets the current user
	mockRepo.On("FindByEmail", "a@b.com").Return(storedUser(), nil).Once()
	ok := session.Login("a@b.com", "x")
	assert.True(t, ok)
	current := session.CurrentUser()
	assert.NotNil(t, current)
	assert.Equal(t, "a@b.com", current.Email)
	mockRepo.AssertExpectations(t)

	// Wrong password fails and leaves the session untouched
	freshRepo := new(MockUserRepository)
	freshSession := newSession(t, freshRepo)
	freshRepo.On("FindByEmail", "a@b.com").Return(storedUser(), nil).Once()
	ok = freshSession.Login("a@b.com", "wrong")
	assert.False(t, ok)
	assert.Nil(t, freshSession.CurrentUser())
	freshRepo.AssertExpectations(t)

	// Unknown email fails
	freshRepo.On("FindByEmail", "nouser@b.com").Return(nil, notFoundErr("user with email nouser@b.com")).Once()
	ok = freshSession.Login("nouser@b.com", "x")
	assert.False(t, ok)
	assert.Nil(t, freshSession.CurrentUser())
	freshRepo.AssertExpectations(t)

	// Blocked account fails even with the right password
	blocked := storedUser()
	blocked.IsBlock = true
	freshRepo.On("FindByEmail", "a@b.com").Return(blocked, nil).Once()
	ok = freshSession.Login("a@b.com", "x")
	assert.False(t, ok)
	assert.Nil(t, freshSession.CurrentUser())
	freshRepo.AssertExpectations(t)
}

func TestSessionStore_LoginHashedPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	session := newSession(t, mockRepo)

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	user := storedUser()
	user.Password = string(hashed)

	mockRepo.On("FindByEmail", "a@b.com").Return(user, nil).Twice()
	assert.True(t, session.Login("a@b.com", "password123"))

	session.Logout()
	assert.False(t, session.Login("a@b.com", "wrong"))
	mockRepo.AssertExpectations(t)
}

func TestSessionStore_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	session := newSession(t, mockRepo)

	// Taken email fails without creating anything
	mockRepo.On("FindByEmail", "a@b.com").Return(storedUser(), nil).Once()
	ok := session.Register("New User", "a@b.com", "password123")
	assert.False(t, ok)
	assert.Nil(t, session.CurrentUser())
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	mockRepo.AssertExpectations(t)

	// Successful registration creates a record with empty collections
	mockRepo.On("FindByEmail", "new@b.com").Return(nil, notFoundErr("user with email new@b.com")).Once()
	mockRepo.On("Create", mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "new@b.com" &&
			u.Role == models.RoleUser &&
			!u.IsBlock &&
			len(u.Cart) == 0 && len(u.Wishlist) == 0 && len(u.Orders) == 0 &&
			strings.HasPrefix(u.Password, "$2")
	})).Return(&models.User{
		ID:       "user-2",
		Name:     "New User",
		Email:    "new@b.com",
		Password: "$2a$10$irrelevant",
		Role:     models.RoleUser,
	}, nil).Once()

	ok = session.Register("New User", "new@b.com", "password123")
	assert.True(t, ok)
	current := session.CurrentUser()
	assert.NotNil(t, current)
	assert.Equal(t, "user-2", current.ID)
	mockRepo.AssertExpectations(t)
}

func TestSessionStore_RegisterRejectsInvalidInput(t *testing.T) {
	mockRepo := new(MockUserRepository)
	session := newSession(t, mockRepo)

	assert.False(t, session.Register("New User", "not-an-email", "password123"))
	assert.False(t, session.Register("New User", "new@b.com", "short"))
	assert.False(t, session.Register("", "new@b.com", "password123"))
	mockRepo.AssertNotCalled(t, "FindByEmail", mock.Anything)
}

func TestSessionStore_Logout(t *testing.T) {
	mockRepo := new(MockUserRepository)
	session := newSession(t, mockRepo)

	mockRepo.On("FindByEmail", "a@b.com").Return(storedUser(), nil).Once()
	assert.True(t, session.Login("a@b.com", "x"))
	assert.True(t, session.IsAuthenticated())

	session.Logout()
	assert.False(t, session.IsAuthenticated())
	assert.Nil(t, session.CurrentUser())

	// Logging out again is harmless
	session.Logout()
	assert.Nil(t, session.CurrentUser())
}

func TestSessionStore_UpdateUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	session := newSession(t, mockRepo)

	// Anonymous update fails
	assert.False(t, session.UpdateUser(*storedUser()))

	mockRepo.On("FindByEmail", "a@b.com").Return(storedUser(), nil).Once()
	assert.True(t, session.Login("a@b.com", "x"))

	// Local state follows the server's response, not the optimistic input
	input := *session.CurrentUser()
	input.Cart = []models.CartItem{{ProductID: "p1", Quantity: 2, Price: 10, Name: "Laptop"}}
	serverSays := storedUser()
	serverSays.Cart = []models.CartItem{{ProductID: "p1", Quantity: 2, Price: 10, Name: "Laptop (server)"}}
	mockRepo.On("Replace", mock.Anything).Return(serverSays, nil).Once()

	assert.True(t, session.UpdateUser(input))
	current := session.CurrentUser()
	assert.Equal(t, "Laptop (server)", current.Cart[0].Name)
	mockRepo.AssertExpectations(t)

	// A failed write leaves local state unchanged
	before := session.CurrentUser()
	gen := session.Generation()
	input.Cart = nil
	mockRepo.On("Replace", mock.Anything).Return(nil, fmt.Errorf("store unreachable")).Once()
	assert.False(t, session.UpdateUser(input))
	assert.Equal(t, before, session.CurrentUser())
	assert.Equal(t, gen, session.Generation())
	mockRepo.AssertExpectations(t)
}

func TestSessionStore_AddOrder(t *testing.T) {
	mockRepo := new(MockUserRepository)
	session := newSession(t, mockRepo)

	draft := stores.OrderDraft{
		Items: []models.CartItem{
			{ProductID: "p1", Quantity: 1, Price: 19.99, Name: "Keyboard"},
			{ProductID: "p2", Quantity: 1, Price: 29.99, Name: "Mouse"},
		},
		Total:         49.98,
		PaymentMethod: models.PaymentCash,
	}

	// Anonymous order placement fails
	assert.Equal(t, "", session.AddOrder(draft))
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything)

	mockRepo.On("FindByEmail", "a@b.com").Return(storedUser(), nil).Once()
	assert.True(t, session.Login("a@b.com", "x"))

	// The order append and the cart clear travel in one write
	fresh := storedUser()
	fresh.Cart = append([]models.CartItem{}, draft.Items...)
	mockRepo.On("GetByID", "user-1").Return(fresh, nil).Once()

	var written *models.User
	mockRepo.On("Replace", mock.MatchedBy(func(u *models.User) bool {
		written = u
		return len(u.Orders) == 1 && len(u.Cart) == 0
	})).Return(func() *models.User {
		confirmed := storedUser()
		confirmed.Orders = []models.Order{{ID: "placeholder"}}
		return confirmed
	}(), nil).Once()

	orderID := session.AddOrder(draft)
	assert.NotEmpty(t, orderID)
	assert.True(t, strings.HasPrefix(orderID, "ord_"))

	assert.NotNil(t, written)
	placed := written.Orders[0]
	assert.Equal(t, orderID, placed.ID)
	assert.Equal(t, draft.Items, placed.Items)
	assert.Equal(t, 49.98, placed.Total)
	assert.Equal(t, models.OrderStatusProcessing, placed.Status)
	assert.Empty(t, written.Cart)
	mockRepo.AssertExpectations(t)

	// Local state reflects the server's stored record
	assert.Len(t, session.CurrentUser().Orders, 1)
	assert.Empty(t, session.CurrentUser().Cart)
}

func TestSessionStore_AddOrderFailureKeepsState(t *testing.T) {
	mockRepo := new(MockUserRepository)
	session := newSession(t, mockRepo)

	withCart := storedUser()
	withCart.Cart = []models.CartItem{{ProductID: "p1", Quantity: 2, Price: 10, Name: "Laptop"}}
	mockRepo.On("FindByEmail", "a@b.com").Return(withCart, nil).Once()
	assert.True(t, session.Login("a@b.com", "x"))

	mockRepo.On("GetByID", "user-1").Return(withCart.Clone(), nil).Once()
	mockRepo.On("Replace", mock.Anything).Return(nil, fmt.Errorf("store unreachable")).Once()

	assert.Equal(t, "", session.AddOrder(stores.OrderDraft{Items: withCart.Cart, Total: 20}))
	current := session.CurrentUser()
	assert.Len(t, current.Cart, 1)
	assert.Empty(t, current.Orders)
	mockRepo.AssertExpectations(t)
}

func TestSessionStore_RefreshUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	session := newSession(t, mockRepo)

	mockRepo.On("FindByEmail", "a@b.com").Return(storedUser(), nil).Once()
	assert.True(t, session.Login("a@b.com", "x"))

	// A failed refresh keeps the last known local state
	before := session.CurrentUser()
	mockRepo.On("GetByID", "user-1").Return(nil, fmt.Errorf("store unreachable")).Once()
	session.RefreshUser()
	assert.Equal(t, before, session.CurrentUser())

	// A successful refresh replaces it
	remote := storedUser()
	remote.Wishlist = []models.WishlistItem{{ProductID: "p9", Name: "Lamp", Price: 35}}
	mockRepo.On("GetByID", "user-1").Return(remote, nil).Once()
	session.RefreshUser()
	assert.Len(t, session.CurrentUser().Wishlist, 1)
	mockRepo.AssertExpectations(t)
}

func TestSessionStore_Restore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	local := localstore.New(path, "test-secret")

	firstRepo := new(MockUserRepository)
	first := stores.NewSessionStore(firstRepo, local, notify.NewBus())
	firstRepo.On("FindByEmail", "a@b.com").Return(storedUser(), nil).Once()
	assert.True(t, first.Login("a@b.com", "x"))

	// A new store over the same file restores and reconciles with the backend
	secondRepo := new(MockUserRepository)
	remote := storedUser()
	remote.Cart = []models.CartItem{{ProductID: "p1", Quantity: 1, Price: 10, Name: "Laptop"}}
	secondRepo.On("GetByID", "user-1").Return(remote, nil).Once()

	second := stores.NewSessionStore(secondRepo, local, notify.NewBus())
	second.Restore()
	assert.True(t, second.IsAuthenticated())
	assert.Len(t, second.CurrentUser().Cart, 1)
	secondRepo.AssertExpectations(t)

	// When reconciliation fails the stale restored identity is kept
	thirdRepo := new(MockUserRepository)
	thirdRepo.On("GetByID", mock.Anything).Return(nil, fmt.Errorf("store unreachable"))
	third := stores.NewSessionStore(thirdRepo, local, notify.NewBus())
	third.Restore()
	assert.True(t, third.IsAuthenticated())
	assert.Equal(t, "a@b.com", third.CurrentUser().Email)

	// After logout nothing restores
	first.Logout()
	fourth := stores.NewSessionStore(new(MockUserRepository), local, notify.NewBus())
	fourth.Restore()
	assert.False(t, fourth.IsAuthenticated())
}

func TestSessionStore_SubscribersSeeEveryChange(t *testing.T) {
	mockRepo := new(MockUserRepository)
	session := newSession(t, mockRepo)

	var calls int
	session.Subscribe(func() { calls++ })

	mockRepo.On("FindByEmail", "a@b.com").Return(storedUser(), nil).Once()
	session.Login("a@b.com", "x")
	session.Logout()
	assert.Equal(t, 2, calls)
}
