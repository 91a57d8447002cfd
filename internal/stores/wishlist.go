package stores

import (
	"sync"

	"etalase/internal/models"
	"etalase/pkg/notify"
)

// WishlistStore mirrors the cart store's shape for wishlist entries, plus
// MoveToCart which commits a cart append and a wishlist removal as one
// persisted write.
type WishlistStore struct {
	session *SessionStore
	bus     *notify.Bus

	mu    sync.RWMutex
	items []models.WishlistItem
}

// NewWishlistStore creates a WishlistStore bound to the session.
func NewWishlistStore(session *SessionStore, bus *notify.Bus) *WishlistStore {
	w := &WishlistStore{
		session: session,
		bus:     bus,
	}
	session.Subscribe(w.syncFromSession)
	w.syncFromSession()
	return w
}

func (w *WishlistStore) syncFromSession() {
	user := w.session.CurrentUser()

	w.mu.Lock()
	defer w.mu.Unlock()
	if user == nil {
		w.items = nil
		return
	}
	w.items = user.Wishlist
}

// Items returns a copy of the current wishlist entries.
func (w *WishlistStore) Items() []models.WishlistItem {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]models.WishlistItem{}, w.items...)
}

// Contains reports whether the product is already wishlisted.
func (w *WishlistStore) Contains(productID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, item := range w.items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

func (w *WishlistStore) persist(candidate []models.WishlistItem) bool {
	user := w.session.CurrentUser()
	if user == nil {
		w.bus.Error("Please login to manage your wishlist")
		return false
	}

	user.Wishlist = candidate
	if !w.session.UpdateUser(*user) {
		return false
	}

	w.mu.Lock()
	w.items = candidate
	w.mu.Unlock()
	return true
}

// AddToWishlist appends an entry snapshot for the product. Adding a product
// that is already wishlisted is an informational no-op, not an error.
func (w *WishlistStore) AddToWishlist(product models.Product) bool {
	if !w.session.IsAuthenticated() {
		w.bus.Error("Please login to add items to wishlist")
		return false
	}
	if w.Contains(product.ID) {
		w.bus.Info("Product already in wishlist")
		return false
	}

	candidate := append(w.Items(), models.WishlistItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image(),
	})
	if !w.persist(candidate) {
		return false
	}
	w.bus.Success("Added to wishlist")
	return true
}

// RemoveFromWishlist drops the entry for the product id.
func (w *WishlistStore) RemoveFromWishlist(productID string) bool {
	candidate := []models.WishlistItem{}
	for _, item := range w.Items() {
		if item.ProductID != productID {
			candidate = append(candidate, item)
		}
	}
	return w.persist(candidate)
}

// MoveToCart turns a wishlist entry into a cart line (quantity 1, reusing
// the entry's snapshotted price, name and image) and removes the entry, in
// a single persisted write against the user record. If that write fails,
// neither collection changes.
func (w *WishlistStore) MoveToCart(productID string) bool {
	user := w.session.CurrentUser()
	if user == nil {
		w.bus.Error("Please login to manage your wishlist")
		return false
	}

	current := w.Items()
	var entry *models.WishlistItem
	for i := range current {
		if current[i].ProductID == productID {
			entry = &current[i]
			break
		}
	}
	if entry == nil {
		w.bus.Error("Product not found in wishlist")
		return false
	}

	user.Cart = mergeLine(user.Cart, models.Product{
		ID:     entry.ProductID,
		Name:   entry.Name,
		Price:  entry.Price,
		Images: []string{entry.Image},
	}, 1)

	newWishlist := []models.WishlistItem{}
	for _, item := range current {
		if item.ProductID != productID {
			newWishlist = append(newWishlist, item)
		}
	}
	user.Wishlist = newWishlist

	if !w.session.UpdateUser(*user) {
		return false
	}

	w.mu.Lock()
	w.items = newWishlist
	w.mu.Unlock()
	w.bus.Success("Product moved to cart")
	return true
}
