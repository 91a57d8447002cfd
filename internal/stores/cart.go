package stores

import (
	"sync"

	"etalase/internal/models"
	"etalase/pkg/notify"
)

// CartStore presents a line-item view of the current user's cart. The items
// slice is a locally cached projection of user.cart: it is re-derived
// whenever the session's user changes and optimistically replaced on a
// successful mutation. Every persisted write goes through the session store.
type CartStore struct {
	session *SessionStore
	bus     *notify.Bus

	mu    sync.RWMutex
	items []models.CartItem
}

// NewCartStore creates a CartStore bound to the session.
func NewCartStore(session *SessionStore, bus *notify.Bus) *CartStore {
	c := &CartStore{
		session: session,
		bus:     bus,
	}
	session.Subscribe(c.syncFromSession)
	c.syncFromSession()
	return c
}

// syncFromSession re-derives the projection from the session's user value.
func (c *CartStore) syncFromSession() {
	user := c.session.CurrentUser()

	c.mu.Lock()
	defer c.mu.Unlock()
	if user == nil {
		c.items = nil
		return
	}
	c.items = user.Cart
}

// Items returns a copy of the current cart lines.
func (c *CartStore) Items() []models.CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.CartItem{}, c.items...)
}

// snapshot returns the current lines without copying twice internally.
func (c *CartStore) snapshot() []models.CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.CartItem{}, c.items...)
}

// persist writes the candidate cart through the session store. On success
// the local projection is replaced with the candidate; on failure it is
// left exactly as it was and the session has already surfaced the error.
func (c *CartStore) persist(candidate []models.CartItem) bool {
	user := c.session.CurrentUser()
	if user == nil {
		c.bus.Error("Please login to manage your cart")
		return false
	}

	user.Cart = candidate
	if !c.session.UpdateUser(*user) {
		return false
	}

	c.mu.Lock()
	c.items = candidate
	c.mu.Unlock()
	return true
}

// mergeLine adds a product to a copy of the given lines, incrementing the
// existing line's quantity instead of duplicating it. At most one line per
// product id ever exists in a cart.
func mergeLine(lines []models.CartItem, product models.Product, quantity int) []models.CartItem {
	candidate := append([]models.CartItem{}, lines...)
	for i := range candidate {
		if candidate[i].ProductID == product.ID {
			candidate[i].Quantity += quantity
			return candidate
		}
	}
	return append(candidate, models.CartItem{
		ProductID: product.ID,
		Quantity:  quantity,
		Price:     product.Price,
		Name:      product.Name,
		Image:     product.Image(),
	})
}

// AddToCart adds quantity of the product, snapshotting price, name and
// image at add time.
func (c *CartStore) AddToCart(product models.Product, quantity int) bool {
	if quantity < 1 {
		c.bus.Error("Quantity must be at least 1")
		return false
	}
	if !c.session.IsAuthenticated() {
		c.bus.Error("Please login to add items to cart")
		return false
	}

	if !c.persist(mergeLine(c.snapshot(), product, quantity)) {
		return false
	}
	c.bus.Success("Added to cart")
	return true
}

// RemoveFromCart drops the line for the product id.
func (c *CartStore) RemoveFromCart(productID string) bool {
	candidate := []models.CartItem{}
	for _, item := range c.snapshot() {
		if item.ProductID != productID {
			candidate = append(candidate, item)
		}
	}
	return c.persist(candidate)
}

// UpdateQuantity sets the line's quantity to newQuantity. Zero or negative
// values are rejected outright, never treated as removal. The visible value
// changes tentatively before the write and reverts to the last known good
// state if the write fails.
func (c *CartStore) UpdateQuantity(productID string, newQuantity int) bool {
	if newQuantity < 1 {
		c.bus.Error("Quantity must be at least 1")
		return false
	}

	c.mu.Lock()
	prev := append([]models.CartItem{}, c.items...)
	candidate := append([]models.CartItem{}, c.items...)
	for i := range candidate {
		if candidate[i].ProductID == productID {
			candidate[i].Quantity = newQuantity
		}
	}
	c.items = candidate // tentative, pending the write
	c.mu.Unlock()

	user := c.session.CurrentUser()
	if user == nil {
		c.mu.Lock()
		c.items = prev
		c.mu.Unlock()
		c.bus.Error("Please login to manage your cart")
		return false
	}

	user.Cart = candidate
	if !c.session.UpdateUser(*user) {
		c.mu.Lock()
		c.items = prev
		c.mu.Unlock()
		return false
	}
	return true
}

// ClearCart persists an empty cart.
func (c *CartStore) ClearCart() bool {
	return c.persist([]models.CartItem{})
}

// CartTotal recomputes the cart total from the current lines on every call
// so it can never go stale relative to in-flight updates.
func (c *CartStore) CartTotal() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total float64
	for _, item := range c.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// CartCount returns the sum of line quantities, for badge display.
func (c *CartStore) CartCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var count int
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}
