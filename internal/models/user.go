package models

import "time"

// User represents the remote user record owned by the record store.
// Cart, Wishlist and Orders are always present as slices (possibly empty)
// once the user exists; Normalize enforces that after every fetch.
type User struct {
	ID        string         `json:"id" validate:"omitempty"`
	Name      string         `json:"name" validate:"required,min=2,max=100"`
	Email     string         `json:"email" validate:"required,email"`
	Password  string         `json:"password" validate:"required,min=6"`
	Role      string         `json:"role"`
	IsBlock   bool           `json:"isBlock"`
	Cart      []CartItem     `json:"cart"`
	Wishlist  []WishlistItem `json:"wishlist"`
	Orders    []Order        `json:"orders"`
	CreatedAt time.Time      `json:"created_at"`
}

// Roles assignable to a user record.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Normalize replaces absent collections with empty slices so callers can
// append without nil checks.
func (u *User) Normalize() {
	if u.Cart == nil {
		u.Cart = []CartItem{}
	}
	if u.Wishlist == nil {
		u.Wishlist = []WishlistItem{}
	}
	if u.Orders == nil {
		u.Orders = []Order{}
	}
}

// Clone returns a deep copy of the user so callers cannot mutate the
// session's authoritative value through shared slices.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Cart = append([]CartItem{}, u.Cart...)
	c.Wishlist = append([]WishlistItem{}, u.Wishlist...)
	c.Orders = make([]Order, len(u.Orders))
	for i, o := range u.Orders {
		c.Orders[i] = o
		c.Orders[i].Items = append([]CartItem{}, o.Items...)
	}
	return &c
}
