package models

// CartItem is a single line in a user's cart. Price, name and image are
// snapshots taken when the line was added; they are not re-read from the
// catalog later.
type CartItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity" validate:"gte=1"`
	Price     float64 `json:"price"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
}

// WishlistItem is a single entry in a user's wishlist, snapshotted the same
// way as a cart line but without a quantity.
type WishlistItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
}
