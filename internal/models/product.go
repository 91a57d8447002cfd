package models

import "time"

// Product represents a product in the catalog. Products are read-only from
// the client's perspective; the catalog backend owns them.
type Product struct {
	ID          string    `json:"id" validate:"omitempty"`
	Name        string    `json:"name" validate:"required,min=3,max=100"`
	Description string    `json:"description" validate:"omitempty,max=500"`
	Price       float64   `json:"price" validate:"gte=0"`
	Images      []string  `json:"images" validate:"required,min=1"`
	Category    string    `json:"category" validate:"required"`
	Count       int       `json:"count" validate:"gte=0"`
	CreatedAt   time.Time `json:"created_at"`
}

// Image returns the primary image URL, or an empty string when the record
// carries none.
func (p *Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
