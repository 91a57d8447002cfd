package repositories

import "etalase/internal/models"

// ProductRepository defines the interface for catalog access. The catalog is
// read-only from the client's perspective.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
}
