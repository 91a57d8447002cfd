package repositories

import (
	"fmt"
	"sync"

	"etalase/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of
// ProductRepository with a Create method for seeding the embedded store.
type MemoryProductRepository struct {
	products map[string]models.Product
	ids      []string // insertion order, so catalog ordering is deterministic
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of
// MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products in insertion order.
func (r *MemoryProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.ids))
	for _, id := range r.ids {
		productList = append(productList, r.products[id])
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

// Create adds a new product, assigning an ID when none is set.
func (r *MemoryProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if _, exists := r.products[product.ID]; !exists {
		r.ids = append(r.ids, product.ID)
	}
	r.products[product.ID] = *product
	return nil
}
