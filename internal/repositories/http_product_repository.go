package repositories

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"etalase/internal/models"
)

// HTTPProductRepository reads the product catalog from the external record
// store (GET /products, GET /products/{id}).
type HTTPProductRepository struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProductRepository creates a new instance of HTTPProductRepository.
func NewHTTPProductRepository(baseURL string) *HTTPProductRepository {
	return &HTTPProductRepository{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetAll retrieves the full product collection.
func (r *HTTPProductRepository) GetAll() ([]models.Product, error) {
	resp, err := r.client.Get(r.baseURL + "/products")
	if err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get all products: unexpected status %d", resp.StatusCode)
	}

	var products []models.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *HTTPProductRepository) GetByID(id string) (*models.Product, error) {
	resp, err := r.client.Get(fmt.Sprintf("%s/products/%s", r.baseURL, url.PathEscape(id)))
	if err != nil {
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get product by ID %s: unexpected status %d", id, resp.StatusCode)
	}

	var product models.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("failed to decode product %s: %w", id, err)
	}
	return &product, nil
}
