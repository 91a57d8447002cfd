package stores

import (
	"log"
	"sort"
	"strings"
	"sync"

	"etalase/internal/models"
	"etalase/internal/repositories"
	"etalase/pkg/notify"
)

// SortOption selects how the filtered catalog view is ordered.
type SortOption string

const (
	SortDefault   SortOption = "default"
	SortPriceLow  SortOption = "price-low"
	SortPriceHigh SortOption = "price-high"
	SortNewest    SortOption = "newest"
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

// CatalogStore holds the full product list and a derived filtered/sorted
// view driven by search term, category and sort option. The filtered view
// is recomputed whenever the product list or any filter input changes.
type CatalogStore struct {
	products repositories.ProductRepository
	bus      *notify.Bus

	mu               sync.RWMutex
	all              []models.Product
	filtered         []models.Product
	categories       []string
	searchTerm       string
	selectedCategory string
	sortOption       SortOption
}

// NewCatalogStore creates a CatalogStore with no filters applied.
func NewCatalogStore(products repositories.ProductRepository, bus *notify.Bus) *CatalogStore {
	return &CatalogStore{
		products:         products,
		bus:              bus,
		selectedCategory: CategoryAll,
		sortOption:       SortDefault,
	}
}

// Load fetches the full product collection and derives the distinct
// category set (first-seen order). A failed load keeps the store usable
// with its previous list; calling Load again retries.
func (c *CatalogStore) Load() bool {
	products, err := c.products.GetAll()
	if err != nil {
		log.Printf("failed to load products: %v", err)
		c.bus.Error("Failed to load products")
		return false
	}

	seen := make(map[string]bool)
	categories := []string{}
	for _, p := range products {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}

	c.mu.Lock()
	c.all = products
	c.categories = categories
	c.applyFilters()
	c.mu.Unlock()
	return true
}

// applyFilters recomputes the derived view. Callers hold the write lock.
func (c *CatalogStore) applyFilters() {
	result := append([]models.Product{}, c.all...)

	if c.searchTerm != "" {
		term := strings.ToLower(c.searchTerm)
		matched := result[:0]
		for _, p := range result {
			if strings.Contains(strings.ToLower(p.Name), term) ||
				strings.Contains(strings.ToLower(p.Description), term) {
				matched = append(matched, p)
			}
		}
		result = matched
	}

	if c.selectedCategory != CategoryAll {
		matched := result[:0]
		for _, p := range result {
			if p.Category == c.selectedCategory {
				matched = append(matched, p)
			}
		}
		result = matched
	}

	// Stable sorts so ties keep their prior relative order.
	switch c.sortOption {
	case SortPriceLow:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Price < result[j].Price })
	case SortPriceHigh:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Price > result[j].Price })
	case SortNewest:
		sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	}

	c.filtered = result
}

// Products returns a copy of the full, unfiltered list.
func (c *CatalogStore) Products() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Product{}, c.all...)
}

// Filtered returns a copy of the current derived view.
func (c *CatalogStore) Filtered() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Product{}, c.filtered...)
}

// Categories returns the distinct categories in first-seen order.
func (c *CatalogStore) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.categories...)
}

// SearchTerm returns the current free-text filter.
func (c *CatalogStore) SearchTerm() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.searchTerm
}

// SetSearchTerm updates the case-insensitive substring filter matched
// against name or description.
func (c *CatalogStore) SetSearchTerm(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchTerm = term
	c.applyFilters()
}

// SetCategory updates the category filter; CategoryAll matches everything.
func (c *CatalogStore) SetCategory(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedCategory = category
	c.applyFilters()
}

// SetSortOption updates the sort applied after filtering.
func (c *CatalogStore) SetSortOption(option SortOption) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sortOption = option
	c.applyFilters()
}

// ProductByID looks the product up in the unfiltered full list. Cart and
// wishlist lines reference products that may be filtered out of the current
// view, so the lookup must bypass it.
func (c *CatalogStore) ProductByID(id string) *models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.all {
		if c.all[i].ID == id {
			p := c.all[i]
			return &p
		}
	}
	return nil
}
