package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/sweetlayer/cakeshop/backend/internal/models"
)

var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for catalog access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	FilterByName(ctx context.Context, nameContains string) ([]models.Product, error)
}

// InMemoryProductRepository implements ProductRepository with in-memory
// storage.
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]models.Product
}

// NewInMemoryProductRepository creates a catalog pre-seeded with the shop's
// standard range.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	products := map[string]models.Product{
		"1":  {ID: "1", Name: "Chocolate Truffle Cake", Price: 1100, Rating: 4.6, Category: "Chocolate"},
		"2":  {ID: "2", Name: "Black Forest Cake", Price: 950, Rating: 4.4, Category: "Chocolate"},
		"3":  {ID: "3", Name: "Vanilla Buttercream Cake", Price: 850, Rating: 4.1, Category: "Classic"},
		"4":  {ID: "4", Name: "Red Velvet Cake", Price: 1200, Rating: 4.7, Category: "Premium"},
		"5":  {ID: "5", Name: "Strawberry Cream Cake", Price: 1000, Rating: 4.2, Category: "Fruit"},
		"6":  {ID: "6", Name: "Mango Mousse Cake", Price: 1050, Rating: 4.3, Category: "Fruit"},
		"7":  {ID: "7", Name: "Butterscotch Cake", Price: 900, Rating: 4.0, Category: "Classic"},
		"8":  {ID: "8", Name: "Pineapple Cake", Price: 800, Rating: 3.9, Category: "Fruit"},
		"9":  {ID: "9", Name: "Coffee Walnut Cake", Price: 1150, Rating: 4.5, Category: "Premium"},
		"10": {ID: "10", Name: "Classic Cheesecake", Price: 1300, Rating: 4.8, Category: "Premium"},
	}

	return &InMemoryProductRepository{products: products}
}

// GetAll returns all products sorted by ID for stable output.
func (r *InMemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(r.products))
	for _, product := range r.products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// GetByID returns a product by its ID.
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// FilterByName returns products whose name contains the given text,
// case-insensitively. An empty filter returns the whole catalog.
func (r *InMemoryProductRepository) FilterByName(ctx context.Context, nameContains string) ([]models.Product, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if nameContains == "" {
		return all, nil
	}

	needle := strings.ToLower(nameContains)
	matches := make([]models.Product, 0, len(all))
	for _, product := range all {
		if strings.Contains(strings.ToLower(product.Name), needle) {
			matches = append(matches, product)
		}
	}
	return matches, nil
}
