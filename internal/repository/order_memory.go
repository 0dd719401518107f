package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/sweetlayer/cakeshop/backend/internal/models"
	"github.com/sweetlayer/cakeshop/backend/internal/orders"
)

// InMemoryOrderStore implements orders.OrderRepository with a mutex-guarded
// map. Copies go in and out so callers never share memory with the store.
type InMemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]models.Order
}

// NewInMemoryOrderStore creates an empty order store.
func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{orders: make(map[string]models.Order)}
}

// Create persists a new order.
func (s *InMemoryOrderStore) Create(ctx context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = *o
	return nil
}

// GetByID returns a copy of the order with the given ID.
func (s *InMemoryOrderStore) GetByID(ctx context.Context, id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first.
func (s *InMemoryOrderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Update overwrites an existing order.
func (s *InMemoryOrderStore) Update(ctx context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; !ok {
		return orders.ErrOrderNotFound
	}
	s.orders[o.ID] = *o
	return nil
}
