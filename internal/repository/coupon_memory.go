package repository

import (
	"context"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/sweetlayer/cakeshop/backend/internal/models"
	"github.com/sweetlayer/cakeshop/backend/internal/pricing"
)

// InMemoryCouponStore holds coupons in memory. A bloom filter answers the
// common "unknown code" case without taking the lock; the map under the
// mutex is authoritative.
type InMemoryCouponStore struct {
	mu      sync.Mutex
	coupons map[string]*models.Coupon
	filter  *bloom.BloomFilter
}

// NewInMemoryCouponStore creates a coupon store seeded with the given
// coupons.
func NewInMemoryCouponStore(seed ...models.Coupon) *InMemoryCouponStore {
	s := &InMemoryCouponStore{
		coupons: make(map[string]*models.Coupon, len(seed)),
		filter:  bloom.NewWithEstimates(100_000, 0.01),
	}
	for i := range seed {
		c := seed[i]
		s.coupons[c.Code] = &c
		s.filter.AddString(c.Code)
	}
	return s
}

// Add registers a new coupon.
func (s *InMemoryCouponStore) Add(ctx context.Context, c models.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupons[c.Code] = &c
	s.filter.AddString(c.Code)
	return nil
}

// GetByCode returns a copy of the coupon with the given code.
func (s *InMemoryCouponStore) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if !s.filter.TestString(code) {
		return nil, pricing.ErrCouponNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.coupons[code]
	if !ok {
		// Bloom false positive.
		return nil, pricing.ErrCouponNotFound
	}
	cp := *c
	return &cp, nil
}

// Consume flips IsUsed to true only if it is currently false. Exactly one of
// any set of concurrent callers succeeds; the rest get
// pricing.ErrCouponUsed.
func (s *InMemoryCouponStore) Consume(ctx context.Context, code string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.coupons[code]
	if !ok {
		return pricing.ErrCouponNotFound
	}
	if c.IsUsed {
		return pricing.ErrCouponUsed
	}
	c.IsUsed = true
	c.UsedAt = &now
	return nil
}

// Release undoes a consumption after an aborted order creation.
func (s *InMemoryCouponStore) Release(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.coupons[code]
	if !ok {
		return pricing.ErrCouponNotFound
	}
	c.IsUsed = false
	c.UsedAt = nil
	return nil
}
