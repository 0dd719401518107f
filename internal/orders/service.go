// Package orders owns the order lifecycle: creation from a booking draft,
// user mutation while pending, admin status advancement, reviews and
// reorders. Price fields are always derived through the pricing package.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sweetlayer/cakeshop/backend/internal/models"
	"github.com/sweetlayer/cakeshop/backend/internal/pricing"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrNotOwner        = errors.New("order belongs to another user")
	ErrNotPending      = errors.New("order can no longer be changed")
	ErrBadTransition   = errors.New("status transition not allowed")
	ErrAdminOnly       = errors.New("admin privileges required")
	ErrInvalidRating   = errors.New("rating must be an integer between 1 and 5")
	ErrReviewNotOpen   = errors.New("order cannot be reviewed in its current status")
	ErrNotReorderable  = errors.New("only delivered or cancelled orders can be reordered")
)

// ValidationError reports a missing or malformed booking field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// OrderRepository persists orders.
type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	Update(ctx context.Context, o *models.Order) error
}

// CouponRepository reads coupons and consumes them atomically. Consume must
// flip IsUsed only if it is currently false and return
// pricing.ErrCouponUsed otherwise, so that concurrent submissions of the
// same code yield exactly one winner.
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	Consume(ctx context.Context, code string, now time.Time) error
	Release(ctx context.Context, code string) error
}

// Catalog resolves products to their current catalog data.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// EventPublisher emits lifecycle events after a successful write. Publishing
// is best-effort; a publish failure never rolls back the write.
type EventPublisher interface {
	PublishOrderEvent(orderID, eventType string) error
	PublishReviewEvent(orderID, review string) error
}

// Identity is the opaque caller identity attached to every operation.
type Identity struct {
	UserID string
	Admin  bool
}

// Patch carries the fields a user may change on a pending order. Nil fields
// are left untouched.
type Patch struct {
	Phone        *string              `json:"phone,omitempty"`
	Address      *string              `json:"address,omitempty"`
	DeliveryDate *string              `json:"deliveryDate,omitempty"`
	DeliveryTime *string              `json:"deliveryTime,omitempty"`
	DeliveryType *models.DeliveryType `json:"deliveryType,omitempty"`
	Area         *string              `json:"area,omitempty"`
	Size         *int                 `json:"size,omitempty"`
	Instruction  *string              `json:"instruction,omitempty"`
}

// Service is the order lifecycle manager.
type Service struct {
	orders  OrderRepository
	coupons CouponRepository
	catalog Catalog
	events  EventPublisher // may be nil
	log     *slog.Logger
	now     func() time.Time
}

// NewService wires the lifecycle manager. events may be nil when no broker
// is configured.
func NewService(orders OrderRepository, coupons CouponRepository, catalog Catalog, events EventPublisher, log *slog.Logger) *Service {
	return &Service{
		orders:  orders,
		coupons: coupons,
		catalog: catalog,
		events:  events,
		log:     log,
		now:     time.Now,
	}
}

func validateDraft(d models.BookingDraft) error {
	switch {
	case d.ProductID == "":
		return &ValidationError{Field: "productId", Reason: "required"}
	case d.Size < 2 || d.Size > 12:
		return &ValidationError{Field: "size", Reason: "must be between 2 and 12 kg"}
	case !d.DeliveryType.Valid():
		return &ValidationError{Field: "deliveryType", Reason: "must be pickup or delivery"}
	case d.DeliveryDate == "":
		return &ValidationError{Field: "deliveryDate", Reason: "required"}
	case d.DeliveryTime == "":
		return &ValidationError{Field: "deliveryTime", Reason: "required"}
	case d.Area == "":
		return &ValidationError{Field: "area", Reason: "required"}
	case d.Address == "":
		return &ValidationError{Field: "address", Reason: "required"}
	case d.Phone == "":
		return &ValidationError{Field: "phone", Reason: "required"}
	}
	return nil
}

// Create validates the draft, prices it against the current catalog,
// consumes the coupon if one is supplied and persists a pending order. A
// failed coupon validation leaves the coupon untouched and creates nothing.
func (s *Service) Create(ctx context.Context, draft models.BookingDraft, userID string) (*models.Order, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	product, err := s.catalog.GetByID(ctx, draft.ProductID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	now := s.now()

	var coupon *models.Coupon
	if draft.CouponCode != "" {
		coupon, err = s.coupons.GetByCode(ctx, draft.CouponCode)
		if err != nil {
			return nil, err
		}
		if err := pricing.ValidateCoupon(coupon, userID, now); err != nil {
			return nil, err
		}
	}

	quote := pricing.QuoteOrder(product.Price, draft.Size, draft.DeliveryType, coupon)

	if coupon != nil {
		// Conditional flip: the repository succeeds for exactly one of any
		// set of concurrent submissions.
		if err := s.coupons.Consume(ctx, coupon.Code, now); err != nil {
			return nil, err
		}
	}

	order := &models.Order{
		ID:             uuid.New().String(),
		UserID:         userID,
		ProductID:      product.ID,
		ProductName:    product.Name,
		Size:           draft.Size,
		DeliveryType:   draft.DeliveryType,
		DeliveryDate:   draft.DeliveryDate,
		DeliveryTime:   draft.DeliveryTime,
		Area:           draft.Area,
		Address:        draft.Address,
		Phone:          draft.Phone,
		Instruction:    draft.Instruction,
		CustomizeImage: draft.CustomizeImage,
		OriginalPrice:  product.Price,
		SizeMultiplier: draft.Size,
		DeliveryCharge: quote.DeliveryCharge,
		DiscountAmount: quote.DiscountAmount,
		CouponCode:     draft.CouponCode,
		TotalPrice:     quote.Total,
		Status:         models.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if coupon != nil {
			if relErr := s.coupons.Release(ctx, coupon.Code); relErr != nil {
				s.log.Error("failed to release coupon after aborted order", "coupon", coupon.Code, "error", relErr)
			}
		}
		return nil, fmt.Errorf("persist order: %w", err)
	}

	s.publish(order.ID, "order.created")
	return order, nil
}

// Modify applies a whitelisted patch to a pending order owned by the
// caller. The delivery charge is recomputed when the delivery type changes;
// the discount and the snapshotted per-kg price are deliberately carried
// over from the original order.
func (s *Service) Modify(ctx context.Context, orderID string, actor Identity, patch Patch) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, orderID, actor)
	if err != nil {
		return nil, err
	}
	if order.Status != models.StatusPending {
		return nil, ErrNotPending
	}

	if patch.Size != nil {
		if *patch.Size < 2 || *patch.Size > 12 {
			return nil, &ValidationError{Field: "size", Reason: "must be between 2 and 12 kg"}
		}
		order.Size = *patch.Size
		order.SizeMultiplier = *patch.Size
	}
	if patch.DeliveryType != nil {
		if !patch.DeliveryType.Valid() {
			return nil, &ValidationError{Field: "deliveryType", Reason: "must be pickup or delivery"}
		}
		order.DeliveryType = *patch.DeliveryType
		order.DeliveryCharge = pricing.DeliveryCharge(*patch.DeliveryType)
	}
	if patch.Phone != nil {
		if *patch.Phone == "" {
			return nil, &ValidationError{Field: "phone", Reason: "required"}
		}
		order.Phone = *patch.Phone
	}
	if patch.Address != nil {
		if *patch.Address == "" {
			return nil, &ValidationError{Field: "address", Reason: "required"}
		}
		order.Address = *patch.Address
	}
	if patch.Area != nil {
		if *patch.Area == "" {
			return nil, &ValidationError{Field: "area", Reason: "required"}
		}
		order.Area = *patch.Area
	}
	if patch.DeliveryDate != nil {
		order.DeliveryDate = *patch.DeliveryDate
	}
	if patch.DeliveryTime != nil {
		order.DeliveryTime = *patch.DeliveryTime
	}
	if patch.Instruction != nil {
		order.Instruction = *patch.Instruction
	}

	base := pricing.BasePrice(order.OriginalPrice, order.Size)
	order.TotalPrice = pricing.Total(base, order.DeliveryCharge, order.DiscountAmount)
	order.UpdatedAt = s.now()

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	s.publish(order.ID, "order.updated")
	return order, nil
}

// Cancel sets a pending order to cancelled. Cancelling an already cancelled
// order is a no-op.
func (s *Service) Cancel(ctx context.Context, orderID string, actor Identity) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, orderID, actor)
	if err != nil {
		return nil, err
	}
	if order.Status == models.StatusCancelled {
		return order, nil
	}
	if order.Status != models.StatusPending {
		return nil, ErrNotPending
	}

	order.Status = models.StatusCancelled
	order.UpdatedAt = s.now()
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	s.publish(order.ID, "order.cancelled")
	return order, nil
}

// AdvanceStatus performs an admin-only forward transition. Any move not in
// the transition table is rejected.
func (s *Service) AdvanceStatus(ctx context.Context, orderID string, next models.OrderStatus, actor Identity, message string) (*models.Order, error) {
	if !actor.Admin {
		return nil, ErrAdminOnly
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if !CanTransition(order.Status, next) {
		return nil, ErrBadTransition
	}

	order.Status = next
	if message != "" {
		order.AdminMessage = message
	}
	order.UpdatedAt = s.now()
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	s.publish(order.ID, "order.status_changed")
	return order, nil
}

// AttachReview stores a rating and review text on an order the caller owns.
// Sentiment classification happens asynchronously off the review event and
// never blocks the write.
func (s *Service) AttachReview(ctx context.Context, orderID string, actor Identity, rating int, review string) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, orderID, actor)
	if err != nil {
		return nil, err
	}
	if !Reviewable(order.Status) {
		return nil, ErrReviewNotOpen
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	order.Rating = rating
	order.Review = review
	order.UpdatedAt = s.now()
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	if s.events != nil && review != "" {
		if err := s.events.PublishReviewEvent(order.ID, review); err != nil {
			s.log.Error("failed to publish review event", "order_id", order.ID, "error", err)
		}
	}
	return order, nil
}

// Reorder produces a fresh booking draft from a delivered or cancelled
// order. Identity fields are copied; price fields are re-derived from the
// current catalog, not the historical order.
func (s *Service) Reorder(ctx context.Context, orderID string, actor Identity) (*models.BookingDraft, error) {
	order, err := s.ownedOrder(ctx, orderID, actor)
	if err != nil {
		return nil, err
	}
	if order.Status != models.StatusDelivered && order.Status != models.StatusCancelled {
		return nil, ErrNotReorderable
	}

	product, err := s.catalog.GetByID(ctx, order.ProductID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	return &models.BookingDraft{
		ProductID:    product.ID,
		ProductName:  product.Name,
		PricePerKg:   product.Price,
		Size:         order.Size,
		Area:         order.Area,
		DeliveryType: order.DeliveryType,
		Instruction:  order.Instruction,
	}, nil
}

// Get returns an order visible to the caller. Admins see every order.
func (s *Service) Get(ctx context.Context, orderID string, actor Identity) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if !actor.Admin && order.UserID != actor.UserID {
		return nil, ErrNotOwner
	}
	return order, nil
}

// List returns the caller's orders.
func (s *Service) List(ctx context.Context, actor Identity) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, actor.UserID)
}

// AttachSentiment stores an asynchronously computed sentiment on an order.
// Called by the sentiment worker, not by users.
func (s *Service) AttachSentiment(ctx context.Context, orderID string, sentiment models.Sentiment) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return ErrOrderNotFound
	}
	order.Sentiment = &sentiment
	order.UpdatedAt = s.now()
	return s.orders.Update(ctx, order)
}

func (s *Service) ownedOrder(ctx context.Context, orderID string, actor Identity) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != actor.UserID {
		return nil, ErrNotOwner
	}
	return order, nil
}

func (s *Service) publish(orderID, eventType string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(orderID, eventType); err != nil {
		s.log.Error("failed to publish order event", "order_id", orderID, "event", eventType, "error", err)
	}
}
