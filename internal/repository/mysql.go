package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/sweetlayer/cakeshop/backend/internal/models"
	"github.com/sweetlayer/cakeshop/backend/internal/orders"
	"github.com/sweetlayer/cakeshop/backend/internal/pricing"
)

// OpenMySQL opens and pings a MySQL connection pool.
func OpenMySQL(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

// MySQLOrderStore implements orders.OrderRepository on MySQL.
type MySQLOrderStore struct {
	db *sql.DB
}

// NewMySQLOrderStore wraps a database handle.
func NewMySQLOrderStore(db *sql.DB) *MySQLOrderStore {
	return &MySQLOrderStore{db: db}
}

const orderColumns = `id, user_id, product_id, product_name, size, delivery_type,
	delivery_date, delivery_time, area, address, phone, instruction,
	customize_image, original_price, size_multiplier, delivery_charge,
	discount_amount, coupon_code, total_price, status, rating, review,
	sentiment_label, sentiment_score, admin_message, created_at, updated_at`

// Create inserts a new order row.
func (s *MySQLOrderStore) Create(ctx context.Context, o *models.Order) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.ProductID, o.ProductName, o.Size, string(o.DeliveryType),
		o.DeliveryDate, o.DeliveryTime, o.Area, o.Address, o.Phone, nullString(o.Instruction),
		nullString(o.CustomizeImage), o.OriginalPrice, o.SizeMultiplier, o.DeliveryCharge,
		o.DiscountAmount, nullString(o.CouponCode), o.TotalPrice, string(o.Status),
		nullInt(o.Rating), nullString(o.Review), nil, nil, nullString(o.AdminMessage),
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID loads a single order.
func (s *MySQLOrderStore) GetByID(ctx context.Context, id string) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, orders.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}
	return o, nil
}

// ListByUser loads a user's orders, newest first.
func (s *MySQLOrderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// Update overwrites every mutable column of an existing order.
func (s *MySQLOrderStore) Update(ctx context.Context, o *models.Order) error {
	var label interface{}
	var score interface{}
	if o.Sentiment != nil {
		label = o.Sentiment.Label
		score = o.Sentiment.Score
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET
			size = ?, delivery_type = ?, delivery_date = ?, delivery_time = ?,
			area = ?, address = ?, phone = ?, instruction = ?,
			size_multiplier = ?, delivery_charge = ?, total_price = ?,
			status = ?, rating = ?, review = ?, sentiment_label = ?,
			sentiment_score = ?, admin_message = ?, updated_at = ?
		WHERE id = ?`,
		o.Size, string(o.DeliveryType), o.DeliveryDate, o.DeliveryTime,
		o.Area, o.Address, o.Phone, nullString(o.Instruction),
		o.SizeMultiplier, o.DeliveryCharge, o.TotalPrice,
		string(o.Status), nullInt(o.Rating), nullString(o.Review), label,
		score, nullString(o.AdminMessage), o.UpdatedAt,
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// Either missing or identical values; confirm existence.
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = ?`, o.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return orders.ErrOrderNotFound
			}
			return fmt.Errorf("check order: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(r rowScanner) (*models.Order, error) {
	var (
		o              models.Order
		deliveryType   string
		status         string
		instruction    sql.NullString
		customizeImage sql.NullString
		couponCode     sql.NullString
		rating         sql.NullInt64
		review         sql.NullString
		label          sql.NullString
		score          sql.NullFloat64
		adminMessage   sql.NullString
	)

	err := r.Scan(
		&o.ID, &o.UserID, &o.ProductID, &o.ProductName, &o.Size, &deliveryType,
		&o.DeliveryDate, &o.DeliveryTime, &o.Area, &o.Address, &o.Phone, &instruction,
		&customizeImage, &o.OriginalPrice, &o.SizeMultiplier, &o.DeliveryCharge,
		&o.DiscountAmount, &couponCode, &o.TotalPrice, &status,
		&rating, &review, &label, &score, &adminMessage,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.DeliveryType = models.DeliveryType(deliveryType)
	o.Status = models.OrderStatus(status)
	o.Instruction = instruction.String
	o.CustomizeImage = customizeImage.String
	o.CouponCode = couponCode.String
	o.Rating = int(rating.Int64)
	o.Review = review.String
	o.AdminMessage = adminMessage.String
	if label.Valid {
		o.Sentiment = &models.Sentiment{Label: label.String, Score: score.Float64}
	}
	return &o, nil
}

// MySQLCouponStore implements orders.CouponRepository on MySQL.
type MySQLCouponStore struct {
	db *sql.DB
}

// NewMySQLCouponStore wraps a database handle.
func NewMySQLCouponStore(db *sql.DB) *MySQLCouponStore {
	return &MySQLCouponStore{db: db}
}

// GetByCode loads a coupon.
func (s *MySQLCouponStore) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var (
		c         models.Coupon
		message   sql.NullString
		usedAt    sql.NullTime
		expiresAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT code, message, discount_percent, user_id, is_used, used_at, expires_at, created_at
		FROM coupons WHERE code = ?`, code).Scan(
		&c.Code, &message, &c.DiscountPercent, &c.UserID, &c.IsUsed, &usedAt, &expiresAt, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pricing.ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select coupon: %w", err)
	}

	c.Message = message.String
	if usedAt.Valid {
		t := usedAt.Time
		c.UsedAt = &t
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		c.ExpiresAt = &t
	}
	return &c, nil
}

// Consume marks the coupon used only if it is currently unused. The
// conditional WHERE clause makes concurrent redemptions yield exactly one
// winner without a read-modify-write.
func (s *MySQLCouponStore) Consume(ctx context.Context, code string, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE coupons SET is_used = 1, used_at = ? WHERE code = ? AND is_used = 0`,
		now, code)
	if err != nil {
		return fmt.Errorf("consume coupon: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	// Nothing flipped: the code is either unknown or already used.
	var isUsed bool
	err = s.db.QueryRowContext(ctx, `SELECT is_used FROM coupons WHERE code = ?`, code).Scan(&isUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.ErrCouponNotFound
	}
	if err != nil {
		return fmt.Errorf("check coupon: %w", err)
	}
	return pricing.ErrCouponUsed
}

// Release undoes a consumption after an aborted order creation.
func (s *MySQLCouponStore) Release(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE coupons SET is_used = 0, used_at = NULL WHERE code = ? AND is_used = 1`, code)
	if err != nil {
		return fmt.Errorf("release coupon: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return pricing.ErrCouponNotFound
	}
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}
