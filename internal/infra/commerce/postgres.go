package commerce

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"wabalerts/internal/common"
	"wabalerts/internal/domain/notification"

	_ "github.com/lib/pq"
)

var _ notification.CommerceSource = (*PostgresSource)(nil)

const (
	orderQuery = `SELECT id, status, total, currency, created_at,
		billing_first_name, billing_last_name, billing_email, billing_phone
		FROM orders WHERE id = $1`

	orderItemsQuery = `SELECT name, item_type FROM order_items
		WHERE order_id = $1 ORDER BY position, id`

	userQuery = `SELECT id, first_name, last_name, display_name, phone
		FROM users WHERE id = $1`

	productQuery = `SELECT id, title FROM products WHERE id = $1`
)

// PoolConfig tunes the connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresSource reads orders, users and products from the shop database.
type PostgresSource struct {
	db *sql.DB
}

// Open connects to the shop database.
func Open(dsn string, pool PoolConfig) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	return NewPostgresSource(db), nil
}

// NewPostgresSource wraps an existing connection.
func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// Ping tests the database connection.
func (s *PostgresSource) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}

// Order loads an order with its items in display order.
func (s *PostgresSource) Order(ctx context.Context, id int64) (*notification.Order, error) {
	var o notification.Order
	err := s.db.QueryRowContext(ctx, orderQuery, id).Scan(
		&o.ID, &o.Status, &o.Total, &o.Currency, &o.CreatedAt,
		&o.Billing.FirstName, &o.Billing.LastName, &o.Billing.Email, &o.Billing.Phone,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewNotFoundError("order", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, orderItemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item notification.LineItem
		if err := rows.Scan(&item.Name, &item.Type); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order items: %w", err)
	}

	return &o, nil
}

// User loads a customer account.
func (s *PostgresSource) User(ctx context.Context, id int64) (*notification.User, error) {
	var u notification.User
	err := s.db.QueryRowContext(ctx, userQuery, id).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.DisplayName, &u.Phone,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewNotFoundError("user", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// Product loads a catalogue entry.
func (s *PostgresSource) Product(ctx context.Context, id int64) (*notification.Product, error) {
	var p notification.Product
	err := s.db.QueryRowContext(ctx, productQuery, id).Scan(&p.ID, &p.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewNotFoundError("product", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product: %w", err)
	}
	return &p, nil
}
