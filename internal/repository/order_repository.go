package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"karat/internal/domain"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository persists order lines. Both writes in the order lifecycle
// key on (stripe_session_id, line_index): the initiator inserts pending
// stubs, the webhook upserts them to paid.
type OrderRepository interface {
	InsertPending(ctx context.Context, order *domain.Order) error
	// SavePaid upserts every order line of one session inside a single
	// transaction. A failure rolls the whole batch back, and redelivered
	// webhooks land on the same rows instead of duplicating them.
	SavePaid(ctx context.Context, orders []*domain.Order) error
	FindBySession(ctx context.Context, sessionID string) ([]*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// InsertPending writes one pre-payment order stub.
func (r *orderRepository) InsertPending(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (
			id, stripe_session_id, line_index, product_id, source_table,
			product_details, selected_size, selected_length, quantity, amount,
			status, guest_email
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (stripe_session_id, line_index) DO NOTHING
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.StripeSessionID,
		order.LineIndex,
		order.ProductID,
		order.SourceTable,
		[]byte(order.ProductDetails),
		nullable(order.SelectedSize),
		nullable(order.SelectedLength),
		order.Quantity,
		order.Amount,
		domain.OrderStatusPending,
		order.GuestEmail,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pending order: %w", err)
	}

	return nil
}

// SavePaid upserts the finalized order lines of one session transactionally.
func (r *orderRepository) SavePaid(ctx context.Context, orders []*domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (
			id, stripe_session_id, line_index, product_id, source_table,
			product_details, selected_size, selected_length, quantity, amount,
			status, guest_email, customer_details, shipping_details, payment_intent_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (stripe_session_id, line_index) DO UPDATE SET
			product_id = EXCLUDED.product_id,
			source_table = EXCLUDED.source_table,
			product_details = EXCLUDED.product_details,
			selected_size = EXCLUDED.selected_size,
			selected_length = EXCLUDED.selected_length,
			quantity = EXCLUDED.quantity,
			amount = EXCLUDED.amount,
			status = EXCLUDED.status,
			guest_email = EXCLUDED.guest_email,
			customer_details = EXCLUDED.customer_details,
			shipping_details = EXCLUDED.shipping_details,
			payment_intent_id = EXCLUDED.payment_intent_id
	`

	for _, order := range orders {
		if order.ID == uuid.Nil {
			order.ID = uuid.New()
		}
		_, err := tx.ExecContext(
			ctx,
			query,
			order.ID,
			order.StripeSessionID,
			order.LineIndex,
			order.ProductID,
			nullable(order.SourceTable),
			[]byte(order.ProductDetails),
			nullable(order.SelectedSize),
			nullable(order.SelectedLength),
			order.Quantity,
			order.Amount,
			domain.OrderStatusPaid,
			order.GuestEmail,
			nullableJSON(order.CustomerDetails),
			nullableJSON(order.ShippingDetails),
			nullable(order.PaymentIntentID),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert order line %d: %w", order.LineIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit orders: %w", err)
	}

	return nil
}

// FindBySession returns all order lines of a checkout session in line order.
func (r *orderRepository) FindBySession(ctx context.Context, sessionID string) ([]*domain.Order, error) {
	query := `
		SELECT id, stripe_session_id, line_index, product_id,
		       COALESCE(source_table, ''), product_details,
		       COALESCE(selected_size, ''), COALESCE(selected_length, ''),
		       quantity, amount, status, COALESCE(guest_email, ''),
		       COALESCE(customer_details, 'null'::JSONB),
		       COALESCE(shipping_details, 'null'::JSONB),
		       COALESCE(payment_intent_id, ''), created_at, updated_at
		FROM orders
		WHERE stripe_session_id = $1
		ORDER BY line_index
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		var productDetails, customerDetails, shippingDetails []byte
		err := rows.Scan(
			&order.ID, &order.StripeSessionID, &order.LineIndex, &order.ProductID,
			&order.SourceTable, &productDetails,
			&order.SelectedSize, &order.SelectedLength,
			&order.Quantity, &order.Amount, &order.Status, &order.GuestEmail,
			&customerDetails, &shippingDetails,
			&order.PaymentIntentID, &order.CreatedAt, &order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		order.ProductDetails = productDetails
		order.CustomerDetails = customerDetails
		order.ShippingDetails = shippingDetails
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
