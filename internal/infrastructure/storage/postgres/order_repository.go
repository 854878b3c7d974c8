package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orderflow/intake/internal/domain/order"
	"github.com/orderflow/intake/pkg/errors"
)

// OrderRepository stores orders in the orders table. Item lines and
// validation issues are kept as JSONB documents; they are always read and
// written as a whole, never queried into.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns a repository over pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const saveOrderSQL = `
INSERT INTO orders (
	id, customer_email, items, confidence_score, validation_issues,
	delivery_address, delivery_date, delivery_instructions,
	notes, status, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET
	customer_email = EXCLUDED.customer_email,
	items = EXCLUDED.items,
	confidence_score = EXCLUDED.confidence_score,
	validation_issues = EXCLUDED.validation_issues,
	delivery_address = EXCLUDED.delivery_address,
	delivery_date = EXCLUDED.delivery_date,
	delivery_instructions = EXCLUDED.delivery_instructions,
	notes = EXCLUDED.notes,
	status = EXCLUDED.status,
	created_at = EXCLUDED.created_at`

// Save upserts the order keyed by ID.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	if o == nil || o.ID == "" {
		return errors.InvalidParam("order id must not be empty")
	}

	items, err := json.Marshal(o.Items)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal order items")
	}
	issues, err := json.Marshal(o.ValidationIssues)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal validation issues")
	}

	_, err = r.pool.Exec(ctx, saveOrderSQL,
		o.ID, o.CustomerEmail, items, o.ConfidenceScore, issues,
		o.Delivery.Address, o.Delivery.Date, o.Delivery.Instructions,
		o.Notes, string(o.Status), o.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "save order")
	}
	return nil
}

const selectOrderSQL = `
SELECT id, customer_email, items, confidence_score, validation_issues,
       delivery_address, delivery_date, delivery_instructions,
       notes, status, created_at
FROM orders`

// Get returns the order with the given ID.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	row := r.pool.QueryRow(ctx, selectOrderSQL+" WHERE id = $1", id)
	o, err := scanOrder(row)
	if err == pgx.ErrNoRows {
		return nil, errors.New(errors.ErrCodeOrderNotFound, "order not found").WithDetail(id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "get order")
	}
	return o, nil
}

// List returns all orders, most recently created first.
func (r *OrderRepository) List(ctx context.Context) ([]*order.Order, error) {
	rows, err := r.pool.Query(ctx, selectOrderSQL+" ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "list orders")
	}
	defer rows.Close()

	var out []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan order")
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterate orders")
	}
	return out, nil
}

// UpdateStatus transitions an order; only pending orders may be approved.
// The transition guard runs inside the UPDATE so concurrent approvals cannot
// both succeed.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	if !status.Valid() {
		return nil, errors.InvalidParam("unknown order status").WithDetail(string(status))
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1 AND status = $3`,
		id, string(status), string(order.StatusPending))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "update order status")
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing order from an illegal transition.
		if _, err := r.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, errors.New(errors.ErrCodeOrderStateInvalid,
			"only pending orders can be approved").WithDetail(id)
	}
	return r.Get(ctx, id)
}

// scanOrder reads one row in selectOrderSQL column order.
func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o      order.Order
		items  []byte
		issues []byte
		status string
	)
	err := row.Scan(
		&o.ID, &o.CustomerEmail, &items, &o.ConfidenceScore, &issues,
		&o.Delivery.Address, &o.Delivery.Date, &o.Delivery.Instructions,
		&o.Notes, &status, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(issues, &o.ValidationIssues); err != nil {
		return nil, err
	}
	o.Status = order.Status(status)
	return &o, nil
}
