package order

import "context"

// Repository persists extracted orders.  Implementations must treat Save as
// an upsert keyed by Order.ID so that re-processing the same email replaces
// the earlier result instead of duplicating it.
type Repository interface {
	// Save stores or replaces the order.
	Save(ctx context.Context, o *Order) error

	// Get returns the order with the given ID, or a not-found error.
	Get(ctx context.Context, id string) (*Order, error)

	// List returns all stored orders, most recently created first.
	List(ctx context.Context) ([]*Order, error)

	// UpdateStatus transitions an order to the given status.  It returns a
	// not-found error for unknown IDs and a conflict error when the
	// transition is not allowed (only pending orders may be approved).
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
}
