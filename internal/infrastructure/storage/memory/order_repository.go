// Package memory provides an in-process order repository used by tests, the
// CLI, and deployments that run without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/orderflow/intake/internal/domain/order"
	"github.com/orderflow/intake/pkg/errors"
)

// OrderRepository stores orders in a map guarded by a mutex. Save is an
// upsert keyed by order ID, so re-processing an email replaces its earlier
// result.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]order.Order
	seq    map[string]int // insertion order for stable listing
	next   int
}

// NewOrderRepository returns an empty repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]order.Order),
		seq:    make(map[string]int),
	}
}

// Save stores or replaces the order.
func (r *OrderRepository) Save(_ context.Context, o *order.Order) error {
	if o == nil || o.ID == "" {
		return errors.InvalidParam("order id must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[o.ID]; !exists {
		r.seq[o.ID] = r.next
		r.next++
	}
	r.orders[o.ID] = *o
	return nil
}

// Get returns the order with the given ID.
func (r *OrderRepository) Get(_ context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeOrderNotFound, "order not found").WithDetail(id)
	}
	return &o, nil
}

// List returns all orders, most recently stored first.
func (r *OrderRepository) List(_ context.Context) ([]*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*order.Order, 0, len(r.orders))
	for id := range r.orders {
		o := r.orders[id]
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool {
		return r.seq[out[i].ID] > r.seq[out[j].ID]
	})
	return out, nil
}

// UpdateStatus transitions an order. Only pending orders may be approved.
func (r *OrderRepository) UpdateStatus(_ context.Context, id string, status order.Status) (*order.Order, error) {
	if !status.Valid() {
		return nil, errors.InvalidParam("unknown order status").WithDetail(string(status))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeOrderNotFound, "order not found").WithDetail(id)
	}
	if status == order.StatusApproved && o.Status != order.StatusPending {
		return nil, errors.New(errors.ErrCodeOrderStateInvalid,
			"only pending orders can be approved").WithDetail(id)
	}
	o.Status = status
	r.orders[id] = o
	return &o, nil
}
