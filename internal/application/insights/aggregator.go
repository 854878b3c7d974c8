// Package insights accumulates processed orders and derives ordering
// patterns from them: co-ordered product pairs, per-customer statistics, and
// order volume over time. The aggregator is the only mutable cross-order
// state in the system and serializes all access itself.
//
// The aggregator holds its counters in memory. Deployments with a durable
// order store must call Rehydrate at startup, or insights will cover only
// orders processed since the last restart.
package insights

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/orderflow/intake/internal/domain/order"
	"github.com/orderflow/intake/pkg/errors"
)

// DefaultMinPairOccurrences is the floor for reporting a product pair as
// commonly ordered together.
const DefaultMinPairOccurrences = 2

// DefaultPeriodDays is the window for time-based insights.
const DefaultPeriodDays = 30

const dateLayout = "2006-01-02"

// ProductPair is a pair of SKUs that appeared together in at least
// min-occurrences orders. Products are sorted lexically so the pair is a
// stable key.
type ProductPair struct {
	Products    [2]string `json:"products"`
	Occurrences int       `json:"occurrences"`
}

// CustomerInsight summarizes one customer/address combination.
type CustomerInsight struct {
	CustomerEmail        string  `json:"customer_email"`
	Address              string  `json:"address"`
	OrderCount           int     `json:"order_count"`
	TotalItems           int     `json:"total_items"`
	AverageItemsPerOrder float64 `json:"average_items_per_order"`
}

// TimeInsights summarizes order volume whose delivery dates fall inside the
// reporting window.
type TimeInsights struct {
	TotalOrders         int            `json:"total_orders"`
	AverageOrdersPerDay float64        `json:"average_orders_per_day"`
	DailyOrderCounts    map[string]int `json:"daily_order_counts"`
}

// ProductCount is a SKU with its cumulative ordered quantity.
type ProductCount struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// Report is the full insights export.
type Report struct {
	CommonProducts      []ProductPair     `json:"common_products"`
	CustomerInsights    []CustomerInsight `json:"customer_insights"`
	TimeInsights        TimeInsights      `json:"time_based_insights"`
	TotalOrders         int               `json:"total_orders"`
	TotalCustomers      int               `json:"total_customers"`
	MostOrderedProducts []ProductCount    `json:"most_ordered_products"`
	WeeklyOrderCounts   map[string]int    `json:"weekly_order_counts"`
}

// MergedItem is one line of a merged order.
type MergedItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// MergeSource identifies an order that contributed to a merge.
type MergeSource struct {
	ID            string `json:"id"`
	CustomerEmail string `json:"customer_email"`
	DeliveryDate  string `json:"delivery_date"`
}

// MergeResult combines several orders into one consolidated line set with
// the latest delivery date and concatenated notes.
type MergeResult struct {
	Items          []MergedItem  `json:"items"`
	DeliveryDate   string        `json:"delivery_date"`
	Notes          string        `json:"notes"`
	OriginalOrders []MergeSource `json:"original_orders"`
}

// Aggregator accumulates orders and maintains incremental pattern counters.
// All methods are safe for concurrent use.
type Aggregator struct {
	mu sync.RWMutex

	orders           []order.Order
	productQuantity  map[string]int
	customerOrders   map[string]int
	weeklyOrderCount map[string]int

	now func() time.Time
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithNow injects the clock that anchors the time-based reporting window.
func WithNow(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// NewAggregator returns an empty Aggregator.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		productQuantity:  make(map[string]int),
		customerOrders:   make(map[string]int),
		weeklyOrderCount: make(map[string]int),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Add records an order and updates the pattern counters.
func (a *Aggregator) Add(o *order.Order) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.orders = append(a.orders, *o)

	for _, item := range o.Items {
		a.productQuantity[item.SKU] += item.Quantity
	}
	a.customerOrders[customerKey(o)]++
	if t, err := time.Parse(dateLayout, o.Delivery.Date); err == nil {
		year, week := t.ISOWeek()
		a.weeklyOrderCount[fmt.Sprintf("%d-W%02d", year, week)]++
	}
}

// Rehydrate replays every stored order into the aggregator. It is meant to
// run once at startup when the order store outlives the process.
func (a *Aggregator) Rehydrate(ctx context.Context, repo order.Repository) error {
	orders, err := repo.List(ctx)
	if err != nil {
		return err
	}
	for _, o := range orders {
		a.Add(o)
	}
	return nil
}

// CommonProducts returns SKU pairs co-ordered in at least minOccurrences
// orders, sorted by occurrences descending and pair key ascending.
func (a *Aggregator) CommonProducts(minOccurrences int) []ProductPair {
	if minOccurrences <= 0 {
		minOccurrences = DefaultMinPairOccurrences
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.commonProductsLocked(minOccurrences)
}

// commonProductsLocked assumes a.mu is held.
func (a *Aggregator) commonProductsLocked(minOccurrences int) []ProductPair {
	pairCounts := make(map[[2]string]int)
	for _, o := range a.orders {
		for i := 0; i < len(o.Items); i++ {
			for j := i + 1; j < len(o.Items); j++ {
				pair := [2]string{o.Items[i].SKU, o.Items[j].SKU}
				if pair[0] > pair[1] {
					pair[0], pair[1] = pair[1], pair[0]
				}
				pairCounts[pair]++
			}
		}
	}

	var out []ProductPair
	for pair, count := range pairCounts {
		if count >= minOccurrences {
			out = append(out, ProductPair{Products: pair, Occurrences: count})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Occurrences != out[j].Occurrences {
			return out[i].Occurrences > out[j].Occurrences
		}
		return out[i].Products[0] < out[j].Products[0]
	})
	return out
}

// CustomerInsights summarizes every customer/address combination seen so
// far, sorted by customer then address.
func (a *Aggregator) CustomerInsights() []CustomerInsight {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.customerInsightsLocked()
}

// customerInsightsLocked assumes a.mu is held.
func (a *Aggregator) customerInsightsLocked() []CustomerInsight {
	type agg struct {
		orders int
		items  int
	}
	buckets := make(map[string]*agg)
	for _, o := range a.orders {
		key := customerKey(&o)
		b, ok := buckets[key]
		if !ok {
			b = &agg{}
			buckets[key] = b
		}
		b.orders++
		for _, item := range o.Items {
			b.items += item.Quantity
		}
	}

	out := make([]CustomerInsight, 0, len(buckets))
	for key, b := range buckets {
		email, address, _ := strings.Cut(key, "\x00")
		out = append(out, CustomerInsight{
			CustomerEmail:        email,
			Address:              address,
			OrderCount:           b.orders,
			TotalItems:           b.items,
			AverageItemsPerOrder: float64(b.items) / float64(b.orders),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CustomerEmail != out[j].CustomerEmail {
			return out[i].CustomerEmail < out[j].CustomerEmail
		}
		return out[i].Address < out[j].Address
	})
	return out
}

// TimeBasedInsights counts orders whose delivery date falls within the last
// `days` days of the aggregator's clock. Orders without a parseable
// delivery date are excluded.
func (a *Aggregator) TimeBasedInsights(days int) TimeInsights {
	if days <= 0 {
		days = DefaultPeriodDays
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.timeBasedInsightsLocked(days)
}

// timeBasedInsightsLocked assumes a.mu is held.
func (a *Aggregator) timeBasedInsightsLocked(days int) TimeInsights {
	end := a.now()
	start := end.AddDate(0, 0, -days)

	daily := make(map[string]int)
	total := 0
	for _, o := range a.orders {
		t, err := time.Parse(dateLayout, o.Delivery.Date)
		if err != nil {
			continue
		}
		if t.Before(start) || t.After(end) {
			continue
		}
		daily[o.Delivery.Date]++
		total++
	}

	return TimeInsights{
		TotalOrders:         total,
		AverageOrdersPerDay: float64(total) / float64(days),
		DailyOrderCounts:    daily,
	}
}

// Merge consolidates the identified orders: quantities are summed per SKU,
// the latest delivery date wins, and notes are concatenated. Unknown IDs
// are ignored; if none resolve, Merge fails with a not-found error.
func (a *Aggregator) Merge(orderIDs []string) (*MergeResult, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	wanted := make(map[string]bool, len(orderIDs))
	for _, id := range orderIDs {
		wanted[id] = true
	}

	var selected []order.Order
	for _, o := range a.orders {
		if wanted[o.ID] {
			selected = append(selected, o)
		}
	}
	if len(selected) == 0 {
		return nil, errors.NotFound("no orders found with the provided IDs")
	}

	quantities := make(map[string]int)
	var skus []string
	latest := ""
	var noteParts []string
	sources := make([]MergeSource, 0, len(selected))
	for _, o := range selected {
		for _, item := range o.Items {
			if _, seen := quantities[item.SKU]; !seen {
				skus = append(skus, item.SKU)
			}
			quantities[item.SKU] += item.Quantity
		}
		if o.Delivery.Date > latest {
			latest = o.Delivery.Date
		}
		if o.Notes != "" {
			noteParts = append(noteParts, o.Notes)
		}
		sources = append(sources, MergeSource{
			ID:            o.ID,
			CustomerEmail: o.CustomerEmail,
			DeliveryDate:  o.Delivery.Date,
		})
	}

	items := make([]MergedItem, 0, len(skus))
	for _, sku := range skus {
		items = append(items, MergedItem{SKU: sku, Quantity: quantities[sku]})
	}

	return &MergeResult{
		Items:          items,
		DeliveryDate:   latest,
		Notes:          strings.Join(noteParts, "\n"),
		OriginalOrders: sources,
	}, nil
}

// Export assembles the full report with default thresholds. Every section is
// computed under one read lock so the report is a consistent snapshot even
// while orders are being added concurrently.
func (a *Aggregator) Export() Report {
	a.mu.RLock()
	defer a.mu.RUnlock()

	top := make([]ProductCount, 0, len(a.productQuantity))
	for sku, qty := range a.productQuantity {
		top = append(top, ProductCount{SKU: sku, Quantity: qty})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Quantity != top[j].Quantity {
			return top[i].Quantity > top[j].Quantity
		}
		return top[i].SKU < top[j].SKU
	})
	if len(top) > 10 {
		top = top[:10]
	}

	weekly := make(map[string]int, len(a.weeklyOrderCount))
	for k, v := range a.weeklyOrderCount {
		weekly[k] = v
	}

	return Report{
		CommonProducts:      a.commonProductsLocked(DefaultMinPairOccurrences),
		CustomerInsights:    a.customerInsightsLocked(),
		TimeInsights:        a.timeBasedInsightsLocked(DefaultPeriodDays),
		TotalOrders:         len(a.orders),
		TotalCustomers:      len(a.customerOrders),
		MostOrderedProducts: top,
		WeeklyOrderCounts:   weekly,
	}
}

// customerKey joins customer and address with a separator that cannot occur
// in either field.
func customerKey(o *order.Order) string {
	return o.CustomerEmail + "\x00" + o.Delivery.Address
}
