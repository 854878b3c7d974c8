package insights

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderflow/intake/internal/domain/order"
	"github.com/orderflow/intake/internal/infrastructure/storage/memory"
	"github.com/orderflow/intake/pkg/errors"
)

func aggNow() time.Time {
	return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
}

func makeOrder(id, customer, address, date string, items ...order.OrderItem) *order.Order {
	return &order.Order{
		ID:            id,
		CustomerEmail: customer,
		Items:         items,
		Delivery:      order.DeliveryDetails{Address: address, Date: date},
		Status:        order.StatusPending,
	}
}

func item(sku string, qty int) order.OrderItem {
	return order.OrderItem{SKU: sku, Quantity: qty, ConfidenceScore: 1.0}
}

func TestCommonProducts(t *testing.T) {
	a := NewAggregator(WithNow(aggNow))

	a.Add(makeOrder("ORD-1", "a@example.com", "addr", "2024-03-10", item("ABC-123", 5), item("DEF-456", 20)))
	a.Add(makeOrder("ORD-2", "b@example.com", "addr", "2024-03-11", item("ABC-123", 2), item("DEF-456", 30)))
	a.Add(makeOrder("ORD-3", "c@example.com", "addr", "2024-03-12", item("ABC-123", 1), item("GHI-789", 5)))

	pairs := a.CommonProducts(2)
	require.Len(t, pairs, 1)
	assert.Equal(t, [2]string{"ABC-123", "DEF-456"}, pairs[0].Products)
	assert.Equal(t, 2, pairs[0].Occurrences)
}

func TestCommonProductsPairKeyIsSorted(t *testing.T) {
	a := NewAggregator(WithNow(aggNow))

	// Same pair in both item orders must count as one key.
	a.Add(makeOrder("ORD-1", "a@example.com", "addr", "2024-03-10", item("DEF-456", 1), item("ABC-123", 1)))
	a.Add(makeOrder("ORD-2", "a@example.com", "addr", "2024-03-10", item("ABC-123", 1), item("DEF-456", 1)))

	pairs := a.CommonProducts(2)
	require.Len(t, pairs, 1)
	assert.Equal(t, [2]string{"ABC-123", "DEF-456"}, pairs[0].Products)
}

func TestCustomerInsights(t *testing.T) {
	a := NewAggregator(WithNow(aggNow))

	a.Add(makeOrder("ORD-1", "a@example.com", "1 Main St", "2024-03-10", item("ABC-123", 5)))
	a.Add(makeOrder("ORD-2", "a@example.com", "1 Main St", "2024-03-11", item("ABC-123", 15)))
	a.Add(makeOrder("ORD-3", "a@example.com", "9 Oak Ave", "2024-03-11", item("DEF-456", 20)))

	got := a.CustomerInsights()
	require.Len(t, got, 2)

	assert.Equal(t, CustomerInsight{
		CustomerEmail:        "a@example.com",
		Address:              "1 Main St",
		OrderCount:           2,
		TotalItems:           20,
		AverageItemsPerOrder: 10,
	}, got[0])
	assert.Equal(t, "9 Oak Ave", got[1].Address)
	assert.Equal(t, 1, got[1].OrderCount)
}

func TestTimeBasedInsights(t *testing.T) {
	a := NewAggregator(WithNow(aggNow))

	a.Add(makeOrder("ORD-1", "a@example.com", "addr", "2024-03-10", item("ABC-123", 5)))
	a.Add(makeOrder("ORD-2", "b@example.com", "addr", "2024-03-10", item("ABC-123", 5)))
	a.Add(makeOrder("ORD-3", "c@example.com", "addr", "2023-12-01", item("ABC-123", 5))) // outside window
	a.Add(makeOrder("ORD-4", "d@example.com", "addr", "", item("ABC-123", 5)))           // no date

	got := a.TimeBasedInsights(30)
	assert.Equal(t, 2, got.TotalOrders)
	assert.InDelta(t, 2.0/30.0, got.AverageOrdersPerDay, 1e-9)
	assert.Equal(t, map[string]int{"2024-03-10": 2}, got.DailyOrderCounts)
}

func TestMerge(t *testing.T) {
	a := NewAggregator(WithNow(aggNow))

	o1 := makeOrder("ORD-1", "a@example.com", "addr", "2024-03-10", item("ABC-123", 5))
	o1.Notes = "first"
	o2 := makeOrder("ORD-2", "a@example.com", "addr", "2024-03-20", item("ABC-123", 3), item("DEF-456", 20))
	o2.Notes = "second"
	a.Add(o1)
	a.Add(o2)

	got, err := a.Merge([]string{"ORD-1", "ORD-2", "ORD-missing"})
	require.NoError(t, err)

	assert.Equal(t, []MergedItem{
		{SKU: "ABC-123", Quantity: 8},
		{SKU: "DEF-456", Quantity: 20},
	}, got.Items)
	assert.Equal(t, "2024-03-20", got.DeliveryDate)
	assert.Equal(t, "first\nsecond", got.Notes)
	require.Len(t, got.OriginalOrders, 2)
	assert.Equal(t, "ORD-1", got.OriginalOrders[0].ID)
}

func TestMergeUnknownIDs(t *testing.T) {
	a := NewAggregator(WithNow(aggNow))

	_, err := a.Merge([]string{"ORD-missing"})
	assert.True(t, errors.IsNotFound(err))
}

func TestExport(t *testing.T) {
	a := NewAggregator(WithNow(aggNow))

	// Both delivery dates fall in ISO week 10 of 2024.
	a.Add(makeOrder("ORD-1", "a@example.com", "addr", "2024-03-08", item("ABC-123", 5), item("DEF-456", 20)))
	a.Add(makeOrder("ORD-2", "b@example.com", "addr", "2024-03-10", item("ABC-123", 7), item("DEF-456", 1)))

	got := a.Export()
	assert.Equal(t, 2, got.TotalOrders)
	assert.Equal(t, 2, got.TotalCustomers)
	require.NotEmpty(t, got.MostOrderedProducts)
	assert.Equal(t, ProductCount{SKU: "DEF-456", Quantity: 21}, got.MostOrderedProducts[0])
	require.Len(t, got.CommonProducts, 1)
	assert.Equal(t, 2, got.TimeInsights.TotalOrders)
	assert.Equal(t, map[string]int{"2024-W10": 2}, got.WeeklyOrderCounts)
}

func TestExportIsConsistentUnderConcurrentAdds(t *testing.T) {
	a := NewAggregator(WithNow(aggNow))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			a.Add(makeOrder(fmt.Sprintf("ORD-%d", i), "a@example.com", "addr", "2024-03-10", item("ABC-123", 1)))
		}
	}()

	// Each snapshot must agree with itself: the weekly counts and the single
	// customer bucket are updated in the same critical section as the order
	// list, so their totals can never diverge within one report.
	for i := 0; i < 50; i++ {
		got := a.Export()
		weekly := 0
		for _, n := range got.WeeklyOrderCounts {
			weekly += n
		}
		assert.Equal(t, got.TotalOrders, weekly)
		if got.TotalOrders > 0 {
			require.Len(t, got.CustomerInsights, 1)
			assert.Equal(t, got.TotalOrders, got.CustomerInsights[0].OrderCount)
		}
	}
	<-done
}

func TestRehydrateReplaysStoredOrders(t *testing.T) {
	repo := memory.NewOrderRepository()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, makeOrder("ORD-1", "a@example.com", "addr", "2024-03-10", item("ABC-123", 5))))
	require.NoError(t, repo.Save(ctx, makeOrder("ORD-2", "b@example.com", "addr", "2024-03-10", item("DEF-456", 20))))

	a := NewAggregator(WithNow(aggNow))
	require.NoError(t, a.Rehydrate(ctx, repo))

	got := a.Export()
	assert.Equal(t, 2, got.TotalOrders)
	assert.Equal(t, 2, got.TotalCustomers)
	assert.Equal(t, map[string]int{"2024-W10": 2}, got.WeeklyOrderCounts)
}
