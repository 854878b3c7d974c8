package intake

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderflow/intake/internal/domain/order"
	"github.com/orderflow/intake/internal/infrastructure/storage/memory"
	"github.com/orderflow/intake/pkg/errors"
)

type capturingPublisher struct {
	processed []string
	approved  []string
	fail      error
}

func (p *capturingPublisher) OrderProcessed(_ context.Context, o *order.Order) error {
	if p.fail != nil {
		return p.fail
	}
	p.processed = append(p.processed, o.ID)
	return nil
}

func (p *capturingPublisher) OrderApproved(_ context.Context, o *order.Order) error {
	if p.fail != nil {
		return p.fail
	}
	p.approved = append(p.approved, o.ID)
	return nil
}

type capturingMetrics struct {
	outcomes  []string
	approvals int
}

func (m *capturingMetrics) ObserveProcessed(outcome string, _ int, _ time.Duration) {
	m.outcomes = append(m.outcomes, outcome)
}

func (m *capturingMetrics) ObserveApproved() { m.approvals++ }

func newTestService(t *testing.T) (*Service, *capturingPublisher, *capturingMetrics) {
	t.Helper()
	pub := &capturingPublisher{}
	met := &capturingMetrics{}
	svc := NewService(newTestAssembler(t), memory.NewOrderRepository(), pub, met, nil)
	return svc, pub, met
}

func TestProcessEmailPersistsAndPublishes(t *testing.T) {
	svc, pub, met := newTestService(t)
	ctx := context.Background()

	ts := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)
	o, err := svc.ProcessEmail(ctx, Email{
		RawContent: "5 x SuperWidget",
		Sender:     "buyer@example.com",
		ReceivedAt: &ts,
	})
	require.NoError(t, err)
	require.Len(t, o.Items, 1)

	stored, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, stored.ID)

	assert.Equal(t, []string{o.ID}, pub.processed)
	assert.Equal(t, []string{OutcomeExtracted}, met.outcomes)
}

func TestProcessEmailEmptyExtraction(t *testing.T) {
	svc, pub, met := newTestService(t)

	o, err := svc.ProcessEmail(context.Background(), Email{RawContent: "just saying hello"})
	require.NoError(t, err)
	assert.Empty(t, o.Items)
	assert.Equal(t, 0.0, o.ConfidenceScore)

	// Empty orders are still persisted and announced; emptiness is the
	// review signal, not an error.
	assert.Len(t, pub.processed, 1)
	assert.Equal(t, []string{OutcomeEmpty}, met.outcomes)
}

func TestProcessEmailPublishFailureIsSoft(t *testing.T) {
	svc, pub, _ := newTestService(t)
	pub.fail = errors.Internal("broker down")

	o, err := svc.ProcessEmail(context.Background(), Email{RawContent: "5 x SuperWidget"})
	require.NoError(t, err)

	// The order must still be retrievable despite the failed publish.
	_, err = svc.GetOrder(context.Background(), o.ID)
	assert.NoError(t, err)
}

func TestApproveOrder(t *testing.T) {
	svc, pub, met := newTestService(t)
	ctx := context.Background()

	o, err := svc.ProcessEmail(ctx, Email{RawContent: "5 x SuperWidget"})
	require.NoError(t, err)

	approved, err := svc.ApproveOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusApproved, approved.Status)
	assert.Equal(t, []string{o.ID}, pub.approved)
	assert.Equal(t, 1, met.approvals)

	_, err = svc.ApproveOrder(ctx, o.ID)
	assert.True(t, errors.IsConflict(err))
}

func TestApproveUnknownOrder(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ApproveOrder(context.Background(), "ORD-19700101000000")
	assert.True(t, errors.IsNotFound(err))
}

func TestListOrders(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	ts1 := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	ts2 := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	_, err := svc.ProcessEmail(ctx, Email{RawContent: "5 x SuperWidget", ReceivedAt: &ts1})
	require.NoError(t, err)
	_, err = svc.ProcessEmail(ctx, Email{RawContent: "30 x MegaBracket", ReceivedAt: &ts2})
	require.NoError(t, err)

	all, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ORD-20240315100000", all[0].ID)
}
