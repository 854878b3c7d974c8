package intake

import (
	"context"
	"time"

	"github.com/orderflow/intake/internal/domain/order"
	"github.com/orderflow/intake/internal/infrastructure/monitoring/logging"
)

// EventPublisher emits order lifecycle events to downstream consumers.
// Publishing is best-effort from the service's point of view: a broker
// failure is logged, never surfaced to the caller.
type EventPublisher interface {
	OrderProcessed(ctx context.Context, o *order.Order) error
	OrderApproved(ctx context.Context, o *order.Order) error
}

// Metrics records intake pipeline observations.
type Metrics interface {
	ObserveProcessed(outcome string, itemCount int, elapsed time.Duration)
	ObserveApproved()
}

// Processing outcomes reported to Metrics.
const (
	OutcomeExtracted = "extracted"
	OutcomeEmpty     = "empty"
	OutcomeFailed    = "failed"
)

// Service is the application entry point for email intake: it assembles an
// order from raw text, persists it, and announces it. Extraction itself
// never fails; only persistence can.
type Service struct {
	assembler *Assembler
	repo      order.Repository
	events    EventPublisher
	metrics   Metrics
	logger    logging.Logger
}

// NewService builds the intake service. events and metrics may be nil when
// the deployment runs without a broker or scrape endpoint.
func NewService(
	assembler *Assembler,
	repo order.Repository,
	events EventPublisher,
	metrics Metrics,
	logger logging.Logger,
) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		assembler: assembler,
		repo:      repo,
		events:    events,
		metrics:   metrics,
		logger:    logger,
	}
}

// ProcessEmail runs the full pipeline for one email and persists the result.
// The returned order is always populated, even when nothing was extracted.
func (s *Service) ProcessEmail(ctx context.Context, email Email) (*order.Order, error) {
	start := time.Now()

	o := s.assembler.Assemble(email)

	if err := s.repo.Save(ctx, o); err != nil {
		s.observe(OutcomeFailed, 0, start)
		return nil, err
	}

	s.logger.Info("order assembled",
		logging.String("order_id", o.ID),
		logging.String("customer", o.CustomerEmail),
		logging.Int("items", len(o.Items)),
		logging.Float64("confidence", o.ConfidenceScore),
		logging.Int("issues", len(o.ValidationIssues)),
	)

	if s.events != nil {
		if err := s.events.OrderProcessed(ctx, o); err != nil {
			s.logger.Warn("order.processed publish failed",
				logging.String("order_id", o.ID), logging.Err(err))
		}
	}

	outcome := OutcomeExtracted
	if len(o.Items) == 0 {
		outcome = OutcomeEmpty
	}
	s.observe(outcome, len(o.Items), start)
	return o, nil
}

// GetOrder fetches a stored order by ID.
func (s *Service) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return s.repo.Get(ctx, id)
}

// ListOrders returns all stored orders, newest first.
func (s *Service) ListOrders(ctx context.Context) ([]*order.Order, error) {
	return s.repo.List(ctx)
}

// ApproveOrder transitions a pending order to approved and announces it.
func (s *Service) ApproveOrder(ctx context.Context, id string) (*order.Order, error) {
	o, err := s.repo.UpdateStatus(ctx, id, order.StatusApproved)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order approved", logging.String("order_id", o.ID))

	if s.events != nil {
		if err := s.events.OrderApproved(ctx, o); err != nil {
			s.logger.Warn("order.approved publish failed",
				logging.String("order_id", o.ID), logging.Err(err))
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveApproved()
	}
	return o, nil
}

func (s *Service) observe(outcome string, items int, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveProcessed(outcome, items, time.Since(start))
	}
}
