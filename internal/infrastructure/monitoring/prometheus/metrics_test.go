package prometheus

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveProcessed(t *testing.T) {
	m := NewMetrics()

	m.ObserveProcessed("extracted", 3, 40*time.Millisecond)
	m.ObserveProcessed("extracted", 2, 10*time.Millisecond)
	m.ObserveProcessed("empty", 0, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.emailsProcessed.WithLabelValues("extracted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.emailsProcessed.WithLabelValues("empty")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.extractedItems))
}

func TestObserveApproved(t *testing.T) {
	m := NewMetrics()
	m.ObserveApproved()
	m.ObserveApproved()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersApproved))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := NewMetrics()
	m.ObserveProcessed("extracted", 1, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "intake_emails_processed_total")
}

func TestIndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.ObserveApproved()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ordersApproved))
}
