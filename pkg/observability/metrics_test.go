package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryMetrics_Counter(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Counter("billing.plan_change", 1, T("kind", "upgrade"))
	m.Counter("billing.plan_change", 1, T("kind", "upgrade"))
	m.Counter("billing.plan_change", 1, T("kind", "downgrade"))

	assert.Equal(t, int64(2), m.GetCounter("billing.plan_change", T("kind", "upgrade")))
	assert.Equal(t, int64(1), m.GetCounter("billing.plan_change", T("kind", "downgrade")))
	assert.Equal(t, int64(0), m.GetCounter("billing.plan_change", T("kind", "cancel")))
}

func TestInMemoryMetrics_Gauge(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Gauge("outbox.lag_seconds", 1.5)
	m.Gauge("outbox.lag_seconds", 0.25)

	assert.Equal(t, 0.25, m.GetGauge("outbox.lag_seconds"))
}

func TestInMemoryMetrics_Timing(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Timing("gateway.charge", 120*time.Millisecond)
	m.Timing("gateway.charge", 80*time.Millisecond)

	timings := m.GetTimings("gateway.charge")
	assert.Len(t, timings, 2)
}

func TestFormatKey_TagOrderIndependent(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Counter("requests", 1, T("a", "1"), T("b", "2"))
	m.Counter("requests", 1, T("b", "2"), T("a", "1"))

	assert.Equal(t, int64(2), m.GetCounter("requests", T("a", "1"), T("b", "2")))
}
