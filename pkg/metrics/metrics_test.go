package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue сумма значений счётчика с заданными метками
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, m := range mf.GetMetric() {
			got := make(map[string]string, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				got[l.GetName()] = l.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue metric
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestRecordVerdict(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer("appointments", reg)

	m.RecordVerdict("create", "")
	m.RecordVerdict("create", "OVERLAPS_EXISTING_APPOINTMENT")
	m.RecordVerdict("check", "OVERLAPS_EXISTING_APPOINTMENT")

	assert.Equal(t, 1.0, counterValue(t, reg, "availability_verdicts_total",
		map[string]string{"operation": "create", "reason": "AVAILABLE"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "availability_verdicts_total",
		map[string]string{"reason": "OVERLAPS_EXISTING_APPOINTMENT"}))
}

func TestObserveDBQuery(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer("appointments", reg)

	m.ObserveDBQuery("select", time.Millisecond, nil)
	m.ObserveDBQuery("insert", time.Millisecond, errors.New("23P01"))

	assert.Equal(t, 1.0, counterValue(t, reg, "db_queries_total",
		map[string]string{"operation": "select", "status": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "db_queries_total",
		map[string]string{"operation": "insert", "status": "error"}))
}

func TestObserveHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer("appointments", reg)

	m.ObserveHTTPRequest("POST", "/api/v1/appointments", 409, 5*time.Millisecond)

	assert.Equal(t, 1.0, counterValue(t, reg, "http_requests_total",
		map[string]string{"method": "POST", "path": "/api/v1/appointments", "status": "409"}))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordVerdict("create", "")
		m.ObserveDBQuery("select", time.Millisecond, nil)
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
		m.SetDBPoolStats(1, 1, 0, 0)
	})
}
