package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetricsRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.ObserveRun("topup_expiry", 50*time.Millisecond, nil)
	m.ObserveRun("topup_claim_release", time.Millisecond, errors.New("db down"))
	m.AddAffected("topup_expiry", 4)
	m.AddAffected("topup_expiry", 0)
	m.IncCycleSkipped()
	m.IncCycleSkipped()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	runs := findMetricFamily(mfs, "cron_job_runs_total")
	require.NotNil(t, runs)
	outcomes := map[string]string{}
	for _, metric := range runs.GetMetric() {
		var job, outcome string
		for _, l := range metric.GetLabel() {
			switch l.GetName() {
			case "job":
				job = l.GetValue()
			case "outcome":
				outcome = l.GetValue()
			}
		}
		outcomes[job] = outcome
		assert.Equal(t, float64(1), metric.GetCounter().GetValue())
	}
	assert.Equal(t, map[string]string{"topup_expiry": "success", "topup_claim_release": "failure"}, outcomes)

	affected, err := fetchCounterValue(mfs, "cron_job_rows_affected_total", "job", "topup_expiry")
	require.NoError(t, err)
	assert.Equal(t, float64(4), affected)

	took, err := fetchHistogramSum(mfs, "cron_job_duration_seconds", "job", "topup_expiry")
	require.NoError(t, err)
	assert.Greater(t, took, 0.0)

	skipped := findMetricFamily(mfs, "cron_cycles_skipped_total")
	require.NotNil(t, skipped)
	assert.Equal(t, float64(2), skipped.GetMetric()[0].GetCounter().GetValue())
}

func TestNilCronJobMetricsIsNoop(t *testing.T) {
	m := NewCronJobMetrics(nil)
	assert.Nil(t, m)
	m.ObserveRun("job", time.Second, nil)
	m.AddAffected("job", 1)
	m.IncCycleSkipped()
}
