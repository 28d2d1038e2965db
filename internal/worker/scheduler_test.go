package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsImmediatelyAndOnTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	s := NewScheduler()
	s.Register("counter", 20*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	s.Start(ctx)

	require.Eventually(t, func() bool { return runs.Load() >= 3 },
		time.Second, 5*time.Millisecond)
}

// A run that outlasts its period must cause skipped ticks, not stacked runs.
func TestSchedulerSkipsOverlappingRuns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var active atomic.Int32
	var overlapped atomic.Bool
	s := NewScheduler()
	s.Register("slow", 10*time.Millisecond, func(ctx context.Context) error {
		if active.Add(1) > 1 {
			overlapped.Store(true)
		}
		defer active.Add(-1)
		time.Sleep(50 * time.Millisecond)
		return nil
	})
	s.Start(ctx)

	time.Sleep(200 * time.Millisecond)
	assert.False(t, overlapped.Load(), "two runs of the same job were active at once")
}

func TestSchedulerSurvivesFailuresAndPanics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	s := NewScheduler()
	s.Register("flaky", 10*time.Millisecond, func(ctx context.Context) error {
		n := runs.Add(1)
		switch n {
		case 1:
			return errors.New("transient failure")
		case 2:
			panic("boom")
		}
		return nil
	})
	s.Start(ctx)

	// The job keeps running after both the error and the panic.
	require.Eventually(t, func() bool { return runs.Load() >= 4 },
		time.Second, 5*time.Millisecond)
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var runs atomic.Int32
	s := NewScheduler()
	s.Register("stoppable", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	s.Start(ctx)

	require.Eventually(t, func() bool { return runs.Load() >= 1 },
		time.Second, 5*time.Millisecond)
	cancel()

	time.Sleep(30 * time.Millisecond)
	after := runs.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "job kept running after cancellation")
}

func TestProcessJobDispatchesAlerts(t *testing.T) {
	var got AlertPayload
	handler := func(_ context.Context, p AlertPayload) { got = p }

	raw := `{"type":"low_stock_alert","payload":{"alert_id":"a1","product_id":"p1","threshold":5,"current_stock":2}}`
	processJob(context.Background(), handler, raw)

	assert.Equal(t, "a1", got.AlertID)
	assert.Equal(t, "p1", got.ProductID)
	assert.Equal(t, 5, got.Threshold)
	assert.Equal(t, 2, got.CurrentStock)
}

func TestProcessJobDropsUnknownTypes(t *testing.T) {
	called := false
	handler := func(_ context.Context, _ AlertPayload) { called = true }

	processJob(context.Background(), handler, `{"type":"mystery","payload":{}}`)
	processJob(context.Background(), handler, `not even json`)

	assert.False(t, called)
}
