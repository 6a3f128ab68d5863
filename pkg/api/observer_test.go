package api

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	NoopRunObserver
	runStarts int
	stepDone  int
}

func (o *countingObserver) OnRunStart(ctx context.Context, trace *ExecutionTrace) {
	o.runStarts++
}

func (o *countingObserver) OnStepCompleted(ctx context.Context, trace *ExecutionTrace, nodeID string, stepIndex int, err error, d time.Duration) {
	o.stepDone++
}

func TestNewCompositeRunObserver_Collapses(t *testing.T) {
	require.IsType(t, NoopRunObserver{}, NewCompositeRunObserver())
	require.IsType(t, NoopRunObserver{}, NewCompositeRunObserver(nil, nil))

	single := &countingObserver{}
	require.Same(t, RunObserver(single), NewCompositeRunObserver(nil, single))
}

func TestCompositeRunObserver_FansOut(t *testing.T) {
	a := &countingObserver{}
	b := &countingObserver{}
	c := NewCompositeRunObserver(a, b)

	tr := NewExecutionTrace()
	c.OnRunStart(context.Background(), tr)
	c.OnStepCompleted(context.Background(), tr, "start", 0, nil, time.Millisecond)
	c.OnStepCompleted(context.Background(), tr, "act", 1, errors.New("boom"), time.Millisecond)

	require.Equal(t, 1, a.runStarts)
	require.Equal(t, 1, b.runStarts)
	require.Equal(t, 2, a.stepDone)
	require.Equal(t, 2, b.stepDone)
}

func TestRunMetrics_Snapshot(t *testing.T) {
	m := &RunMetrics{}
	ctx := context.Background()
	tr := NewExecutionTrace()

	m.OnRunStart(ctx, tr)
	m.OnRunStart(ctx, tr)
	m.OnRunCompleted(ctx, tr)
	m.OnRunFailed(ctx, tr, errors.New("boom"))
	m.OnStepCompleted(ctx, tr, "a", 0, nil, 10*time.Millisecond)
	m.OnStepCompleted(ctx, tr, "b", 1, nil, 30*time.Millisecond)
	m.OnStepCompleted(ctx, tr, "c", 2, errors.New("boom"), time.Hour)

	s := m.Snapshot()
	require.Equal(t, int64(2), s.RunsStarted)
	require.Equal(t, int64(1), s.RunsCompleted)
	require.Equal(t, int64(1), s.RunsFailed)
	require.Equal(t, int64(2), s.StepsCompleted, "failed steps must not count")
	require.Equal(t, 20*time.Millisecond, s.AvgStepDuration)
}

func TestRunMetrics_EmptySnapshot(t *testing.T) {
	s := (&RunMetrics{}).Snapshot()
	require.Zero(t, s.StepsCompleted)
	require.Zero(t, s.AvgStepDuration)
}

func TestLoggingRunObserver_EmitsEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	o := NewLoggingRunObserver(logger)

	ctx := context.Background()
	tr := NewExecutionTrace()
	o.OnRunStart(ctx, tr)
	o.OnStepStart(ctx, tr, "start", 0)
	o.OnStepCompleted(ctx, tr, "start", 0, nil, time.Millisecond)
	o.OnRunFailed(ctx, tr, errors.New("boom"))

	out := buf.String()
	require.Contains(t, out, "run_start")
	require.Contains(t, out, "step_start")
	require.Contains(t, out, "step_completed")
	require.Contains(t, out, "run_failed")
	require.Contains(t, out, tr.RunID)
	require.Equal(t, 1, strings.Count(out, "level=ERROR"))
}
