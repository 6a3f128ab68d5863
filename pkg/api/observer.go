package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// RunObserver receives callbacks while a plan is walked, by the simulator
// or by the deployment poller as remote step results arrive.
//
// Implementations should be fast and non-blocking; heavy work belongs on a
// goroutine so trace production is never delayed.
type RunObserver interface {
	// OnRunStart is called once, before the entry step executes.
	OnRunStart(ctx context.Context, trace *ExecutionTrace)

	// OnRunCompleted is called when the run reaches RunSucceeded.
	OnRunCompleted(ctx context.Context, trace *ExecutionTrace)

	// OnRunFailed is called when the run reaches RunFailed, including
	// cancellation mid-walk.
	OnRunFailed(ctx context.Context, trace *ExecutionTrace, err error)

	// OnStepStart is called before a step executes. stepIndex is the
	// position in the trace, not the plan arena index.
	OnStepStart(ctx context.Context, trace *ExecutionTrace, nodeID string, stepIndex int)

	// OnStepCompleted is called after a step finishes, for successes and
	// failures (err != nil) alike.
	OnStepCompleted(ctx context.Context, trace *ExecutionTrace, nodeID string, stepIndex int, err error, duration time.Duration)
}

// NoopRunObserver is a RunObserver that does nothing. It is the default
// when no observer is configured.
type NoopRunObserver struct{}

func (NoopRunObserver) OnRunStart(ctx context.Context, trace *ExecutionTrace)     {}
func (NoopRunObserver) OnRunCompleted(ctx context.Context, trace *ExecutionTrace) {}
func (NoopRunObserver) OnRunFailed(ctx context.Context, trace *ExecutionTrace, err error) {
}
func (NoopRunObserver) OnStepStart(ctx context.Context, trace *ExecutionTrace, nodeID string, stepIndex int) {
}
func (NoopRunObserver) OnStepCompleted(ctx context.Context, trace *ExecutionTrace, nodeID string, stepIndex int, err error, d time.Duration) {
}

// CompositeRunObserver fans out events to multiple observers.
type CompositeRunObserver struct {
	observers []RunObserver
}

// NewCompositeRunObserver creates an observer that forwards events to each
// non-nil observer in obs.
func NewCompositeRunObserver(obs ...RunObserver) RunObserver {
	filtered := make([]RunObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopRunObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeRunObserver{observers: filtered}
}

func (c *CompositeRunObserver) OnRunStart(ctx context.Context, trace *ExecutionTrace) {
	for _, o := range c.observers {
		o.OnRunStart(ctx, trace)
	}
}

func (c *CompositeRunObserver) OnRunCompleted(ctx context.Context, trace *ExecutionTrace) {
	for _, o := range c.observers {
		o.OnRunCompleted(ctx, trace)
	}
}

func (c *CompositeRunObserver) OnRunFailed(ctx context.Context, trace *ExecutionTrace, err error) {
	for _, o := range c.observers {
		o.OnRunFailed(ctx, trace, err)
	}
}

func (c *CompositeRunObserver) OnStepStart(ctx context.Context, trace *ExecutionTrace, nodeID string, stepIndex int) {
	for _, o := range c.observers {
		o.OnStepStart(ctx, trace, nodeID, stepIndex)
	}
}

func (c *CompositeRunObserver) OnStepCompleted(ctx context.Context, trace *ExecutionTrace, nodeID string, stepIndex int, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnStepCompleted(ctx, trace, nodeID, stepIndex, err, d)
	}
}

// LoggingRunObserver writes structured logs using log/slog.
type LoggingRunObserver struct {
	Logger *slog.Logger
}

// NewLoggingRunObserver creates an observer that logs run / step lifecycle
// events using the provided slog.Logger. If logger is nil, slog.Default()
// is used.
func NewLoggingRunObserver(logger *slog.Logger) RunObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingRunObserver{Logger: logger}
}

func (o *LoggingRunObserver) OnRunStart(ctx context.Context, trace *ExecutionTrace) {
	o.Logger.InfoContext(ctx, "run_start",
		slog.String("run_id", trace.RunID),
	)
}

func (o *LoggingRunObserver) OnRunCompleted(ctx context.Context, trace *ExecutionTrace) {
	o.Logger.InfoContext(ctx, "run_completed",
		slog.String("run_id", trace.RunID),
		slog.Int("steps", len(trace.Steps)),
	)
}

func (o *LoggingRunObserver) OnRunFailed(ctx context.Context, trace *ExecutionTrace, err error) {
	o.Logger.ErrorContext(ctx, "run_failed",
		slog.String("run_id", trace.RunID),
		slog.Int("steps", len(trace.Steps)),
		slog.Any("error", err),
	)
}

func (o *LoggingRunObserver) OnStepStart(ctx context.Context, trace *ExecutionTrace, nodeID string, stepIndex int) {
	o.Logger.DebugContext(ctx, "step_start",
		slog.String("run_id", trace.RunID),
		slog.String("node", nodeID),
		slog.Int("step_index", stepIndex),
	)
}

func (o *LoggingRunObserver) OnStepCompleted(ctx context.Context, trace *ExecutionTrace, nodeID string, stepIndex int, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "step_completed",
		slog.String("run_id", trace.RunID),
		slog.String("node", nodeID),
		slog.Int("step_index", stepIndex),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

// RunMetrics collects simple counters and aggregate step durations. It
// implements RunObserver and can be combined with LoggingRunObserver via
// NewCompositeRunObserver.
type RunMetrics struct {
	NoopRunObserver

	runsStarted       atomic.Int64
	runsCompleted     atomic.Int64
	runsFailed        atomic.Int64
	stepsCompleted    atomic.Int64
	totalStepDuration atomic.Int64 // nanoseconds
}

// RunMetricsSnapshot is an immutable snapshot of RunMetrics.
type RunMetricsSnapshot struct {
	RunsStarted   int64
	RunsCompleted int64
	RunsFailed    int64

	StepsCompleted  int64
	AvgStepDuration time.Duration
}

func (m *RunMetrics) OnRunStart(ctx context.Context, trace *ExecutionTrace) {
	m.runsStarted.Add(1)
}

func (m *RunMetrics) OnRunCompleted(ctx context.Context, trace *ExecutionTrace) {
	m.runsCompleted.Add(1)
}

func (m *RunMetrics) OnRunFailed(ctx context.Context, trace *ExecutionTrace, err error) {
	m.runsFailed.Add(1)
}

func (m *RunMetrics) OnStepCompleted(ctx context.Context, trace *ExecutionTrace, nodeID string, stepIndex int, err error, d time.Duration) {
	// Only successful steps count toward the average duration.
	if err == nil {
		m.stepsCompleted.Add(1)
		m.totalStepDuration.Add(int64(d))
	}
}

// Snapshot returns a point-in-time copy of the counters.
func (m *RunMetrics) Snapshot() RunMetricsSnapshot {
	steps := m.stepsCompleted.Load()
	var avg time.Duration
	if steps > 0 {
		avg = time.Duration(m.totalStepDuration.Load() / steps)
	}
	return RunMetricsSnapshot{
		RunsStarted:     m.runsStarted.Load(),
		RunsCompleted:   m.runsCompleted.Load(),
		RunsFailed:      m.runsFailed.Load(),
		StepsCompleted:  steps,
		AvgStepDuration: avg,
	}
}
