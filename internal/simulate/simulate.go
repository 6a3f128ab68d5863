// Package simulate walks a linearized plan without touching the real
// engine, producing a deterministic ExecutionTrace for local testing.
package simulate

import (
	"context"
	"fmt"
	"time"

	"github.com/jkoskela/flowforge/internal/condition"
	"github.com/jkoskela/flowforge/pkg/api"
)

// Simulator produces synthetic traces from plans. A zero delay is valid
// and makes simulation effectively instantaneous, which tests rely on.
type Simulator struct {
	reg       *api.TypeRegistry
	gate      func(typeID string) bool
	delay     time.Duration
	overrides map[string]string
	obs       api.RunObserver
	now       func() time.Time
}

// Option customizes a Simulator.
type Option func(*Simulator)

// WithStepDelay sets the synthetic per-step delay. The wait is
// context-aware: cancelling the context mid-delay fails the run cleanly.
func WithStepDelay(d time.Duration) Option {
	return func(s *Simulator) { s.delay = d }
}

// WithBranchOverride forces the branch taken at the given node,
// overriding condition evaluation. Intended for test harnesses.
func WithBranchOverride(nodeID, label string) Option {
	return func(s *Simulator) { s.overrides[nodeID] = label }
}

// WithObserver attaches a RunObserver for per-step trace updates, the
// push-style feed a live UI consumes.
func WithObserver(obs api.RunObserver) Option {
	return func(s *Simulator) {
		if obs != nil {
			s.obs = obs
		}
	}
}

// WithTypeGate installs the check that mirrors emitter-time validation: a
// step whose type the gate rejects fails exactly as emission would have.
// Wire an Emitter's Supports method here to simulate against a specific
// backend. The default gate accepts any registered type.
func WithTypeGate(gate func(typeID string) bool) Option {
	return func(s *Simulator) {
		if gate != nil {
			s.gate = gate
		}
	}
}

// WithClock replaces the timestamp source. Tests use this for
// reproducible trace times.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a Simulator over the given registry.
func New(reg *api.TypeRegistry, opts ...Option) *Simulator {
	s := &Simulator{
		reg:       reg,
		delay:     10 * time.Millisecond,
		overrides: make(map[string]string),
		obs:       api.NoopRunObserver{},
		now:       time.Now,
	}
	s.gate = func(typeID string) bool {
		_, ok := reg.Lookup(typeID)
		return ok
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulate walks the plan starting at the entry step and returns the
// finished trace. Semantics:
//
//   - Each visited step yields one StepTrace with synthetic timing and a
//     synthetic output tagged with the node's id and type.
//   - A step whose type fails the gate is marked failed and the walk
//     halts immediately; earlier steps keep their succeeded entries.
//   - At a branching step, the override (if any) wins; otherwise the
//     first branch in declared order whose condition holds is taken, a
//     branch with no condition acting as a default. When nothing
//     matches, the first branch is taken. Deterministic by construction.
//   - Cancellation finalizes the trace as failed with the cancellation
//     error; completed entries are never discarded.
//
// Re-running with the same plan and input reproduces the same node /
// status / output sequence; only timestamps differ.
func (s *Simulator) Simulate(ctx context.Context, plan *api.LinearizedPlan, g *api.Graph, input any) *api.ExecutionTrace {
	trace := api.NewExecutionTrace()
	trace.Status = api.RunRunning
	s.obs.OnRunStart(ctx, trace)

	idx := 0
	for idx != api.NoStep && idx < plan.Len() {
		step := plan.Steps[idx]

		if err := ctx.Err(); err != nil {
			return s.fail(ctx, trace, fmt.Errorf("run cancelled before step %s: %w", step.NodeID, err))
		}

		stepIndex := len(trace.Steps)
		s.obs.OnStepStart(ctx, trace, step.NodeID, stepIndex)
		started := s.now()

		if !s.gate(step.TypeID) {
			err := fmt.Errorf("node type %q has no emitter mapping", step.TypeID)
			trace.Steps = append(trace.Steps, api.StepTrace{
				NodeID:      step.NodeID,
				Status:      api.RunFailed,
				StartedAt:   started,
				CompletedAt: s.now(),
				Error:       err.Error(),
			})
			s.obs.OnStepCompleted(ctx, trace, step.NodeID, stepIndex, err, s.now().Sub(started))
			return s.fail(ctx, trace, fmt.Errorf("step %s: %w", step.NodeID, err))
		}

		if err := s.wait(ctx); err != nil {
			cancelErr := fmt.Errorf("run cancelled during step %s: %w", step.NodeID, err)
			trace.Steps = append(trace.Steps, api.StepTrace{
				NodeID:      step.NodeID,
				Status:      api.RunFailed,
				StartedAt:   started,
				CompletedAt: s.now(),
				Error:       cancelErr.Error(),
			})
			s.obs.OnStepCompleted(ctx, trace, step.NodeID, stepIndex, cancelErr, s.now().Sub(started))
			return s.fail(ctx, trace, cancelErr)
		}

		completed := s.now()
		trace.Steps = append(trace.Steps, api.StepTrace{
			NodeID:      step.NodeID,
			Status:      api.RunSucceeded,
			StartedAt:   started,
			CompletedAt: completed,
			Output:      s.syntheticOutput(step),
		})
		s.obs.OnStepCompleted(ctx, trace, step.NodeID, stepIndex, nil, completed.Sub(started))

		idx = s.next(step, g, input)
	}

	trace.Status = api.RunSucceeded
	s.obs.OnRunCompleted(ctx, trace)
	return trace
}

func (s *Simulator) fail(ctx context.Context, trace *api.ExecutionTrace, err error) *api.ExecutionTrace {
	trace.Status = api.RunFailed
	trace.Error = err.Error()
	s.obs.OnRunFailed(ctx, trace, err)
	return trace
}

func (s *Simulator) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.delay):
		return nil
	}
}

// syntheticOutput is intentionally timestamp-free so repeated simulations
// produce identical output sequences.
func (s *Simulator) syntheticOutput(step api.PlanStep) map[string]any {
	return map[string]any{
		"node_id":   step.NodeID,
		"type_id":   step.TypeID,
		"simulated": true,
	}
}

func (s *Simulator) next(step api.PlanStep, g *api.Graph, input any) int {
	if !step.Branching() {
		return step.Next
	}

	if label, ok := s.overrides[step.NodeID]; ok {
		if target, ok := step.BranchTarget(label); ok {
			return target
		}
	}

	node := g.Nodes[step.NodeID]
	for _, b := range step.Branches {
		expr := ""
		if node != nil {
			expr = api.BranchConditionFromConfig(node.Config, b.Label)
			if expr == "" && b.Label == "true" {
				// Plain if-else node: the single top-level condition
				// guards the "true" port, "false" acts as the default.
				expr, _ = node.Config["condition"].(string)
			}
		}
		if expr == "" {
			return b.Target
		}
		ok, err := condition.EvalBool(expr, input)
		if err == nil && ok {
			return b.Target
		}
	}
	// No condition held; fall through the first declared branch.
	return step.Branches[0].Target
}
