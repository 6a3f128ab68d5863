package api

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of a simulated or deployed run.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Terminal reports whether the status is final.
func (s RunStatus) Terminal() bool {
	return s == RunSucceeded || s == RunFailed
}

// StepTrace records the outcome of one visited step. CompletedAt stays
// zero while the step is in flight; Error is empty unless the step failed.
type StepTrace struct {
	NodeID      string         `json:"node_id"`
	Status      RunStatus      `json:"status"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at,omitzero"`
	Output      map[string]any `json:"output,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// ExecutionTrace is the recorded outcome of walking a plan, real or
// simulated. Steps is append-only while the run progresses; the trace is
// finalized exactly once, with a terminal status, even when the run is
// cancelled mid-walk.
type ExecutionTrace struct {
	RunID  string      `json:"run_id"`
	Status RunStatus   `json:"status"`
	Steps  []StepTrace `json:"steps"`
	Error  string      `json:"error,omitempty"`
}

// NewExecutionTrace returns a pending trace with a fresh run id.
func NewExecutionTrace() *ExecutionTrace {
	return &ExecutionTrace{
		RunID:  uuid.NewString(),
		Status: RunPending,
	}
}

// Clone returns a deep copy of the trace. Stores hand out clones so that a
// caller cannot mutate persisted history.
func (t *ExecutionTrace) Clone() *ExecutionTrace {
	c := *t
	c.Steps = make([]StepTrace, len(t.Steps))
	for i, s := range t.Steps {
		sc := s
		if s.Output != nil {
			sc.Output = make(map[string]any, len(s.Output))
			for k, v := range s.Output {
				sc.Output[k] = v
			}
		}
		c.Steps[i] = sc
	}
	return &c
}
