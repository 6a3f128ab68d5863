package api

import (
	"errors"
	"fmt"
)

// ErrInvalidReference is returned when a graph edit references a node id
// the graph does not contain.
var ErrInvalidReference = errors.New("invalid node reference")

// StructuralError blocks compilation: cycles, a missing or ambiguous entry
// point, fan-out from a single port. It carries the full accumulated issue
// list; nothing is auto-fixed.
type StructuralError struct {
	Issues []Issue
}

func (e *StructuralError) Error() string {
	switch len(e.Issues) {
	case 0:
		return "structural error"
	case 1:
		return "structural error: " + e.Issues[0].String()
	default:
		return fmt.Sprintf("structural error: %s (and %d more)", e.Issues[0], len(e.Issues)-1)
	}
}

// NewStructuralError wraps issues in a StructuralError.
func NewStructuralError(issues ...Issue) *StructuralError {
	return &StructuralError{Issues: issues}
}

// ConfigError blocks emission for the specific emitter in use: a node type
// with no mapping in that emitter's table, or configuration the transform
// cannot express. It always names the offending node.
type ConfigError struct {
	NodeID string
	TypeID string
	Code   IssueCode
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: node %s (type %s): %s", e.NodeID, e.TypeID, e.Reason)
}

// EngineError is a failure talking to the external execution engine. The
// engine's raw response is attached so the caller can decide what to do;
// this layer never retries on its own.
type EngineError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("engine %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *EngineError) Unwrap() error { return e.Err }
