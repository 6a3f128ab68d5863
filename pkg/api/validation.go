package api

import "fmt"

// IssueCode classifies a single validation or compilation finding.
type IssueCode string

const (
	CodeNoEntry          IssueCode = "no_entry"
	CodeAmbiguousEntry   IssueCode = "ambiguous_entry"
	CodeCycle            IssueCode = "cycle"
	CodeMissingConfig    IssueCode = "missing_config"
	CodeUnsatisfiedPort  IssueCode = "unsatisfied_port"
	CodeUnreachable      IssueCode = "unreachable"
	CodeTypeMismatch     IssueCode = "type_mismatch"
	CodeUnknownType      IssueCode = "unknown_type"
	CodeInvalidPort      IssueCode = "invalid_port"
	CodeInvalidReference IssueCode = "invalid_reference"
	CodeCondition        IssueCode = "condition"

	// CodeFanOut is raised by the linearizer, not the validator: a single
	// output port driving more than one downstream node.
	CodeFanOut IssueCode = "fanout"

	// CodeUnmappedType is raised by an emitter whose mapping table has no
	// entry for a node type referenced by the plan.
	CodeUnmappedType IssueCode = "unmapped_type"
)

// Issue is one finding against a graph, pointing at the offending node or
// edge when one can be named.
type Issue struct {
	NodeID  string    `json:"node_id,omitempty"`
	EdgeID  string    `json:"edge_id,omitempty"`
	Code    IssueCode `json:"code"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	switch {
	case i.NodeID != "":
		return fmt.Sprintf("[%s] node %s: %s", i.Code, i.NodeID, i.Message)
	case i.EdgeID != "":
		return fmt.Sprintf("[%s] edge %s: %s", i.Code, i.EdgeID, i.Message)
	default:
		return fmt.Sprintf("[%s] %s", i.Code, i.Message)
	}
}

// ValidationResult accumulates findings from every check; checks never
// short-circuit each other. Errors block compilation, warnings do not.
type ValidationResult struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// OK reports whether the graph is compilable (no errors; warnings allowed).
func (r *ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// AddError appends an error finding.
func (r *ValidationResult) AddError(i Issue) {
	r.Errors = append(r.Errors, i)
}

// AddWarning appends a warning finding.
func (r *ValidationResult) AddWarning(i Issue) {
	r.Warnings = append(r.Warnings, i)
}
