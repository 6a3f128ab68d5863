package api

// NoStep marks the absence of a successor: the chain (or a branch of it)
// terminates there.
const NoStep = -1

// Branch is one named continuation out of a branching step. Target is the
// arena index of the first step of that sub-chain, or NoStep when the
// branch port is unconnected (a legitimate "do nothing" path).
//
// Branches are kept as an ordered slice rather than a map: the order is
// the node type's declared port order and is part of the plan's
// deterministic identity.
type Branch struct {
	Label  string `json:"label"`
	Target int    `json:"target"`
}

// PlanStep is one entry in a linearized plan. Exactly one of the successor
// forms is populated: a non-branching step uses Next, a branching step uses
// Branches (and leaves Next at NoStep).
type PlanStep struct {
	NodeID   string   `json:"node_id"`
	TypeID   string   `json:"type_id"`
	Next     int      `json:"next"`
	Branches []Branch `json:"branches,omitempty"`
}

// Branching reports whether this step fans into named continuations.
func (s PlanStep) Branching() bool {
	return len(s.Branches) > 0
}

// BranchTarget returns the target index for the given branch label.
func (s PlanStep) BranchTarget(label string) (int, bool) {
	for _, b := range s.Branches {
		if b.Label == label {
			return b.Target, true
		}
	}
	return NoStep, false
}

// LinearizedPlan is the ordered/branching step sequence derived from a
// validated graph. Steps live in an index-addressed arena so a step
// reached via multiple branches (a diamond) is stored once and referenced
// by index from each of them. Plans are built fresh per compile and never
// mutated afterwards.
type LinearizedPlan struct {
	EntryNodeID string     `json:"entry_node_id"`
	Steps       []PlanStep `json:"steps"`

	index map[string]int
}

// NewLinearizedPlan builds a plan over the given step arena. Steps[0] must
// be the entry step.
func NewLinearizedPlan(entryNodeID string, steps []PlanStep) *LinearizedPlan {
	p := &LinearizedPlan{
		EntryNodeID: entryNodeID,
		Steps:       steps,
		index:       make(map[string]int, len(steps)),
	}
	for i, s := range steps {
		p.index[s.NodeID] = i
	}
	return p
}

// Len returns the number of steps in the arena.
func (p *LinearizedPlan) Len() int {
	return len(p.Steps)
}

// StepIndex returns the arena index of the step for the given node.
func (p *LinearizedPlan) StepIndex(nodeID string) (int, bool) {
	i, ok := p.index[nodeID]
	return i, ok
}
