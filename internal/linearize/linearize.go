// Package linearize converts a validated graph into a LinearizedPlan: an
// index-addressed arena of steps with single-successor pointers and named
// branch continuations.
package linearize

import (
	"fmt"

	"github.com/jkoskela/flowforge/internal/validate"
	"github.com/jkoskela/flowforge/pkg/api"
)

// Run linearizes a graph that has passed validation with zero errors.
//
// The walk starts at the unique entry node and assigns arena indexes in
// depth-first pre-order, following branch ports in their declared order.
// A node reached via several branches (a diamond) is assigned once; every
// branch pointing at it shares the same index. Fan-out — one output port
// with more than one outgoing edge — is a hard structural error because
// both backend engines are single-successor-per-branch.
//
// For a fixed graph the result is byte-for-byte deterministic: successor
// order comes from declared port order, never edge insertion order.
func Run(g *api.Graph, reg *api.TypeRegistry) (*api.LinearizedPlan, error) {
	entry := validate.EntryNode(g)
	if entry == "" {
		return nil, api.NewStructuralError(api.Issue{
			Code:    api.CodeNoEntry,
			Message: "graph has no unique entry point",
		})
	}

	// targetsByPort resolves, per node, the successor reached from each
	// output port, rejecting fan-out as it goes.
	successors := make(map[string][]portTarget, len(g.Nodes))
	reachable := validate.Reachable(g, entry)
	for _, id := range g.NodeIDs() {
		if !reachable[id] {
			continue // unreachable nodes are excluded, not errors
		}
		targets, err := targetsByPort(g, reg, id)
		if err != nil {
			return nil, err
		}
		successors[id] = targets
	}

	// First pass: pre-order index assignment.
	index := make(map[string]int, len(successors))
	var order []string
	stack := []string{entry}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := index[id]; seen {
			continue
		}
		index[id] = len(order)
		order = append(order, id)
		targets := successors[id]
		// Push successors in reverse declared order so that the first
		// declared branch is visited (and numbered) first.
		for i := len(targets) - 1; i >= 0; i-- {
			if t := targets[i].target; t != "" {
				if _, seen := index[t]; !seen {
					stack = append(stack, t)
				}
			}
		}
	}

	// Second pass: materialize steps with resolved indexes.
	steps := make([]api.PlanStep, len(order))
	for i, id := range order {
		n := g.Nodes[id]
		step := api.PlanStep{NodeID: id, TypeID: n.TypeID, Next: api.NoStep}
		targets := successors[id]
		if len(targets) > 1 {
			step.Branches = make([]api.Branch, len(targets))
			for bi, t := range targets {
				bt := api.NoStep
				if t.target != "" {
					bt = index[t.target]
				}
				step.Branches[bi] = api.Branch{Label: t.port, Target: bt}
			}
		} else if len(targets) == 1 && targets[0].target != "" {
			step.Next = index[targets[0].target]
		}
		steps[i] = step
	}

	return api.NewLinearizedPlan(entry, steps), nil
}

type portTarget struct {
	port   string
	target string // "" when the port is unconnected
}

// targetsByPort returns one entry per effective output port of the node,
// in declared port order. An unconnected port maps to an empty target; a
// port with more than one outgoing edge is a fan-out error.
func targetsByPort(g *api.Graph, reg *api.TypeRegistry, nodeID string) ([]portTarget, error) {
	n := g.Nodes[nodeID]
	desc, ok := reg.Lookup(n.TypeID)
	if !ok {
		return nil, api.NewStructuralError(api.Issue{
			NodeID:  nodeID,
			Code:    api.CodeUnknownType,
			Message: fmt.Sprintf("node type %q is not registered", n.TypeID),
		})
	}
	ports := api.OutputPortsFor(desc, n)

	byPort := make(map[string][]string, len(ports))
	for _, e := range g.OutgoingEdges(nodeID) {
		port := e.SourcePort
		if port == "" && len(ports) == 1 {
			port = ports[0].ID
		}
		byPort[port] = append(byPort[port], e.TargetID)
	}

	out := make([]portTarget, 0, len(ports))
	for _, p := range ports {
		targets := byPort[p.ID]
		switch len(targets) {
		case 0:
			out = append(out, portTarget{port: p.ID})
		case 1:
			out = append(out, portTarget{port: p.ID, target: targets[0]})
		default:
			return nil, api.NewStructuralError(api.Issue{
				NodeID: nodeID,
				Code:   api.CodeFanOut,
				Message: fmt.Sprintf(
					"output port %q has %d outgoing edges; a port may drive at most one successor",
					p.ID, len(targets)),
			})
		}
	}
	return out, nil
}
