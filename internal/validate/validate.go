// Package validate runs the structural and semantic checks that gate
// compilation. Every check runs regardless of earlier findings; results
// accumulate into a single ValidationResult.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jkoskela/flowforge/internal/condition"
	"github.com/jkoskela/flowforge/pkg/api"
)

// Run validates the graph against the registry. Errors block compilation;
// warnings are advisory and returned to the caller unmodified.
func Run(g *api.Graph, reg *api.TypeRegistry) *api.ValidationResult {
	res := &api.ValidationResult{}

	checkEdgeReferences(g, res)
	entry := checkEntry(g, res)
	if entry != "" {
		checkCycles(g, entry, res)
		checkReachability(g, entry, res)
	}
	checkNodeTypes(g, reg, res)
	checkRequiredConfig(g, reg, res)
	checkRequiredPorts(g, reg, res)
	checkPortCompatibility(g, reg, res)
	checkConditions(g, res)

	return res
}

// EntryNode returns the unique zero-indegree node id, or "" when the graph
// has no unambiguous entry.
func EntryNode(g *api.Graph) string {
	entries := entryCandidates(g)
	if len(entries) != 1 {
		return ""
	}
	return entries[0]
}

func entryCandidates(g *api.Graph) []string {
	indegree := make(map[string]int, len(g.Nodes))
	for id := range g.Nodes {
		indegree[id] = 0
	}
	for _, e := range g.Edges {
		if _, ok := g.Nodes[e.TargetID]; ok {
			indegree[e.TargetID]++
		}
	}
	var entries []string
	for id, deg := range indegree {
		if deg == 0 {
			entries = append(entries, id)
		}
	}
	sort.Strings(entries)
	return entries
}

func checkEdgeReferences(g *api.Graph, res *api.ValidationResult) {
	for _, eid := range g.EdgeIDs() {
		e := g.Edges[eid]
		if _, ok := g.Nodes[e.SourceID]; !ok {
			res.AddError(api.Issue{
				EdgeID:  eid,
				Code:    api.CodeInvalidReference,
				Message: fmt.Sprintf("source node %q does not exist", e.SourceID),
			})
		}
		if _, ok := g.Nodes[e.TargetID]; !ok {
			res.AddError(api.Issue{
				EdgeID:  eid,
				Code:    api.CodeInvalidReference,
				Message: fmt.Sprintf("target node %q does not exist", e.TargetID),
			})
		}
	}
}

func checkEntry(g *api.Graph, res *api.ValidationResult) string {
	entries := entryCandidates(g)
	switch len(entries) {
	case 0:
		res.AddError(api.Issue{
			Code:    api.CodeNoEntry,
			Message: "no entry point: every node has an incoming edge",
		})
		return ""
	case 1:
		return entries[0]
	default:
		res.AddError(api.Issue{
			Code:    api.CodeAmbiguousEntry,
			Message: "ambiguous entry point: " + strings.Join(entries, ", "),
		})
		return ""
	}
}

// checkCycles walks forward from the entry using an explicit stack with
// in-progress/done marker sets, so arbitrarily deep graphs cannot blow the
// call stack. Any edge back into an in-progress node is a cycle.
func checkCycles(g *api.Graph, entry string, res *api.ValidationResult) {
	const (
		inProgress = 1
		done       = 2
	)
	marks := make(map[string]int, len(g.Nodes))

	type frame struct {
		nodeID string
		edges  []*api.WorkflowEdge
		next   int
	}
	stack := []*frame{{nodeID: entry, edges: g.OutgoingEdges(entry)}}
	marks[entry] = inProgress

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.edges) {
			marks[top.nodeID] = done
			stack = stack[:len(stack)-1]
			continue
		}
		e := top.edges[top.next]
		top.next++
		if _, ok := g.Nodes[e.TargetID]; !ok {
			continue // reported by checkEdgeReferences
		}
		switch marks[e.TargetID] {
		case inProgress:
			res.AddError(api.Issue{
				EdgeID:  e.ID,
				Code:    api.CodeCycle,
				Message: fmt.Sprintf("cycle detected: edge %s -> %s closes a loop", e.SourceID, e.TargetID),
			})
		case done:
			// Reconverging (diamond) shape, not a cycle.
		default:
			marks[e.TargetID] = inProgress
			stack = append(stack, &frame{nodeID: e.TargetID, edges: g.OutgoingEdges(e.TargetID)})
		}
	}
}

func checkReachability(g *api.Graph, entry string, res *api.ValidationResult) {
	reachable := Reachable(g, entry)
	for _, id := range g.NodeIDs() {
		if !reachable[id] {
			res.AddWarning(api.Issue{
				NodeID:  id,
				Code:    api.CodeUnreachable,
				Message: "node is not reachable from the entry point and will be excluded from the plan",
			})
		}
	}
}

// Reachable returns the set of nodes reachable from start by forward
// traversal, start included.
func Reachable(g *api.Graph, start string) map[string]bool {
	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range g.OutgoingEdges(id) {
			if _, ok := g.Nodes[e.TargetID]; !ok {
				continue
			}
			if !seen[e.TargetID] {
				seen[e.TargetID] = true
				queue = append(queue, e.TargetID)
			}
		}
	}
	return seen
}

func checkNodeTypes(g *api.Graph, reg *api.TypeRegistry, res *api.ValidationResult) {
	for _, id := range g.NodeIDs() {
		n := g.Nodes[id]
		if _, ok := reg.Lookup(n.TypeID); !ok {
			res.AddError(api.Issue{
				NodeID:  id,
				Code:    api.CodeUnknownType,
				Message: fmt.Sprintf("node type %q is not registered", n.TypeID),
			})
		}
	}
}

func checkRequiredConfig(g *api.Graph, reg *api.TypeRegistry, res *api.ValidationResult) {
	for _, id := range g.NodeIDs() {
		n := g.Nodes[id]
		desc, ok := reg.Lookup(n.TypeID)
		if !ok {
			continue // reported by checkNodeTypes
		}
		cfg := api.ResolvedConfig(desc, n)
		for _, key := range desc.RequiredConfig {
			if emptyConfigValue(cfg[key]) {
				res.AddError(api.Issue{
					NodeID:  id,
					Code:    api.CodeMissingConfig,
					Message: fmt.Sprintf("required config field %q is missing or empty", key),
				})
			}
		}
	}
}

func emptyConfigValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}

func checkRequiredPorts(g *api.Graph, reg *api.TypeRegistry, res *api.ValidationResult) {
	for _, id := range g.NodeIDs() {
		n := g.Nodes[id]
		desc, ok := reg.Lookup(n.TypeID)
		if !ok {
			continue
		}
		incoming := g.IncomingEdges(id)
		for _, port := range desc.InputPorts {
			if !port.Required {
				continue
			}
			satisfied := false
			for _, e := range incoming {
				if e.TargetPort == port.ID || (e.TargetPort == "" && len(desc.InputPorts) == 1) {
					satisfied = true
					break
				}
			}
			if !satisfied {
				res.AddError(api.Issue{
					NodeID:  id,
					Code:    api.CodeUnsatisfiedPort,
					Message: fmt.Sprintf("required input port %q has no incoming edge", port.ID),
				})
			}
		}
	}
}

// checkPortCompatibility verifies that explicitly named ports exist and
// warns (not errors) on data type mismatches, since runtime coercion may
// still make the connection valid.
func checkPortCompatibility(g *api.Graph, reg *api.TypeRegistry, res *api.ValidationResult) {
	for _, eid := range g.EdgeIDs() {
		e := g.Edges[eid]
		src, srcOK := g.Nodes[e.SourceID]
		dst, dstOK := g.Nodes[e.TargetID]
		if !srcOK || !dstOK {
			continue
		}
		srcDesc, srcOK := reg.Lookup(src.TypeID)
		dstDesc, dstOK := reg.Lookup(dst.TypeID)
		if !srcOK || !dstOK {
			continue
		}

		srcPort, ok := resolvePort(api.OutputPortsFor(srcDesc, src), e.SourcePort)
		if !ok {
			res.AddError(api.Issue{
				EdgeID:  eid,
				Code:    api.CodeInvalidPort,
				Message: fmt.Sprintf("source port %q is not declared by node type %q", e.SourcePort, src.TypeID),
			})
			continue
		}
		dstPort, ok := resolvePort(dstDesc.InputPorts, e.TargetPort)
		if !ok {
			res.AddError(api.Issue{
				EdgeID:  eid,
				Code:    api.CodeInvalidPort,
				Message: fmt.Sprintf("target port %q is not declared by node type %q", e.TargetPort, dst.TypeID),
			})
			continue
		}

		st, dt := srcPort.DataType, dstPort.DataType
		if st != "" && dt != "" && st != api.DataTypeAny && dt != api.DataTypeAny && st != dt {
			res.AddWarning(api.Issue{
				EdgeID:  eid,
				Code:    api.CodeTypeMismatch,
				Message: fmt.Sprintf("port data types differ: %s -> %s", st, dt),
			})
		}
	}
}

// resolvePort maps an edge's port id onto a declared port. An empty id is
// allowed when the node declares exactly one port on that side.
func resolvePort(ports []api.PortSpec, id string) (api.PortSpec, bool) {
	if id == "" {
		if len(ports) == 1 {
			return ports[0], true
		}
		return api.PortSpec{}, len(ports) == 0
	}
	for _, p := range ports {
		if p.ID == id {
			return p, true
		}
	}
	return api.PortSpec{}, false
}

// checkConditions syntax-checks logic branch conditions with CEL. Parse
// failures are warnings: condition semantics belong to the execution
// engine, the compiler only offers early feedback.
func checkConditions(g *api.Graph, res *api.ValidationResult) {
	for _, id := range g.NodeIDs() {
		n := g.Nodes[id]
		if n.TypeID != api.TypeLogic {
			continue
		}
		for _, label := range api.BranchLabelsFromConfig(n.Config) {
			expr := api.BranchConditionFromConfig(n.Config, label)
			if expr == "" {
				continue
			}
			if err := condition.Check(expr); err != nil {
				res.AddWarning(api.Issue{
					NodeID:  id,
					Code:    api.CodeCondition,
					Message: fmt.Sprintf("branch %q condition does not parse: %v", label, err),
				})
			}
		}
	}
}
