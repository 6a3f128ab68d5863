package flowforge

import (
	"fmt"

	"github.com/jkoskela/flowforge/pkg/api"
)

// GraphBuilder provides a fluent API for defining workflow graphs:
//
//	g := flowforge.NewGraph("support-triage").
//	    Node("start", flowforge.TypeManual, nil).
//	    Node("classify", flowforge.TypePrompt, map[string]any{
//	        "instruction": "Classify the ticket",
//	        "model":       "gpt-4o",
//	    }).
//	    Node("route", flowforge.TypeLogic, map[string]any{
//	        "condition_type": "if_else",
//	        "condition":      "input.priority == \"high\"",
//	    }).
//	    Edge("start", "classify").
//	    Edge("classify", "route").
//	    Graph()
//
//	plan, err := flowforge.Compile(g, flowforge.NewCoreRegistry())
type GraphBuilder struct {
	graph *api.Graph
	edges int
}

// NewGraph creates a new graph builder with the given display name.
func NewGraph(name string) *GraphBuilder {
	return &GraphBuilder{graph: api.NewGraph(name)}
}

// Node appends a node with the given id, node type, and configuration.
func (b *GraphBuilder) Node(id, typeID string, config map[string]any) *GraphBuilder {
	if id == "" {
		panic("flowforge: node id must not be empty")
	}
	if typeID == "" {
		panic(fmt.Sprintf("flowforge: node %q has empty type id", id))
	}

	b.graph.AddNode(&api.WorkflowNode{
		ID:     id,
		TypeID: typeID,
		Config: config,
	})
	return b
}

// NodeAt is like Node but places the node at a canvas position.
func (b *GraphBuilder) NodeAt(id, typeID string, config map[string]any, x, y float64) *GraphBuilder {
	b.Node(id, typeID, config)
	b.graph.Nodes[id].Position = api.Position{X: x, Y: y}
	return b
}

// Edge connects two nodes without naming ports. The target's single
// input port and the source's single output port are implied. Panics
// if either endpoint is unknown.
func (b *GraphBuilder) Edge(sourceID, targetID string) *GraphBuilder {
	return b.EdgeFrom(sourceID, "", targetID, "")
}

// EdgeFrom connects a specific source port to a specific target port.
// Panics if either endpoint is unknown.
func (b *GraphBuilder) EdgeFrom(sourceID, sourcePort, targetID, targetPort string) *GraphBuilder {
	b.edges++
	err := b.graph.AddEdge(&api.WorkflowEdge{
		ID:         fmt.Sprintf("e%d", b.edges),
		SourceID:   sourceID,
		SourcePort: sourcePort,
		TargetID:   targetID,
		TargetPort: targetPort,
	})
	if err != nil {
		panic(fmt.Sprintf("flowforge: edge %s -> %s: %v", sourceID, targetID, err))
	}
	return b
}

// Graph returns the assembled graph.
func (b *GraphBuilder) Graph() *api.Graph {
	return b.graph
}

// Validate is a convenience that checks the assembled graph against
// the registry.
func (b *GraphBuilder) Validate(reg *TypeRegistry) *ValidationResult {
	return Validate(b.graph, reg)
}
