package api

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Position is presentation-only canvas placement for a node.
// The compiler ignores it entirely; it is carried so that a graph can
// round-trip through the core without losing editor layout.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WorkflowNode is one configured block in a graph.
type WorkflowNode struct {
	ID          string         `json:"id"`
	TypeID      string         `json:"type_id"`
	Label       string         `json:"label,omitempty"`
	Description string         `json:"description,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
	Position    Position       `json:"position"`
}

// Clone returns a deep copy of the node. Config values are copied one
// level deep, which is sufficient because graph edits replace whole
// config values rather than mutating nested structures in place.
func (n *WorkflowNode) Clone() *WorkflowNode {
	c := *n
	if n.Config != nil {
		c.Config = make(map[string]any, len(n.Config))
		for k, v := range n.Config {
			c.Config[k] = v
		}
	}
	return &c
}

// WorkflowEdge is a directed connection from a source node's output port
// to a target node's input port. Port ids may be empty when the node type
// declares a single port on that side.
type WorkflowEdge struct {
	ID         string `json:"id"`
	SourceID   string `json:"source"`
	SourcePort string `json:"source_port,omitempty"`
	TargetID   string `json:"target"`
	TargetPort string `json:"target_port,omitempty"`
}

// Graph is the node/edge container edited by UI layers and consumed by the
// compiler. It performs no semantic validation itself; that is the
// validator's job. The only structural rule enforced here is that an edge
// may not reference a node the graph does not contain.
//
// Graph is not safe for concurrent mutation. Compiler stages never mutate
// a graph; hand each stage its own value (or a Clone) when in doubt.
type Graph struct {
	Name  string
	Nodes map[string]*WorkflowNode
	Edges map[string]*WorkflowEdge
}

// NewGraph returns an empty graph with the given display name.
func NewGraph(name string) *Graph {
	return &Graph{
		Name:  name,
		Nodes: make(map[string]*WorkflowNode),
		Edges: make(map[string]*WorkflowEdge),
	}
}

// AddNode inserts or replaces a node. The operation is total: replacing an
// existing node keeps its edges, since edge endpoints are referenced by id.
func (g *Graph) AddNode(n *WorkflowNode) {
	g.Nodes[n.ID] = n
}

// AddEdge inserts or replaces an edge. It fails with ErrInvalidReference
// if either endpoint names a node that is not in the graph.
func (g *Graph) AddEdge(e *WorkflowEdge) error {
	if _, ok := g.Nodes[e.SourceID]; !ok {
		return fmt.Errorf("edge %s: source node %q: %w", e.ID, e.SourceID, ErrInvalidReference)
	}
	if _, ok := g.Nodes[e.TargetID]; !ok {
		return fmt.Errorf("edge %s: target node %q: %w", e.ID, e.TargetID, ErrInvalidReference)
	}
	g.Edges[e.ID] = e
	return nil
}

// RemoveNode deletes a node and cascades deletion of every edge that
// references it. Removing an unknown id is a no-op.
func (g *Graph) RemoveNode(id string) {
	delete(g.Nodes, id)
	for eid, e := range g.Edges {
		if e.SourceID == id || e.TargetID == id {
			delete(g.Edges, eid)
		}
	}
}

// RemoveEdge deletes an edge. Removing an unknown id is a no-op.
func (g *Graph) RemoveEdge(id string) {
	delete(g.Edges, id)
}

// IncomingEdges returns the edges targeting the given node, ordered by
// edge id so that callers iterating them behave deterministically.
func (g *Graph) IncomingEdges(nodeID string) []*WorkflowEdge {
	var out []*WorkflowEdge
	for _, e := range g.Edges {
		if e.TargetID == nodeID {
			out = append(out, e)
		}
	}
	sortEdges(out)
	return out
}

// OutgoingEdges returns the edges leaving the given node, ordered by edge id.
func (g *Graph) OutgoingEdges(nodeID string) []*WorkflowEdge {
	var out []*WorkflowEdge
	for _, e := range g.Edges {
		if e.SourceID == nodeID {
			out = append(out, e)
		}
	}
	sortEdges(out)
	return out
}

// NodeIDs returns all node ids in sorted order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EdgeIDs returns all edge ids in sorted order.
func (g *Graph) EdgeIDs() []string {
	ids := make([]string, 0, len(g.Edges))
	for id := range g.Edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := NewGraph(g.Name)
	for id, n := range g.Nodes {
		c.Nodes[id] = n.Clone()
	}
	for id, e := range g.Edges {
		ec := *e
		c.Edges[id] = &ec
	}
	return c
}

// graphWire is the JSON shape exchanged with UI layers: flat node/edge
// arrays rather than maps, in the style editors based on node canvases emit.
type graphWire struct {
	Name  string          `json:"name"`
	Nodes []*WorkflowNode `json:"nodes"`
	Edges []*WorkflowEdge `json:"edges"`
}

// MarshalJSON encodes the graph with nodes and edges sorted by id, so the
// same graph always serializes to the same bytes.
func (g *Graph) MarshalJSON() ([]byte, error) {
	w := graphWire{Name: g.Name}
	for _, id := range g.NodeIDs() {
		w.Nodes = append(w.Nodes, g.Nodes[id])
	}
	for _, id := range g.EdgeIDs() {
		w.Edges = append(w.Edges, g.Edges[id])
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire shape. Edges referencing unknown nodes are
// accepted here and reported by the validator, because a graph arriving
// from an editor may legitimately be mid-edit.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var w graphWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	g.Name = w.Name
	g.Nodes = make(map[string]*WorkflowNode, len(w.Nodes))
	g.Edges = make(map[string]*WorkflowEdge, len(w.Edges))
	for _, n := range w.Nodes {
		if n.ID == "" {
			return fmt.Errorf("graph %q: node with empty id", w.Name)
		}
		g.Nodes[n.ID] = n
	}
	for _, e := range w.Edges {
		if e.ID == "" {
			return fmt.Errorf("graph %q: edge with empty id", w.Name)
		}
		g.Edges[e.ID] = e
	}
	return nil
}

func sortEdges(edges []*WorkflowEdge) {
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
}
