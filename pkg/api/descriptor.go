package api

// PortDirection says which side of a node a port sits on.
type PortDirection string

const (
	PortIn  PortDirection = "in"
	PortOut PortDirection = "out"
)

// DataTypeAny is the wildcard port data type. Edges between an "any" port
// and anything else are never flagged for type compatibility.
const DataTypeAny = "any"

// PortSpec is a named, typed slot declared by a node type.
type PortSpec struct {
	ID        string        `json:"id"`
	Direction PortDirection `json:"direction"`
	DataType  string        `json:"data_type,omitempty"`
	Required  bool          `json:"required,omitempty"`
}

// Node type categories. Integration descriptors loaded from a capability
// catalog carry the catalog's own category string instead.
const (
	CategoryTrigger     = "trigger"
	CategoryAI          = "ai"
	CategoryAction      = "action"
	CategoryControl     = "control"
	CategoryData        = "data"
	CategoryIntegration = "integration"
)

// NodeTypeDescriptor describes one node type: its default configuration,
// which config keys are mandatory, and its declared ports. Descriptors are
// immutable once registered; Lookup hands out copies.
type NodeTypeDescriptor struct {
	TypeID         string         `json:"type_id"`
	Category       string         `json:"category"`
	DefaultConfig  map[string]any `json:"default_config,omitempty"`
	RequiredConfig []string       `json:"required_config,omitempty"`
	InputPorts     []PortSpec     `json:"input_ports,omitempty"`
	OutputPorts    []PortSpec     `json:"output_ports,omitempty"`
}

// InputPort returns the declared input port with the given id.
func (d NodeTypeDescriptor) InputPort(id string) (PortSpec, bool) {
	for _, p := range d.InputPorts {
		if p.ID == id {
			return p, true
		}
	}
	return PortSpec{}, false
}

// OutputPort returns the declared output port with the given id.
func (d NodeTypeDescriptor) OutputPort(id string) (PortSpec, bool) {
	for _, p := range d.OutputPorts {
		if p.ID == id {
			return p, true
		}
	}
	return PortSpec{}, false
}

func (d NodeTypeDescriptor) clone() NodeTypeDescriptor {
	c := d
	if d.DefaultConfig != nil {
		c.DefaultConfig = make(map[string]any, len(d.DefaultConfig))
		for k, v := range d.DefaultConfig {
			c.DefaultConfig[k] = v
		}
	}
	c.RequiredConfig = append([]string(nil), d.RequiredConfig...)
	c.InputPorts = append([]PortSpec(nil), d.InputPorts...)
	c.OutputPorts = append([]PortSpec(nil), d.OutputPorts...)
	return c
}

// ResolvedConfig overlays a node's config on the descriptor defaults.
// Neither input is mutated.
func ResolvedConfig(d NodeTypeDescriptor, n *WorkflowNode) map[string]any {
	cfg := make(map[string]any, len(d.DefaultConfig)+len(n.Config))
	for k, v := range d.DefaultConfig {
		cfg[k] = v
	}
	for k, v := range n.Config {
		cfg[k] = v
	}
	return cfg
}

// OutputPortsFor resolves the effective output ports of a node.
//
// For most types that is simply the descriptor's declared output ports. A
// logic node with a concrete branch list in its config instead derives one
// port per configured branch label, in config order, so that a switch over
// N cases exposes N named continuation ports. The config order is the
// declared order for determinism purposes.
func OutputPortsFor(d NodeTypeDescriptor, n *WorkflowNode) []PortSpec {
	labels := BranchLabelsFromConfig(n.Config)
	if len(labels) == 0 {
		return append([]PortSpec(nil), d.OutputPorts...)
	}
	ports := make([]PortSpec, 0, len(labels))
	for _, l := range labels {
		ports = append(ports, PortSpec{ID: l, Direction: PortOut, DataType: DataTypeAny})
	}
	return ports
}

// Branching reports whether the node exposes more than one named output
// port, which makes it a branch point during linearization.
func Branching(d NodeTypeDescriptor, n *WorkflowNode) bool {
	return len(OutputPortsFor(d, n)) > 1
}

// BranchLabelsFromConfig extracts branch labels from a logic node's
// "branches" config entry ([{condition, label}, ...]). It returns nil when
// the config declares no usable branches.
func BranchLabelsFromConfig(cfg map[string]any) []string {
	raw, ok := cfg["branches"]
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok || len(items) == 0 {
		return nil
	}
	var labels []string
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil
		}
		label, _ := m["label"].(string)
		if label == "" {
			return nil
		}
		labels = append(labels, label)
	}
	return labels
}

// BranchConditionFromConfig returns the condition expression configured for
// the given branch label, or "" when the branch has no condition (an
// unconditioned branch acts as a default during simulation).
func BranchConditionFromConfig(cfg map[string]any, label string) string {
	raw, ok := cfg["branches"]
	if !ok {
		return ""
	}
	items, ok := raw.([]any)
	if !ok {
		return ""
	}
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if l, _ := m["label"].(string); l == label {
			cond, _ := m["condition"].(string)
			return cond
		}
	}
	return ""
}
