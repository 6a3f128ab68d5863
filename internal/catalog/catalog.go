// Package catalog loads external-capability descriptors from YAML and
// registers them as integration node types. The catalog service itself is
// an external collaborator; this package only consumes its descriptor
// format.
package catalog

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jkoskela/flowforge/internal/emit"
	"github.com/jkoskela/flowforge/pkg/api"
)

// Capability describes one externally-registered integration: which config
// fields it needs, where it fits in the taxonomy, and the engine-native
// identifiers the step-chain emitter should map it to.
type Capability struct {
	ID          string         `yaml:"id"`
	DisplayName string         `yaml:"display_name"`
	Category    string         `yaml:"category"`
	Required    []string       `yaml:"required"`
	Defaults    map[string]any `yaml:"defaults"`

	// Engine-native identifiers for the step-chain backend.
	EngineCapability string `yaml:"engine_capability"`
	EngineAction     string `yaml:"engine_action"`

	// Trigger, when set, names the engine trigger a node of this type
	// provides when used as the entry node.
	Trigger string `yaml:"trigger"`
}

// TypeID returns the node type id a capability registers under.
func (c Capability) TypeID() string {
	return api.TypeIntegration + "." + c.ID
}

type catalogFile struct {
	Capabilities []Capability `yaml:"capabilities"`
}

// Load parses a catalog document.
func Load(r io.Reader) ([]Capability, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i, c := range f.Capabilities {
		if c.ID == "" {
			return nil, fmt.Errorf("parse catalog: capability %d has no id", i)
		}
	}
	return f.Capabilities, nil
}

// Register adds a descriptor per capability to the registry. Descriptors
// mirror the generic integration type, with the capability's own required
// fields and defaults layered on.
func Register(reg *api.TypeRegistry, caps []Capability) error {
	for _, c := range caps {
		d := api.NodeTypeDescriptor{
			TypeID:         c.TypeID(),
			Category:       defaultString(c.Category, api.CategoryIntegration),
			DefaultConfig:  map[string]any{},
			RequiredConfig: append([]string(nil), c.Required...),
			InputPorts: []api.PortSpec{
				{ID: "in", Direction: api.PortIn, DataType: api.DataTypeAny, Required: false},
			},
			OutputPorts: []api.PortSpec{
				{ID: "out", Direction: api.PortOut, DataType: "object"},
			},
		}
		for k, v := range c.Defaults {
			d.DefaultConfig[k] = v
		}
		if err := reg.Register(d); err != nil {
			return fmt.Errorf("register capability %s: %w", c.ID, err)
		}
	}
	return nil
}

// EmitterOptions builds the step-chain mapping options for the given
// capabilities, extending the emitter's fixed table with catalog entries.
func EmitterOptions(caps []Capability) []emit.StepChainOption {
	var opts []emit.StepChainOption
	for _, c := range caps {
		capability := defaultString(c.EngineCapability, "integration/"+c.ID)
		opts = append(opts, emit.WithCapabilityMapping(
			c.TypeID(), capability, defaultString(c.EngineAction, "call")))
		if c.Trigger != "" {
			opts = append(opts, emit.WithTriggerMapping(c.TypeID(), capability, c.Trigger))
		}
	}
	return opts
}

func defaultString(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
