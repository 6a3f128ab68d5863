package api

// Core node type ids. Integration descriptors loaded from a capability
// catalog are registered as "integration.<capability>".
const (
	TypeManual      = "manual"
	TypePrompt      = "prompt"
	TypeTool        = "tool"
	TypeLogic       = "logic"
	TypeMemory      = "memory"
	TypeIntegration = "integration"
)

// NewCoreRegistry returns a registry pre-loaded with the core taxonomy.
func NewCoreRegistry() *TypeRegistry {
	r := NewTypeRegistry()
	for _, d := range coreDescriptors() {
		r.MustRegister(d)
	}
	return r
}

func coreDescriptors() []NodeTypeDescriptor {
	return []NodeTypeDescriptor{
		{
			// Manual entry point. No inputs, so a manual node is always a
			// candidate entry; the step-chain emitter turns it into a
			// generic webhook trigger.
			TypeID:   TypeManual,
			Category: CategoryTrigger,
			DefaultConfig: map[string]any{
				"input_fields": []any{},
			},
			OutputPorts: []PortSpec{
				{ID: "out", Direction: PortOut, DataType: DataTypeAny},
			},
		},
		{
			TypeID:   TypePrompt,
			Category: CategoryAI,
			DefaultConfig: map[string]any{
				"instruction": "",
				"model":       "",
				"temperature": 0.7,
				"max_tokens":  1024,
				"variables":   []any{},
			},
			RequiredConfig: []string{"instruction", "model"},
			InputPorts: []PortSpec{
				{ID: "in", Direction: PortIn, DataType: DataTypeAny, Required: true},
			},
			OutputPorts: []PortSpec{
				{ID: "out", Direction: PortOut, DataType: "text"},
			},
		},
		{
			TypeID:   TypeTool,
			Category: CategoryAction,
			DefaultConfig: map[string]any{
				"service":    "",
				"action":     "",
				"parameters": map[string]any{},
			},
			RequiredConfig: []string{"service", "action"},
			InputPorts: []PortSpec{
				{ID: "in", Direction: PortIn, DataType: DataTypeAny, Required: true},
			},
			OutputPorts: []PortSpec{
				{ID: "out", Direction: PortOut, DataType: "object"},
			},
		},
		{
			// Logic nodes default to two-way if-else ports. A configured
			// branch list overrides these with one port per case; see
			// OutputPortsFor.
			TypeID:   TypeLogic,
			Category: CategoryControl,
			DefaultConfig: map[string]any{
				"condition_type": "if-else",
				"condition":      "",
				"branches":       []any{},
			},
			RequiredConfig: []string{"condition_type"},
			InputPorts: []PortSpec{
				{ID: "in", Direction: PortIn, DataType: DataTypeAny, Required: true},
			},
			OutputPorts: []PortSpec{
				{ID: "true", Direction: PortOut, DataType: DataTypeAny},
				{ID: "false", Direction: PortOut, DataType: DataTypeAny},
			},
		},
		{
			TypeID:   TypeMemory,
			Category: CategoryData,
			DefaultConfig: map[string]any{
				"operation": "store",
				"key":       "",
				"value":     nil,
				"scope":     "run",
			},
			RequiredConfig: []string{"operation", "key"},
			InputPorts: []PortSpec{
				{ID: "in", Direction: PortIn, DataType: DataTypeAny, Required: true},
			},
			OutputPorts: []PortSpec{
				{ID: "out", Direction: PortOut, DataType: DataTypeAny},
			},
		},
		{
			TypeID:   TypeIntegration,
			Category: CategoryIntegration,
			DefaultConfig: map[string]any{
				"capability_id":    "",
				"endpoint":         "",
				"method":           "GET",
				"headers":          map[string]any{},
				"body":             nil,
				"response_mapping": map[string]any{},
			},
			RequiredConfig: []string{"capability_id", "endpoint"},
			InputPorts: []PortSpec{
				{ID: "in", Direction: PortIn, DataType: DataTypeAny, Required: true},
			},
			OutputPorts: []PortSpec{
				{ID: "out", Direction: PortOut, DataType: "object"},
			},
		},
	}
}
