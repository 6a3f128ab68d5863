package emit

import (
	"fmt"

	"github.com/jkoskela/flowforge/pkg/api"
)

// chainMapping is one row of the step-chain emitter's dispatch table: the
// engine-native capability identifiers for a node type plus its config
// transform. One record per type id, looked up once per step — never a
// cascading type switch.
type chainMapping struct {
	Capability string
	Action     string

	// TriggerName is set for types that can stand as the flow trigger.
	// Types without one get the generic webhook trigger when they are
	// the entry node.
	TriggerName string

	// Transform reshapes a node's resolved config into the engine's
	// settings object. It must not mutate its input.
	Transform func(cfg map[string]any) map[string]any
}

// StepChainEmitter emits the declarative engine's flow document.
type StepChainEmitter struct {
	reg      *api.TypeRegistry
	mappings map[string]chainMapping
}

// StepChainOption customizes a StepChainEmitter.
type StepChainOption func(*StepChainEmitter)

// WithCapabilityMapping registers (or overrides) the engine identifiers
// for a node type. Catalog-loaded integrations extend the table this way.
func WithCapabilityMapping(typeID, capability, action string) StepChainOption {
	return func(e *StepChainEmitter) {
		e.mappings[typeID] = chainMapping{
			Capability: capability,
			Action:     action,
			Transform:  passthroughTransform,
		}
	}
}

// WithTriggerMapping marks a node type as a native trigger: when a node of
// this type is the entry, the emitter uses the given trigger name instead
// of synthesizing a generic webhook trigger.
func WithTriggerMapping(typeID, capability, triggerName string) StepChainOption {
	return func(e *StepChainEmitter) {
		m, ok := e.mappings[typeID]
		if !ok {
			m = chainMapping{Transform: passthroughTransform}
		}
		m.Capability = capability
		m.TriggerName = triggerName
		e.mappings[typeID] = m
	}
}

// NewStepChainEmitter builds an emitter with the core mapping table.
func NewStepChainEmitter(reg *api.TypeRegistry, opts ...StepChainOption) *StepChainEmitter {
	e := &StepChainEmitter{
		reg:      reg,
		mappings: coreChainMappings(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Backend implements Emitter.
func (e *StepChainEmitter) Backend() string { return api.BackendStepChain }

// Supports implements Emitter.
func (e *StepChainEmitter) Supports(typeID string) bool {
	_, ok := e.mappings[typeID]
	return ok
}

// Emit implements Emitter. The entry step becomes the trigger definition;
// every other step becomes a chain step wired via nextAction (linear) or
// nextActions (branching, one key per branch label, terminal branches
// keeping their key with an empty pointer).
func (e *StepChainEmitter) Emit(plan *api.LinearizedPlan, g *api.Graph) (api.CompiledArtifact, error) {
	if plan.Len() == 0 {
		return nil, api.NewStructuralError(api.Issue{
			Code:    api.CodeNoEntry,
			Message: "plan is empty",
		})
	}

	doc := &api.StepChainDocument{DisplayName: g.Name}

	entryStep := plan.Steps[0]
	trigger, err := e.trigger(entryStep, g)
	if err != nil {
		return nil, err
	}
	doc.Trigger = trigger

	// When the entry chains straight into the first real step, that step
	// simply comes first in the steps array; the engine starts there
	// after the trigger fires.
	for i := 1; i < plan.Len(); i++ {
		step := plan.Steps[i]
		chainStep, err := e.chainStep(step, plan, g)
		if err != nil {
			return nil, err
		}
		doc.Steps = append(doc.Steps, chainStep)
	}

	return doc, nil
}

func (e *StepChainEmitter) trigger(step api.PlanStep, g *api.Graph) (api.TriggerDefinition, error) {
	mapping, ok := e.mappings[step.TypeID]
	if !ok {
		return api.TriggerDefinition{}, unmappedType(step, api.BackendStepChain)
	}
	node := g.Nodes[step.NodeID]
	desc, _ := e.reg.Lookup(step.TypeID)
	cfg := api.ResolvedConfig(desc, node)

	if mapping.TriggerName != "" {
		return api.TriggerDefinition{
			Name:       mapping.TriggerName,
			Capability: mapping.Capability,
			Settings:   mapping.Transform(cfg),
		}, nil
	}

	// Manual entry: a generic webhook trigger whose input schema is
	// derived from the entry node's config.
	return api.TriggerDefinition{
		Name:       "webhook",
		Capability: "core/webhook",
		Settings: map[string]any{
			"inputSchema": inputSchema(cfg),
		},
	}, nil
}

func (e *StepChainEmitter) chainStep(step api.PlanStep, plan *api.LinearizedPlan, g *api.Graph) (api.ChainStep, error) {
	mapping, ok := e.mappings[step.TypeID]
	if !ok {
		return api.ChainStep{}, unmappedType(step, api.BackendStepChain)
	}
	node := g.Nodes[step.NodeID]
	desc, _ := e.reg.Lookup(step.TypeID)

	cs := api.ChainStep{
		Name:       stepName(step),
		Capability: mapping.Capability,
		Action:     mapping.Action,
		Settings:   mapping.Transform(api.ResolvedConfig(desc, node)),
	}

	if step.Branching() {
		cs.NextActions = make(map[string]string, len(step.Branches))
		for _, b := range step.Branches {
			next := ""
			if b.Target != api.NoStep {
				next = plan.Steps[b.Target].NodeID
			}
			cs.NextActions[b.Label] = next
		}
	} else if step.Next != api.NoStep {
		cs.NextAction = plan.Steps[step.Next].NodeID
	}
	return cs, nil
}

func coreChainMappings() map[string]chainMapping {
	return map[string]chainMapping{
		api.TypeManual: {
			Capability: "core/webhook",
			Action:     "receive",
			Transform:  passthroughTransform,
		},
		api.TypePrompt: {
			Capability: "core/llm",
			Action:     "generate",
			Transform:  promptTransform,
		},
		api.TypeTool: {
			Capability: "core/http",
			Action:     "send_request",
			Transform:  toolTransform,
		},
		api.TypeLogic: {
			Capability: "core/router",
			Action:     "route",
			Transform:  logicTransform,
		},
		api.TypeMemory: {
			Capability: "core/storage",
			Action:     "access",
			Transform:  memoryTransform,
		},
		api.TypeIntegration: {
			Capability: "core/integration",
			Action:     "call",
			Transform:  integrationTransform,
		},
	}
}

func passthroughTransform(cfg map[string]any) map[string]any {
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	return out
}

func promptTransform(cfg map[string]any) map[string]any {
	return map[string]any{
		"prompt":      cfg["instruction"],
		"model":       cfg["model"],
		"temperature": cfg["temperature"],
		"maxTokens":   cfg["max_tokens"],
		"variables":   cfg["variables"],
	}
}

// toolTransform nests the flat method/url/headers/body parameters into the
// engine's request object.
func toolTransform(cfg map[string]any) map[string]any {
	params, _ := cfg["parameters"].(map[string]any)
	request := map[string]any{
		"method":  defaultString(params["method"], "GET"),
		"url":     params["url"],
		"headers": params["headers"],
		"body":    params["body"],
	}
	return map[string]any{
		"service": cfg["service"],
		"action":  cfg["action"],
		"request": request,
	}
}

func logicTransform(cfg map[string]any) map[string]any {
	return map[string]any{
		"conditionType": cfg["condition_type"],
		"condition":     cfg["condition"],
		"branches":      cfg["branches"],
	}
}

func memoryTransform(cfg map[string]any) map[string]any {
	return map[string]any{
		"operation": cfg["operation"],
		"key":       cfg["key"],
		"value":     cfg["value"],
		"scope":     defaultString(cfg["scope"], "run"),
	}
}

func integrationTransform(cfg map[string]any) map[string]any {
	return map[string]any{
		"capabilityId": cfg["capability_id"],
		"request": map[string]any{
			"endpoint": cfg["endpoint"],
			"method":   defaultString(cfg["method"], "GET"),
			"headers":  cfg["headers"],
			"body":     cfg["body"],
		},
		"responseMapping": cfg["response_mapping"],
	}
}

func defaultString(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

var _ Emitter = (*StepChainEmitter)(nil)

// String implements fmt.Stringer for debug logging.
func (e *StepChainEmitter) String() string {
	return fmt.Sprintf("StepChainEmitter(%d mappings)", len(e.mappings))
}
