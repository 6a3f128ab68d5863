// Package emit turns linearized plans into backend-specific executable
// artifacts. Emission is offline document/code generation: emitters are
// pure functions of the plan and graph, make no network calls, and either
// produce a complete artifact or a typed error naming the offending node.
package emit

import (
	"fmt"
	"sort"

	"github.com/jkoskela/flowforge/pkg/api"
)

// Emitter produces a backend-specific artifact from a linearized plan.
// The graph provides node labels and configuration; the plan provides
// ordering and branch structure, which the emitter must preserve exactly.
type Emitter interface {
	// Backend names the engine profile this emitter targets.
	Backend() string

	// Supports reports whether the emitter has a mapping for the node
	// type. The simulator uses this to mirror emitter-time failures.
	Supports(typeID string) bool

	// Emit produces the artifact. A plan step whose type has no mapping
	// yields a *api.ConfigError naming the node.
	Emit(plan *api.LinearizedPlan, g *api.Graph) (api.CompiledArtifact, error)
}

// unmappedType builds the ConfigError both emitters raise for a plan step
// whose node type is absent from their table.
func unmappedType(step api.PlanStep, backend string) *api.ConfigError {
	return &api.ConfigError{
		NodeID: step.NodeID,
		TypeID: step.TypeID,
		Code:   api.CodeUnmappedType,
		Reason: fmt.Sprintf("no %s mapping registered for node type %q", backend, step.TypeID),
	}
}

// inputSchema derives a plain-object schema from an entry node's resolved
// config. Keys are emitted in sorted order with coarse JSON types.
func inputSchema(cfg map[string]any) map[string]any {
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	props := make(map[string]any, len(keys))
	for _, k := range keys {
		props[k] = map[string]any{"type": jsonType(cfg[k])}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
	}
}

func jsonType(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case nil:
		return "string" // no value to infer from; strings are the safest input
	default:
		return "string"
	}
}

// stepName returns the engine-facing name of a plan step. Node ids are
// unique within a graph, so they double as step names.
func stepName(step api.PlanStep) string { return step.NodeID }
