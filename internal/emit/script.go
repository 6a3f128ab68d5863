package emit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/jkoskela/flowforge/pkg/api"
)

// ScriptEmitter synthesizes one self-contained executable module per
// non-entry plan step, plus a manifest that sequences them. Module bodies
// come from a fixed template per node type with the node's resolved config
// embedded as literal, JSON-escaped data — generation is pure string work
// and never executes anything.
type ScriptEmitter struct {
	reg       *api.TypeRegistry
	templates map[string]*template.Template
}

// NewScriptEmitter builds an emitter with the per-type code templates.
func NewScriptEmitter(reg *api.TypeRegistry) *ScriptEmitter {
	return &ScriptEmitter{
		reg:       reg,
		templates: parseModuleTemplates(),
	}
}

// Backend implements Emitter.
func (e *ScriptEmitter) Backend() string { return api.BackendScript }

// Supports implements Emitter. Catalog integrations ("integration.<id>")
// share the integration template.
func (e *ScriptEmitter) Supports(typeID string) bool {
	_, ok := e.templates[e.templateKey(typeID)]
	return ok
}

func (e *ScriptEmitter) templateKey(typeID string) string {
	if strings.HasPrefix(typeID, api.TypeIntegration+".") {
		return api.TypeIntegration
	}
	return typeID
}

// Emit implements Emitter.
func (e *ScriptEmitter) Emit(plan *api.LinearizedPlan, g *api.Graph) (api.CompiledArtifact, error) {
	if plan.Len() == 0 {
		return nil, api.NewStructuralError(api.Issue{
			Code:    api.CodeNoEntry,
			Message: "plan is empty",
		})
	}

	bundle := &api.ScriptBundle{}
	moduleNames := make([]string, plan.Len())
	for i, step := range plan.Steps {
		moduleNames[i] = moduleName(i, step.NodeID)
	}

	for i, step := range plan.Steps {
		if i == 0 {
			// The entry step does not execute work of its own; it defines
			// the bundle's input schema below.
			continue
		}
		mod, err := e.module(moduleNames[i], step, g)
		if err != nil {
			return nil, err
		}
		bundle.Modules = append(bundle.Modules, mod)
		bundle.Manifest.ModuleOrder = append(bundle.Manifest.ModuleOrder, mod.Name)
	}

	bundle.Modules = append(bundle.Modules, failureModule())
	bundle.Manifest.FailureModule = failureModuleName

	entryNode := g.Nodes[plan.EntryNodeID]
	entryDesc, ok := e.reg.Lookup(entryNode.TypeID)
	if !ok {
		return nil, unmappedType(plan.Steps[0], api.BackendScript)
	}
	bundle.Manifest.InputSchema = inputSchema(api.ResolvedConfig(entryDesc, entryNode))
	bundle.Manifest.Summary = fmt.Sprintf(
		"flow %q: %d generated modules, entry %s", g.Name, len(bundle.Manifest.ModuleOrder), plan.EntryNodeID)
	bundle.Manifest.Transitions = transitions(plan, moduleNames)

	return bundle, nil
}

// transitions records the full successor structure between modules so the
// manifest preserves every branch, including terminal ones.
func transitions(plan *api.LinearizedPlan, moduleNames []string) []api.ModuleTransition {
	var out []api.ModuleTransition
	for i, step := range plan.Steps {
		if step.Branching() {
			for _, b := range step.Branches {
				t := api.ModuleTransition{From: moduleNames[i], Label: b.Label}
				if b.Target != api.NoStep {
					t.To = moduleNames[b.Target]
				}
				out = append(out, t)
			}
		} else if step.Next != api.NoStep {
			out = append(out, api.ModuleTransition{From: moduleNames[i], To: moduleNames[step.Next]})
		}
	}
	return out
}

type moduleData struct {
	ModuleName string
	NodeID     string
	TypeID     string
	Label      string
	ConfigJSON string
}

func (e *ScriptEmitter) module(name string, step api.PlanStep, g *api.Graph) (api.GeneratedModule, error) {
	tmpl, ok := e.templates[e.templateKey(step.TypeID)]
	if !ok {
		return api.GeneratedModule{}, unmappedType(step, api.BackendScript)
	}
	node := g.Nodes[step.NodeID]
	desc, ok := e.reg.Lookup(step.TypeID)
	if !ok {
		return api.GeneratedModule{}, unmappedType(step, api.BackendScript)
	}

	cfgJSON, err := marshalConfig(api.ResolvedConfig(desc, node))
	if err != nil {
		return api.GeneratedModule{}, &api.ConfigError{
			NodeID: step.NodeID,
			TypeID: step.TypeID,
			Code:   api.CodeMissingConfig,
			Reason: fmt.Sprintf("config is not serializable: %v", err),
		}
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, moduleData{
		ModuleName: name,
		NodeID:     node.ID,
		TypeID:     step.TypeID,
		Label:      node.Label,
		ConfigJSON: cfgJSON,
	})
	if err != nil {
		return api.GeneratedModule{}, fmt.Errorf("render module %s: %w", name, err)
	}

	return api.GeneratedModule{
		Name:     name,
		Language: "javascript",
		Content:  buf.String(),
	}, nil
}

// marshalConfig embeds config as a literal object. The JSON encoder
// escapes every interpolated value, so no config string can break out of
// the generated source.
func marshalConfig(cfg map[string]any) (string, error) {
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func moduleName(index int, nodeID string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(nodeID) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return fmt.Sprintf("step_%02d_%s", index, b.String())
}

var _ Emitter = (*ScriptEmitter)(nil)
