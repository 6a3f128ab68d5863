package emit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkoskela/flowforge/pkg/api"
)

func TestScript_LinearFlow(t *testing.T) {
	reg := api.NewCoreRegistry()
	g := linearGraph(t)
	plan := compileGraph(t, g, reg)

	artifact, err := NewScriptEmitter(reg).Emit(plan, g)
	require.NoError(t, err)
	require.Equal(t, api.BackendScript, artifact.Backend())

	bundle := artifact.(*api.ScriptBundle)

	// Two step modules plus the failure handler; the entry renders no module.
	require.Len(t, bundle.Modules, 3)
	require.Equal(t, []string{"step_01_summarize", "step_02_post"}, bundle.Manifest.ModuleOrder)
	require.Equal(t, "on_failure", bundle.Manifest.FailureModule)
	require.Equal(t, "on_failure", bundle.Modules[2].Name)

	for _, mod := range bundle.Modules {
		require.Equal(t, "javascript", mod.Language)
		require.Contains(t, mod.Content, "export async function run(")
	}
}

func TestScript_ModuleNamesSanitized(t *testing.T) {
	reg := api.NewCoreRegistry()
	g := api.NewGraph("odd-ids")
	g.AddNode(&api.WorkflowNode{ID: "start", TypeID: api.TypeManual})
	g.AddNode(&api.WorkflowNode{ID: "Send E-Mail!", TypeID: api.TypeMemory, Config: map[string]any{
		"operation": "store", "key": "mail",
	}})
	addEdge(t, g, &api.WorkflowEdge{ID: "e1", SourceID: "start", TargetID: "Send E-Mail!"})
	plan := compileGraph(t, g, reg)

	artifact, err := NewScriptEmitter(reg).Emit(plan, g)
	require.NoError(t, err)

	bundle := artifact.(*api.ScriptBundle)
	require.Equal(t, []string{"step_01_send_e_mail_"}, bundle.Manifest.ModuleOrder)
}

func TestScript_ConfigValuesCannotEscapeTheSource(t *testing.T) {
	reg := api.NewCoreRegistry()
	g := api.NewGraph("hostile")
	g.AddNode(&api.WorkflowNode{ID: "start", TypeID: api.TypeManual})
	g.AddNode(&api.WorkflowNode{ID: "llm", TypeID: api.TypePrompt, Config: map[string]any{
		"instruction": `"; process.exit(1); //`,
		"model":       "gpt-4o",
	}})
	addEdge(t, g, &api.WorkflowEdge{ID: "e1", SourceID: "start", TargetID: "llm"})
	plan := compileGraph(t, g, reg)

	artifact, err := NewScriptEmitter(reg).Emit(plan, g)
	require.NoError(t, err)

	content := artifact.(*api.ScriptBundle).Modules[0].Content
	// The quote arrives escaped inside the JSON literal, never as raw source.
	require.Contains(t, content, `\"; process.exit(1); //`)
	require.NotContains(t, content, `"instruction": ""; process.exit(1)`)
}

func TestScript_ManifestTransitionsPreserveBranches(t *testing.T) {
	reg := api.NewCoreRegistry()
	g := branchGraph(t)
	plan := compileGraph(t, g, reg)

	artifact, err := NewScriptEmitter(reg).Emit(plan, g)
	require.NoError(t, err)

	manifest := artifact.(*api.ScriptBundle).Manifest
	require.Equal(t, []api.ModuleTransition{
		{From: "step_00_start", To: "step_01_gate"},
		{From: "step_01_gate", Label: "true", To: "step_02_page"},
		{From: "step_01_gate", Label: "false", To: ""},
	}, manifest.Transitions)
}

func TestScript_ManifestSummaryAndSchema(t *testing.T) {
	reg := api.NewCoreRegistry()
	g := linearGraph(t)
	plan := compileGraph(t, g, reg)

	artifact, err := NewScriptEmitter(reg).Emit(plan, g)
	require.NoError(t, err)

	manifest := artifact.(*api.ScriptBundle).Manifest
	require.Contains(t, manifest.Summary, "notify-flow")
	require.Contains(t, manifest.Summary, "2 generated modules")

	require.Equal(t, "object", manifest.InputSchema["type"])
	props, ok := manifest.InputSchema["properties"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, props, "input_fields")
}

func TestScript_UnmappedTypeFailsClosed(t *testing.T) {
	reg := api.NewCoreRegistry()
	reg.MustRegister(api.NodeTypeDescriptor{
		TypeID:   "custom.quantum",
		Category: api.CategoryAction,
		InputPorts: []api.PortSpec{
			{ID: "in", Direction: api.PortIn, DataType: api.DataTypeAny, Required: true},
		},
	})

	g := api.NewGraph("exotic")
	g.AddNode(&api.WorkflowNode{ID: "start", TypeID: api.TypeManual})
	g.AddNode(&api.WorkflowNode{ID: "q", TypeID: "custom.quantum"})
	addEdge(t, g, &api.WorkflowEdge{ID: "e1", SourceID: "start", TargetID: "q"})
	plan := compileGraph(t, g, reg)

	_, err := NewScriptEmitter(reg).Emit(plan, g)
	require.Error(t, err)

	var cerr *api.ConfigError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "q", cerr.NodeID)
}

func TestScript_SupportsCatalogIntegrations(t *testing.T) {
	e := NewScriptEmitter(api.NewCoreRegistry())
	require.True(t, e.Supports(api.TypePrompt))
	require.True(t, e.Supports("integration.slack"))
	require.False(t, e.Supports("custom.quantum"))
}
