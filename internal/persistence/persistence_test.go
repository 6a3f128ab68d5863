package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkoskela/flowforge/pkg/api"
)

func TestArtifactRecord_StepChainRoundtrip(t *testing.T) {
	doc := &api.StepChainDocument{
		DisplayName: "triage",
		Trigger: api.TriggerDefinition{
			Name:       "webhook",
			Capability: "core/webhook",
		},
		Steps: []api.ChainStep{
			{Name: "classify", Capability: "core/llm", Action: "generate", NextAction: "notify"},
			{Name: "notify", Capability: "core/http", Action: "send_request"},
		},
	}

	rec, err := NewArtifactRecord("triage", doc)
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	require.Equal(t, api.BackendStepChain, rec.Backend)
	require.Equal(t, "triage", rec.GraphName)

	decoded, err := DecodeArtifact(rec)
	require.NoError(t, err)

	got, ok := decoded.(*api.StepChainDocument)
	require.True(t, ok)
	require.Equal(t, doc.DisplayName, got.DisplayName)
	require.Len(t, got.Steps, 2)
	require.Equal(t, "notify", got.Steps[0].NextAction)
}

func TestArtifactRecord_ScriptRoundtrip(t *testing.T) {
	bundle := &api.ScriptBundle{
		Modules: []api.GeneratedModule{
			{Name: "step_01_classify", Language: "javascript", Content: "export async function run() {}"},
		},
	}
	bundle.Manifest.ModuleOrder = []string{"step_01_classify"}
	bundle.Manifest.FailureModule = "on_failure"

	rec, err := NewArtifactRecord("triage", bundle)
	require.NoError(t, err)
	require.Equal(t, api.BackendScript, rec.Backend)

	decoded, err := DecodeArtifact(rec)
	require.NoError(t, err)

	got, ok := decoded.(*api.ScriptBundle)
	require.True(t, ok)
	require.Equal(t, bundle.Manifest.ModuleOrder, got.Manifest.ModuleOrder)
	require.Len(t, got.Modules, 1)
}

func TestDecodeArtifact_UnknownBackend(t *testing.T) {
	_, err := DecodeArtifact(&ArtifactRecord{ID: "x", Backend: "fortran", Payload: []byte("{}")})
	require.Error(t, err)
}
