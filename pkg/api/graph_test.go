package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func twoNodeGraph(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph("two")
	g.AddNode(&WorkflowNode{ID: "a", TypeID: TypeManual})
	g.AddNode(&WorkflowNode{ID: "b", TypeID: TypeTool, Config: map[string]any{
		"service": "mail", "action": "send",
	}})
	require.NoError(t, g.AddEdge(&WorkflowEdge{ID: "e1", SourceID: "a", TargetID: "b"}))
	return g
}

func TestAddEdge_RejectsUnknownEndpoints(t *testing.T) {
	g := NewGraph("g")
	g.AddNode(&WorkflowNode{ID: "a", TypeID: TypeManual})

	err := g.AddEdge(&WorkflowEdge{ID: "e1", SourceID: "a", TargetID: "ghost"})
	require.ErrorIs(t, err, ErrInvalidReference)

	err = g.AddEdge(&WorkflowEdge{ID: "e2", SourceID: "ghost", TargetID: "a"})
	require.ErrorIs(t, err, ErrInvalidReference)
	require.Empty(t, g.Edges)
}

func TestRemoveNode_CascadesEdges(t *testing.T) {
	g := twoNodeGraph(t)
	g.RemoveNode("b")

	require.NotContains(t, g.Nodes, "b")
	require.Empty(t, g.Edges, "edges referencing a removed node must go with it")
}

func TestEdgeQueries_SortedByEdgeID(t *testing.T) {
	g := NewGraph("fan")
	g.AddNode(&WorkflowNode{ID: "hub", TypeID: TypeLogic})
	g.AddNode(&WorkflowNode{ID: "x", TypeID: TypeManual})
	g.AddNode(&WorkflowNode{ID: "y", TypeID: TypeManual})
	require.NoError(t, g.AddEdge(&WorkflowEdge{ID: "e2", SourceID: "hub", SourcePort: "false", TargetID: "y"}))
	require.NoError(t, g.AddEdge(&WorkflowEdge{ID: "e1", SourceID: "hub", SourcePort: "true", TargetID: "x"}))

	out := g.OutgoingEdges("hub")
	require.Len(t, out, 2)
	require.Equal(t, "e1", out[0].ID)
	require.Equal(t, "e2", out[1].ID)
}

func TestGraph_JSONRoundTrip(t *testing.T) {
	g := twoNodeGraph(t)
	g.Nodes["a"].Label = "Entry"
	g.Nodes["a"].Position = Position{X: 120, Y: 48.5}

	raw, err := json.Marshal(g)
	require.NoError(t, err)

	var back Graph
	require.NoError(t, json.Unmarshal(raw, &back))

	require.Equal(t, g.Name, back.Name)
	require.Len(t, back.Nodes, 2)
	require.Len(t, back.Edges, 1)
	require.Equal(t, "Entry", back.Nodes["a"].Label)
	require.Equal(t, Position{X: 120, Y: 48.5}, back.Nodes["a"].Position)
	require.Equal(t, "b", back.Edges["e1"].TargetID)
	require.Equal(t, "send", back.Nodes["b"].Config["action"])
}

func TestGraph_MarshalIsDeterministic(t *testing.T) {
	g := twoNodeGraph(t)

	first, err := json.Marshal(g)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := json.Marshal(g)
		require.NoError(t, err)
		require.Equal(t, string(first), string(again))
	}
}

func TestGraph_UnmarshalKeepsDanglingEdges(t *testing.T) {
	// An editor may send a mid-edit graph; structural complaints belong to
	// the validator, not the decoder.
	raw := []byte(`{
		"name": "mid-edit",
		"nodes": [{"id": "a", "type_id": "manual"}],
		"edges": [{"id": "e1", "source": "a", "target": "deleted"}]
	}`)

	var g Graph
	require.NoError(t, json.Unmarshal(raw, &g))
	require.Len(t, g.Edges, 1)
}

func TestGraph_UnmarshalRejectsEmptyIDs(t *testing.T) {
	var g Graph
	err := json.Unmarshal([]byte(`{"name":"bad","nodes":[{"id":"","type_id":"manual"}]}`), &g)
	require.Error(t, err)
}

func TestGraph_CloneIsIndependent(t *testing.T) {
	g := twoNodeGraph(t)
	c := g.Clone()

	c.Nodes["b"].Config["action"] = "tampered"
	c.RemoveNode("a")

	require.Equal(t, "send", g.Nodes["b"].Config["action"])
	require.Contains(t, g.Nodes, "a")
	require.Len(t, g.Edges, 1)
}
