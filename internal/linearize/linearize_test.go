package linearize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkoskela/flowforge/pkg/api"
)

func addEdge(t *testing.T, g *api.Graph, e *api.WorkflowEdge) {
	t.Helper()
	require.NoError(t, g.AddEdge(e))
}

func memNode(id string) *api.WorkflowNode {
	return &api.WorkflowNode{ID: id, TypeID: api.TypeMemory, Config: map[string]any{
		"operation": "write", "key": id,
	}}
}

func TestRun_LinearChain(t *testing.T) {
	g := api.NewGraph("chain")
	g.AddNode(&api.WorkflowNode{ID: "start", TypeID: api.TypeManual})
	g.AddNode(memNode("a"))
	g.AddNode(memNode("b"))
	g.AddNode(memNode("c"))
	addEdge(t, g, &api.WorkflowEdge{ID: "e1", SourceID: "start", TargetID: "a"})
	addEdge(t, g, &api.WorkflowEdge{ID: "e2", SourceID: "a", TargetID: "b"})
	addEdge(t, g, &api.WorkflowEdge{ID: "e3", SourceID: "b", TargetID: "c"})

	plan, err := Run(g, api.NewCoreRegistry())
	require.NoError(t, err)

	require.Equal(t, "start", plan.EntryNodeID)
	require.Equal(t, 4, plan.Len())

	want := []struct {
		nodeID string
		next   int
	}{
		{"start", 1}, {"a", 2}, {"b", 3}, {"c", api.NoStep},
	}
	for i, w := range want {
		require.Equal(t, w.nodeID, plan.Steps[i].NodeID)
		require.Equal(t, w.next, plan.Steps[i].Next)
		require.Empty(t, plan.Steps[i].Branches)
	}
}

func TestRun_BranchesFollowDeclaredPortOrder(t *testing.T) {
	g := api.NewGraph("if-else")
	g.AddNode(&api.WorkflowNode{ID: "start", TypeID: api.TypeManual})
	g.AddNode(&api.WorkflowNode{ID: "gate", TypeID: api.TypeLogic, Config: map[string]any{
		"condition_type": "if_else",
		"condition":      "input.ok",
	}})
	g.AddNode(memNode("yes"))
	g.AddNode(memNode("no"))
	addEdge(t, g, &api.WorkflowEdge{ID: "e1", SourceID: "start", TargetID: "gate"})
	// Insert the false edge first to prove edge order does not matter.
	addEdge(t, g, &api.WorkflowEdge{ID: "e2", SourceID: "gate", SourcePort: "false", TargetID: "no"})
	addEdge(t, g, &api.WorkflowEdge{ID: "e3", SourceID: "gate", SourcePort: "true", TargetID: "yes"})

	plan, err := Run(g, api.NewCoreRegistry())
	require.NoError(t, err)

	gate := plan.Steps[1]
	require.Equal(t, "gate", gate.NodeID)
	require.Equal(t, api.NoStep, gate.Next)
	require.Len(t, gate.Branches, 2)
	require.Equal(t, "true", gate.Branches[0].Label)
	require.Equal(t, "false", gate.Branches[1].Label)

	// Pre-order numbering visits the true arm before the false arm.
	require.Equal(t, "yes", plan.Steps[gate.Branches[0].Target].NodeID)
	require.Equal(t, "no", plan.Steps[gate.Branches[1].Target].NodeID)
}

func TestRun_UnwiredBranchKeepsLabel(t *testing.T) {
	g := api.NewGraph("half-wired")
	g.AddNode(&api.WorkflowNode{ID: "start", TypeID: api.TypeManual})
	g.AddNode(&api.WorkflowNode{ID: "gate", TypeID: api.TypeLogic, Config: map[string]any{
		"condition_type": "if_else",
		"condition":      "input.ok",
	}})
	g.AddNode(memNode("yes"))
	addEdge(t, g, &api.WorkflowEdge{ID: "e1", SourceID: "start", TargetID: "gate"})
	addEdge(t, g, &api.WorkflowEdge{ID: "e2", SourceID: "gate", SourcePort: "true", TargetID: "yes"})

	plan, err := Run(g, api.NewCoreRegistry())
	require.NoError(t, err)

	gate := plan.Steps[1]
	require.Len(t, gate.Branches, 2)
	require.Equal(t, "false", gate.Branches[1].Label)
	require.Equal(t, api.NoStep, gate.Branches[1].Target)
}

func TestRun_ConfiguredBranchesOverrideDefaultPorts(t *testing.T) {
	g := api.NewGraph("switch")
	g.AddNode(&api.WorkflowNode{ID: "start", TypeID: api.TypeManual})
	g.AddNode(&api.WorkflowNode{ID: "route", TypeID: api.TypeLogic, Config: map[string]any{
		"condition_type": "switch",
		"branches": []any{
			map[string]any{"label": "billing", "condition": "input.topic == \"billing\""},
			map[string]any{"label": "tech", "condition": "input.topic == \"tech\""},
			map[string]any{"label": "other"},
		},
	}})
	g.AddNode(memNode("billing"))
	g.AddNode(memNode("tech"))
	g.AddNode(memNode("other"))
	addEdge(t, g, &api.WorkflowEdge{ID: "e1", SourceID: "start", TargetID: "route"})
	addEdge(t, g, &api.WorkflowEdge{ID: "e2", SourceID: "route", SourcePort: "billing", TargetID: "billing"})
	addEdge(t, g, &api.WorkflowEdge{ID: "e3", SourceID: "route", SourcePort: "tech", TargetID: "tech"})
	addEdge(t, g, &api.WorkflowEdge{ID: "e4", SourceID: "route", SourcePort: "other", TargetID: "other"})

	plan, err := Run(g, api.NewCoreRegistry())
	require.NoError(t, err)

	route := plan.Steps[1]
	require.Len(t, route.Branches, 3)
	require.Equal(t, "billing", route.Branches[0].Label)
	require.Equal(t, "tech", route.Branches[1].Label)
	require.Equal(t, "other", route.Branches[2].Label)
}

func TestRun_DiamondSharesContinuation(t *testing.T) {
	g := api.NewGraph("diamond")
	g.AddNode(&api.WorkflowNode{ID: "start", TypeID: api.TypeManual})
	g.AddNode(&api.WorkflowNode{ID: "gate", TypeID: api.TypeLogic, Config: map[string]any{
		"condition_type": "if_else",
		"condition":      "input.ok",
	}})
	g.AddNode(memNode("left"))
	g.AddNode(memNode("right"))
	g.AddNode(memNode("join"))
	addEdge(t, g, &api.WorkflowEdge{ID: "e1", SourceID: "start", TargetID: "gate"})
	addEdge(t, g, &api.WorkflowEdge{ID: "e2", SourceID: "gate", SourcePort: "true", TargetID: "left"})
	addEdge(t, g, &api.WorkflowEdge{ID: "e3", SourceID: "gate", SourcePort: "false", TargetID: "right"})
	addEdge(t, g, &api.WorkflowEdge{ID: "e4", SourceID: "left", TargetID: "join"})
	addEdge(t, g, &api.WorkflowEdge{ID: "e5", SourceID: "right", TargetID: "join"})

	plan, err := Run(g, api.NewCoreRegistry())
	require.NoError(t, err)
	require.Equal(t, 5, plan.Len())

	joinIdx, ok := plan.StepIndex("join")
	require.True(t, ok)
	leftIdx, _ := plan.StepIndex("left")
	rightIdx, _ := plan.StepIndex("right")
	require.Equal(t, joinIdx, plan.Steps[leftIdx].Next)
	require.Equal(t, joinIdx, plan.Steps[rightIdx].Next)
}

func TestRun_FanOutRejected(t *testing.T) {
	g := api.NewGraph("fanout")
	g.AddNode(&api.WorkflowNode{ID: "start", TypeID: api.TypeManual})
	g.AddNode(memNode("a"))
	g.AddNode(memNode("b"))
	addEdge(t, g, &api.WorkflowEdge{ID: "e1", SourceID: "start", TargetID: "a"})
	addEdge(t, g, &api.WorkflowEdge{ID: "e2", SourceID: "start", TargetID: "b"})

	_, err := Run(g, api.NewCoreRegistry())
	require.Error(t, err)

	var serr *api.StructuralError
	require.ErrorAs(t, err, &serr)
	require.Len(t, serr.Issues, 1)
	require.Equal(t, api.CodeFanOut, serr.Issues[0].Code)
	require.Equal(t, "start", serr.Issues[0].NodeID)
}

func TestRun_UnreachableNodesExcluded(t *testing.T) {
	g := api.NewGraph("islands")
	g.AddNode(&api.WorkflowNode{ID: "start", TypeID: api.TypeManual})
	g.AddNode(memNode("a"))
	g.AddNode(memNode("stray"))
	addEdge(t, g, &api.WorkflowEdge{ID: "e1", SourceID: "start", TargetID: "a"})
	addEdge(t, g, &api.WorkflowEdge{ID: "e2", SourceID: "stray", TargetID: "stray"})

	plan, err := Run(g, api.NewCoreRegistry())
	require.NoError(t, err)
	require.Equal(t, 2, plan.Len())
	_, ok := plan.StepIndex("stray")
	require.False(t, ok)
}

func TestRun_NoEntryFails(t *testing.T) {
	g := api.NewGraph("cycle")
	g.AddNode(memNode("a"))
	g.AddNode(memNode("b"))
	addEdge(t, g, &api.WorkflowEdge{ID: "e1", SourceID: "a", TargetID: "b"})
	addEdge(t, g, &api.WorkflowEdge{ID: "e2", SourceID: "b", TargetID: "a"})

	_, err := Run(g, api.NewCoreRegistry())
	require.Error(t, err)
}

func TestRun_Deterministic(t *testing.T) {
	build := func() *api.Graph {
		g := api.NewGraph("det")
		g.AddNode(&api.WorkflowNode{ID: "start", TypeID: api.TypeManual})
		g.AddNode(&api.WorkflowNode{ID: "gate", TypeID: api.TypeLogic, Config: map[string]any{
			"condition_type": "if_else",
			"condition":      "input.ok",
		}})
		g.AddNode(memNode("left"))
		g.AddNode(memNode("right"))
		addEdge(t, g, &api.WorkflowEdge{ID: "e1", SourceID: "start", TargetID: "gate"})
		addEdge(t, g, &api.WorkflowEdge{ID: "e2", SourceID: "gate", SourcePort: "false", TargetID: "right"})
		addEdge(t, g, &api.WorkflowEdge{ID: "e3", SourceID: "gate", SourcePort: "true", TargetID: "left"})
		return g
	}

	reg := api.NewCoreRegistry()
	first, err := Run(build(), reg)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Run(build(), reg)
		require.NoError(t, err)
		require.Equal(t, first.EntryNodeID, again.EntryNodeID)
		require.Equal(t, first.Steps, again.Steps)
	}
}
