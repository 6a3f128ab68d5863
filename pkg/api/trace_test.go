package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunStatus_Terminal(t *testing.T) {
	require.False(t, RunPending.Terminal())
	require.False(t, RunRunning.Terminal())
	require.True(t, RunSucceeded.Terminal())
	require.True(t, RunFailed.Terminal())
}

func TestNewExecutionTrace(t *testing.T) {
	a := NewExecutionTrace()
	b := NewExecutionTrace()

	require.NotEmpty(t, a.RunID)
	require.NotEqual(t, a.RunID, b.RunID)
	require.Equal(t, RunPending, a.Status)
	require.Empty(t, a.Steps)
}

func TestExecutionTrace_CloneIsDeep(t *testing.T) {
	tr := NewExecutionTrace()
	tr.Status = RunSucceeded
	tr.Steps = []StepTrace{
		{NodeID: "start", Status: RunSucceeded, Output: map[string]any{"node_id": "start"}},
		{NodeID: "act", Status: RunSucceeded},
	}

	c := tr.Clone()
	c.Status = RunFailed
	c.Steps[0].Output["node_id"] = "tampered"
	c.Steps = append(c.Steps, StepTrace{NodeID: "extra"})

	require.Equal(t, RunSucceeded, tr.Status)
	require.Len(t, tr.Steps, 2)
	require.Equal(t, "start", tr.Steps[0].Output["node_id"])
}
