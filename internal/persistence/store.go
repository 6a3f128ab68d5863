package persistence

import (
	"errors"
	"time"

	"github.com/jkoskela/flowforge/pkg/api"
)

var (
	// ErrArtifactNotFound is returned when a compiled artifact is not found.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrTraceNotFound is returned when an execution trace is not found.
	ErrTraceNotFound = errors.New("trace not found")
)

// ArtifactRecord stores one compiled artifact. Payload is the artifact's
// canonical JSON; Backend says which engine profile it targets so the
// right shape can be decoded later.
type ArtifactRecord struct {
	ID        string
	GraphName string
	Backend   string
	Payload   []byte
	CreatedAt time.Time
}

// TraceFilter selects traces from the store.
// Zero values mean "no filter" for that field.
type TraceFilter struct {
	Status api.RunStatus
}

// RunStore persists compiled artifacts and execution traces. Artifacts are
// written once and never updated (they are immutable by contract); traces
// are written when a run starts and updated as it progresses to a terminal
// status.
type RunStore interface {
	SaveArtifact(rec *ArtifactRecord) error
	GetArtifact(id string) (*ArtifactRecord, error)
	ListArtifacts(graphName string) ([]*ArtifactRecord, error)

	SaveTrace(tr *api.ExecutionTrace) error
	UpdateTrace(tr *api.ExecutionTrace) error
	GetTrace(runID string) (*api.ExecutionTrace, error)
	ListTraces(filter TraceFilter) ([]*api.ExecutionTrace, error)
}
