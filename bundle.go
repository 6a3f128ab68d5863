package flowforge

import (
	"database/sql"

	"github.com/jkoskela/flowforge/internal/persistence"
)

// SQLiteWorkspace wires a Sandbox to a durable SQLite-backed run store
// so compiled artifacts and simulation traces survive process restarts.
type SQLiteWorkspace struct {
	*Sandbox

	// DB is the shared database handle. The caller owns its lifecycle.
	DB *sql.DB
}

// NewSQLiteWorkspace constructs a Sandbox whose artifacts and traces
// are persisted in the provided *sql.DB.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:flowforge.db?_journal=WAL")
//	ws, err := flowforge.NewSQLiteWorkspace(db)
//	// build graphs, then ws.Emit / ws.Simulate as with a plain Sandbox
func NewSQLiteWorkspace(db *sql.DB, opts ...SandboxOption) (*SQLiteWorkspace, error) {
	store, err := persistence.NewSQLiteRunStore(db)
	if err != nil {
		return nil, err
	}

	opts = append(opts, WithRunStore(store))
	return &SQLiteWorkspace{
		Sandbox: NewSandbox(opts...),
		DB:      db,
	}, nil
}

// Artifacts lists the stored artifact records for a graph, newest first.
func (w *SQLiteWorkspace) Artifacts(graphName string) ([]*ArtifactRecord, error) {
	return w.Store.ListArtifacts(graphName)
}

// Artifact decodes a stored artifact record back into its typed form.
func (w *SQLiteWorkspace) Artifact(id string) (CompiledArtifact, error) {
	rec, err := w.Store.GetArtifact(id)
	if err != nil {
		return nil, err
	}
	return persistence.DecodeArtifact(rec)
}
