package persistence

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jkoskela/flowforge/pkg/api"
)

// SQLiteRunStore is a RunStore backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteRunStore struct {
	db *sql.DB
}

// Ensure SQLiteRunStore implements RunStore.
var _ RunStore = (*SQLiteRunStore)(nil)

// NewSQLiteRunStore initializes the required schema in the given database
// and returns a new SQLiteRunStore.
func NewSQLiteRunStore(db *sql.DB) (*SQLiteRunStore, error) {
	s := &SQLiteRunStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteRunStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS artifacts (
			id TEXT PRIMARY KEY,
			graph_name TEXT NOT NULL,
			backend TEXT NOT NULL,
			payload BLOB NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS traces (
			run_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			steps BLOB,
			error TEXT
		);`,
	)
	return err
}

func (s *SQLiteRunStore) SaveArtifact(rec *ArtifactRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO artifacts (id, graph_name, backend, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID,
		rec.GraphName,
		rec.Backend,
		rec.Payload,
		rec.CreatedAt.UnixNano(),
	)
	return err
}

func (s *SQLiteRunStore) GetArtifact(id string) (*ArtifactRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, graph_name, backend, payload, created_at
		FROM artifacts
		WHERE id = ?`,
		id,
	)
	rec, err := scanArtifact(row)
	if err == sql.ErrNoRows {
		return nil, ErrArtifactNotFound
	}
	return rec, err
}

func (s *SQLiteRunStore) ListArtifacts(graphName string) ([]*ArtifactRecord, error) {
	query := `SELECT id, graph_name, backend, payload, created_at FROM artifacts`
	args := []any{}
	if graphName != "" {
		query += ` WHERE graph_name = ?`
		args = append(args, graphName)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ArtifactRecord
	for rows.Next() {
		rec, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row rowScanner) (*ArtifactRecord, error) {
	var rec ArtifactRecord
	var createdAt int64
	if err := row.Scan(&rec.ID, &rec.GraphName, &rec.Backend, &rec.Payload, &createdAt); err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(0, createdAt)
	return &rec, nil
}

func (s *SQLiteRunStore) SaveTrace(tr *api.ExecutionTrace) error {
	steps, err := json.Marshal(tr.Steps)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO traces (run_id, status, steps, error)
		VALUES (?, ?, ?, ?)`,
		tr.RunID,
		string(tr.Status),
		steps,
		tr.Error,
	)
	return err
}

func (s *SQLiteRunStore) UpdateTrace(tr *api.ExecutionTrace) error {
	steps, err := json.Marshal(tr.Steps)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`
		UPDATE traces
		SET status = ?, steps = ?, error = ?
		WHERE run_id = ?`,
		string(tr.Status),
		steps,
		tr.Error,
		tr.RunID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTraceNotFound
	}
	return nil
}

func (s *SQLiteRunStore) GetTrace(runID string) (*api.ExecutionTrace, error) {
	row := s.db.QueryRow(`
		SELECT run_id, status, steps, error
		FROM traces
		WHERE run_id = ?`,
		runID,
	)
	tr, err := scanTrace(row)
	if err == sql.ErrNoRows {
		return nil, ErrTraceNotFound
	}
	return tr, err
}

func (s *SQLiteRunStore) ListTraces(filter TraceFilter) ([]*api.ExecutionTrace, error) {
	query := `SELECT run_id, status, steps, error FROM traces`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY run_id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*api.ExecutionTrace
	for rows.Next() {
		tr, err := scanTrace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

func scanTrace(row rowScanner) (*api.ExecutionTrace, error) {
	var tr api.ExecutionTrace
	var statusStr string
	var steps []byte
	var errStr sql.NullString

	if err := row.Scan(&tr.RunID, &statusStr, &steps, &errStr); err != nil {
		return nil, err
	}
	tr.Status = api.RunStatus(statusStr)
	if errStr.Valid {
		tr.Error = errStr.String
	}
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &tr.Steps); err != nil {
			return nil, err
		}
	}
	return &tr, nil
}
