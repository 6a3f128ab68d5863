package persistence

import (
	"sync"

	"github.com/jkoskela/flowforge/pkg/api"
)

// InMemoryStore is a simple, goroutine-safe RunStore backed by maps.
// It hands out clones so callers cannot mutate persisted history.
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]*ArtifactRecord
	traces    map[string]*api.ExecutionTrace
}

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		artifacts: make(map[string]*ArtifactRecord),
		traces:    make(map[string]*api.ExecutionTrace),
	}
}

// Ensure InMemoryStore implements the interface.
var _ RunStore = (*InMemoryStore)(nil)

func (s *InMemoryStore) SaveArtifact(rec *ArtifactRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.artifacts[rec.ID] = cloneArtifact(rec)
	return nil
}

func (s *InMemoryStore) GetArtifact(id string) (*ArtifactRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.artifacts[id]
	if !ok {
		return nil, ErrArtifactNotFound
	}
	return cloneArtifact(rec), nil
}

func (s *InMemoryStore) ListArtifacts(graphName string) ([]*ArtifactRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*ArtifactRecord
	for _, rec := range s.artifacts {
		if graphName != "" && rec.GraphName != graphName {
			continue
		}
		out = append(out, cloneArtifact(rec))
	}
	return out, nil
}

func (s *InMemoryStore) SaveTrace(tr *api.ExecutionTrace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.traces[tr.RunID] = tr.Clone()
	return nil
}

func (s *InMemoryStore) UpdateTrace(tr *api.ExecutionTrace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.traces[tr.RunID]; !ok {
		return ErrTraceNotFound
	}
	s.traces[tr.RunID] = tr.Clone()
	return nil
}

func (s *InMemoryStore) GetTrace(runID string) (*api.ExecutionTrace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tr, ok := s.traces[runID]
	if !ok {
		return nil, ErrTraceNotFound
	}
	return tr.Clone(), nil
}

func (s *InMemoryStore) ListTraces(filter TraceFilter) ([]*api.ExecutionTrace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*api.ExecutionTrace
	for _, tr := range s.traces {
		if filter.Status != "" && tr.Status != filter.Status {
			continue
		}
		out = append(out, tr.Clone())
	}
	return out, nil
}

func cloneArtifact(rec *ArtifactRecord) *ArtifactRecord {
	c := *rec
	c.Payload = append([]byte(nil), rec.Payload...)
	return &c
}
