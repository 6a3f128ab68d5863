package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jkoskela/flowforge/pkg/api"
)

// NewArtifactRecord encodes a compiled artifact into a storable record
// with a fresh id. The payload is the artifact's canonical JSON.
func NewArtifactRecord(graphName string, artifact api.CompiledArtifact) (*ArtifactRecord, error) {
	payload, err := json.Marshal(artifact)
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return &ArtifactRecord{
		ID:        uuid.NewString(),
		GraphName: graphName,
		Backend:   artifact.Backend(),
		Payload:   payload,
		CreatedAt: time.Now(),
	}, nil
}

// DecodeArtifact reconstructs the typed artifact from a stored record.
func DecodeArtifact(rec *ArtifactRecord) (api.CompiledArtifact, error) {
	switch rec.Backend {
	case api.BackendStepChain:
		var doc api.StepChainDocument
		if err := json.Unmarshal(rec.Payload, &doc); err != nil {
			return nil, fmt.Errorf("decode step-chain artifact %s: %w", rec.ID, err)
		}
		return &doc, nil
	case api.BackendScript:
		var bundle api.ScriptBundle
		if err := json.Unmarshal(rec.Payload, &bundle); err != nil {
			return nil, fmt.Errorf("decode script artifact %s: %w", rec.ID, err)
		}
		return &bundle, nil
	default:
		return nil, fmt.Errorf("artifact %s: unknown backend %q", rec.ID, rec.Backend)
	}
}
