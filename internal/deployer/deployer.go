// Package deployer submits compiled artifacts to the external execution
// engine and polls runs to completion. It is a thin, retry-free client:
// transport and engine failures surface as typed errors with the raw
// response attached, and what to do about them is the caller's decision.
package deployer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jkoskela/flowforge/pkg/api"
)

// DeploymentHandle identifies a flow created in the external engine.
type DeploymentHandle struct {
	FlowID    string    `json:"flow_id"`
	Backend   string    `json:"backend"`
	CreatedAt time.Time `json:"created_at"`
}

// RunHandle identifies a triggered run of a deployed flow.
type RunHandle struct {
	RunID  string `json:"run_id"`
	FlowID string `json:"flow_id"`
}

// Deployer talks to the engine's three-call surface:
//
//	POST /flows            create a flow from an artifact
//	POST /flows/{id}/run   trigger a run
//	GET  /runs/{id}        poll run status
type Deployer struct {
	baseURL  string
	client   *http.Client
	interval time.Duration
}

// Option customizes a Deployer.
type Option func(*Deployer)

// WithHTTPClient replaces the HTTP client (custom transports, test doubles).
func WithHTTPClient(c *http.Client) Option {
	return func(d *Deployer) {
		if c != nil {
			d.client = c
		}
	}
}

// WithPollInterval sets the fixed run-poll interval.
func WithPollInterval(interval time.Duration) Option {
	return func(d *Deployer) {
		if interval > 0 {
			d.interval = interval
		}
	}
}

// New builds a Deployer for the engine at baseURL.
func New(baseURL string, opts ...Option) *Deployer {
	d := &Deployer{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 30 * time.Second},
		interval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type createResponse struct {
	ID string `json:"id"`
}

// Deploy creates the flow in the engine and returns its assigned id.
func (d *Deployer) Deploy(ctx context.Context, artifact api.CompiledArtifact) (*DeploymentHandle, error) {
	var resp createResponse
	if err := d.post(ctx, "deploy", d.baseURL+"/flows", artifact, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, &api.EngineError{Op: "deploy", Err: fmt.Errorf("engine returned no flow id")}
	}
	return &DeploymentHandle{
		FlowID:    resp.ID,
		Backend:   artifact.Backend(),
		CreatedAt: time.Now(),
	}, nil
}

// Trigger starts a run of a deployed flow with the given input.
func (d *Deployer) Trigger(ctx context.Context, h *DeploymentHandle, input any) (*RunHandle, error) {
	body := map[string]any{"input": input}
	var resp createResponse
	if err := d.post(ctx, "trigger", d.baseURL+"/flows/"+h.FlowID+"/run", body, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, &api.EngineError{Op: "trigger", Err: fmt.Errorf("engine returned no run id")}
	}
	return &RunHandle{RunID: resp.ID, FlowID: h.FlowID}, nil
}

// PollUntilDone polls the run at the configured interval until it reaches
// a terminal status or the timeout elapses.
//
// On timeout the last-known partial trace is returned with a nil error and
// status running — the caller decides whether to keep waiting with another
// PollUntilDone call. Cancellation returns the last-known trace together
// with the context error; the remote run itself is unaffected.
func (d *Deployer) PollUntilDone(ctx context.Context, rh *RunHandle, timeout time.Duration) (*api.ExecutionTrace, error) {
	last := &api.ExecutionTrace{RunID: rh.RunID, Status: api.RunRunning}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		trace, err := d.fetchRun(ctx, rh)
		if err != nil {
			return last, err
		}
		last = trace
		if trace.Status.Terminal() {
			return trace, nil
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-deadline.C:
			return last, nil
		case <-ticker.C:
		}
	}
}

func (d *Deployer) fetchRun(ctx context.Context, rh *RunHandle) (*api.ExecutionTrace, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/runs/"+rh.RunID, nil)
	if err != nil {
		return nil, &api.EngineError{Op: "poll", Err: err}
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &api.EngineError{Op: "poll", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &api.EngineError{Op: "poll", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var trace api.ExecutionTrace
	if err := json.Unmarshal(body, &trace); err != nil {
		return nil, &api.EngineError{Op: "poll", StatusCode: resp.StatusCode, Body: string(body), Err: err}
	}
	if trace.RunID == "" {
		trace.RunID = rh.RunID
	}
	return &trace, nil
}

func (d *Deployer) post(ctx context.Context, op, url string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return &api.EngineError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return &api.EngineError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return &api.EngineError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &api.EngineError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return &api.EngineError{Op: op, StatusCode: resp.StatusCode, Body: string(body), Err: err}
		}
	}
	return nil
}
