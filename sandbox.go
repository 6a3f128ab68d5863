package flowforge

import (
	"context"
	"fmt"

	"github.com/jkoskela/flowforge/internal/persistence"
	"github.com/jkoskela/flowforge/internal/simulate"
	"github.com/jkoskela/flowforge/pkg/api"
)

// Sandbox bundles a type registry, both emitters, a simulator, and an
// in-memory run store to provide a simple local environment for
// developing and debugging graphs before deploying them.
//
// Typical usage:
//
//	sb := flowforge.NewSandbox()
//	g := flowforge.NewGraph("my-flow").
//	    Node("start", flowforge.TypeManual, nil).
//	    Node("step", flowforge.TypePrompt, map[string]any{
//	        "instruction": "...", "model": "gpt-4o",
//	    }).
//	    Edge("start", "step").
//	    Graph()
//
//	artifact, err := sb.Emit(g, flowforge.BackendStepChain)
//	trace, err := sb.Simulate(ctx, g, map[string]any{"ticket": "..."})
type Sandbox struct {
	// Registry is the node type registry used for validation, emission,
	// and simulation.
	Registry *TypeRegistry

	// Store holds compiled artifacts and simulation traces.
	Store RunStore

	stepchain *StepChainEmitter
	script    *ScriptEmitter
	sim       *Simulator
}

// SandboxOption configures a Sandbox.
type SandboxOption func(*sandboxConfig)

type sandboxConfig struct {
	registry *TypeRegistry
	store    RunStore
	simOpts  []SimulatorOption
	emitOpts []StepChainOption
}

// WithRegistry replaces the default core registry.
func WithRegistry(reg *TypeRegistry) SandboxOption {
	return func(c *sandboxConfig) { c.registry = reg }
}

// WithRunStore replaces the default in-memory store.
func WithRunStore(store RunStore) SandboxOption {
	return func(c *sandboxConfig) { c.store = store }
}

// WithSimulatorOptions passes options through to the bundled simulator.
func WithSimulatorOptions(opts ...SimulatorOption) SandboxOption {
	return func(c *sandboxConfig) { c.simOpts = append(c.simOpts, opts...) }
}

// WithStepChainOptions passes options through to the bundled step-chain
// emitter. Catalog capabilities register their mappings this way.
func WithStepChainOptions(opts ...StepChainOption) SandboxOption {
	return func(c *sandboxConfig) { c.emitOpts = append(c.emitOpts, opts...) }
}

// NewSandbox constructs a Sandbox backed by the core registry, an
// in-memory store, and default emitters.
//
// This is intended for local development, tests, and simple
// single-process deployments.
func NewSandbox(opts ...SandboxOption) *Sandbox {
	cfg := sandboxConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = NewCoreRegistry()
	}
	if cfg.store == nil {
		cfg.store = persistence.NewInMemoryStore()
	}

	return &Sandbox{
		Registry:  cfg.registry,
		Store:     cfg.store,
		stepchain: NewStepChainEmitter(cfg.registry, cfg.emitOpts...),
		script:    NewScriptEmitter(cfg.registry),
		sim:       simulate.New(cfg.registry, cfg.simOpts...),
	}
}

// Check validates the graph and returns the accumulated findings.
func (s *Sandbox) Check(g *Graph) *ValidationResult {
	return Validate(g, s.Registry)
}

// Compile validates and linearizes the graph.
func (s *Sandbox) Compile(g *Graph) (*LinearizedPlan, error) {
	return Compile(g, s.Registry)
}

// Emit compiles the graph and renders it for the named backend. The
// resulting artifact is saved to the store and returned together with
// its record id.
func (s *Sandbox) Emit(g *Graph, backend string) (CompiledArtifact, string, error) {
	plan, err := s.Compile(g)
	if err != nil {
		return nil, "", err
	}

	var artifact CompiledArtifact
	switch backend {
	case api.BackendStepChain:
		artifact, err = s.stepchain.Emit(plan, g)
	case api.BackendScript:
		artifact, err = s.script.Emit(plan, g)
	default:
		return nil, "", fmt.Errorf("flowforge: unknown backend %q", backend)
	}
	if err != nil {
		return nil, "", err
	}

	rec, err := persistence.NewArtifactRecord(g.Name, artifact)
	if err != nil {
		return nil, "", err
	}
	if err := s.Store.SaveArtifact(rec); err != nil {
		return nil, "", err
	}
	return artifact, rec.ID, nil
}

// Simulate compiles the graph and walks the plan against the bundled
// simulator. The trace is saved to the store before returning.
func (s *Sandbox) Simulate(ctx context.Context, g *Graph, input any) (*ExecutionTrace, error) {
	plan, err := s.Compile(g)
	if err != nil {
		return nil, err
	}
	trace := s.sim.Simulate(ctx, plan, g, input)
	if err := s.Store.SaveTrace(trace); err != nil {
		return nil, err
	}
	return trace, nil
}

// Trace retrieves a previously saved trace by run id.
func (s *Sandbox) Trace(runID string) (*ExecutionTrace, error) {
	return s.Store.GetTrace(runID)
}
