package flowforge

import (
	"context"
	"database/sql"
	"io"

	"github.com/jkoskela/flowforge/internal/catalog"
	"github.com/jkoskela/flowforge/internal/deployer"
	"github.com/jkoskela/flowforge/internal/emit"
	"github.com/jkoskela/flowforge/internal/linearize"
	"github.com/jkoskela/flowforge/internal/persistence"
	"github.com/jkoskela/flowforge/internal/simulate"
	"github.com/jkoskela/flowforge/internal/validate"
	"github.com/jkoskela/flowforge/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Graph              = api.Graph
	WorkflowNode       = api.WorkflowNode
	WorkflowEdge       = api.WorkflowEdge
	Position           = api.Position
	NodeTypeDescriptor = api.NodeTypeDescriptor
	PortSpec           = api.PortSpec
	TypeRegistry       = api.TypeRegistry
	ValidationResult   = api.ValidationResult
	Issue              = api.Issue
	IssueCode          = api.IssueCode
	LinearizedPlan     = api.LinearizedPlan
	PlanStep           = api.PlanStep
	Branch             = api.Branch
	CompiledArtifact   = api.CompiledArtifact
	StepChainDocument  = api.StepChainDocument
	ScriptBundle       = api.ScriptBundle
	ExecutionTrace     = api.ExecutionTrace
	StepTrace          = api.StepTrace
	RunStatus          = api.RunStatus
	StructuralError    = api.StructuralError
	ConfigError        = api.ConfigError
	EngineError        = api.EngineError
	RunObserver        = api.RunObserver
	LoggingRunObserver = api.LoggingRunObserver
	RunMetrics         = api.RunMetrics
	RunMetricsSnapshot = api.RunMetricsSnapshot
	NoopRunObserver    = api.NoopRunObserver

	Capability       = catalog.Capability
	Emitter          = emit.Emitter
	StepChainEmitter = emit.StepChainEmitter
	ScriptEmitter    = emit.ScriptEmitter
	StepChainOption  = emit.StepChainOption
	Simulator        = simulate.Simulator
	SimulatorOption  = simulate.Option
	Deployer         = deployer.Deployer
	DeployerOption   = deployer.Option
	DeploymentHandle = deployer.DeploymentHandle
	RunHandle        = deployer.RunHandle
	RunStore         = persistence.RunStore
	ArtifactRecord   = persistence.ArtifactRecord
	TraceFilter      = persistence.TraceFilter
)

// Re-export common observer helpers.

var (
	NewLoggingRunObserver   = api.NewLoggingRunObserver
	NewCompositeRunObserver = api.NewCompositeRunObserver
)

// Re-export run status values for convenience.

const (
	RunPending   = api.RunPending
	RunRunning   = api.RunRunning
	RunSucceeded = api.RunSucceeded
	RunFailed    = api.RunFailed
)

// Backend identifiers for the two emission targets.

const (
	BackendStepChain = api.BackendStepChain
	BackendScript    = api.BackendScript
)

// Core node type identifiers.

const (
	TypeManual      = api.TypeManual
	TypePrompt      = api.TypePrompt
	TypeTool        = api.TypeTool
	TypeLogic       = api.TypeLogic
	TypeMemory      = api.TypeMemory
	TypeIntegration = api.TypeIntegration
)

// Registry constructors.

// NewTypeRegistry returns an empty node type registry.
func NewTypeRegistry() *TypeRegistry {
	return api.NewTypeRegistry()
}

// NewCoreRegistry returns a registry pre-loaded with the core node
// taxonomy (manual, prompt, tool, logic, memory, integration).
func NewCoreRegistry() *TypeRegistry {
	return api.NewCoreRegistry()
}

// Compiler pipeline.

// Validate runs every structural and semantic check against the graph.
// All checks run; findings accumulate. An empty Errors slice means the
// graph is compilable.
func Validate(g *Graph, reg *TypeRegistry) *ValidationResult {
	return validate.Run(g, reg)
}

// Compile validates the graph and, when it passes with zero errors,
// linearizes it into a plan. Validation errors are returned as a
// *StructuralError carrying the full issue list; warnings alone never
// block compilation.
func Compile(g *Graph, reg *TypeRegistry) (*LinearizedPlan, error) {
	res := validate.Run(g, reg)
	if !res.OK() {
		return nil, api.NewStructuralError(res.Errors...)
	}
	return linearize.Run(g, reg)
}

// Emitter constructors.

// NewStepChainEmitter returns the emitter for the declarative step-chain
// engine. Catalog capabilities extend its mapping table via options.
func NewStepChainEmitter(reg *TypeRegistry, opts ...StepChainOption) *StepChainEmitter {
	return emit.NewStepChainEmitter(reg, opts...)
}

// NewScriptEmitter returns the emitter for the code-synthesis engine.
func NewScriptEmitter(reg *TypeRegistry) *ScriptEmitter {
	return emit.NewScriptEmitter(reg)
}

// Simulator and deployment constructors.

// NewSimulator returns an execution simulator over the registry.
func NewSimulator(reg *TypeRegistry, opts ...SimulatorOption) *Simulator {
	return simulate.New(reg, opts...)
}

// Simulator options.

var (
	WithStepDelay      = simulate.WithStepDelay
	WithBranchOverride = simulate.WithBranchOverride
	WithObserver       = simulate.WithObserver
	WithTypeGate       = simulate.WithTypeGate

	WithCapabilityMapping = emit.WithCapabilityMapping
	WithTriggerMapping    = emit.WithTriggerMapping

	WithHTTPClient   = deployer.WithHTTPClient
	WithPollInterval = deployer.WithPollInterval
)

// NewDeployer returns a deployment orchestrator for the engine at baseURL.
func NewDeployer(baseURL string, opts ...DeployerOption) *Deployer {
	return deployer.New(baseURL, opts...)
}

// Store constructors.

// NewInMemoryRunStore returns a RunStore backed entirely by memory.
func NewInMemoryRunStore() RunStore {
	return persistence.NewInMemoryStore()
}

// NewSQLiteRunStore returns a RunStore that persists compiled artifacts
// and execution traces in a SQLite database.
func NewSQLiteRunStore(db *sql.DB) (RunStore, error) {
	return persistence.NewSQLiteRunStore(db)
}

// Catalog helpers.

// LoadCatalog parses capability descriptors from YAML, registers one
// integration node type per capability, and returns the step-chain
// emitter options that map those types to their engine identifiers.
func LoadCatalog(reg *TypeRegistry, r io.Reader) ([]Capability, []StepChainOption, error) {
	caps, err := catalog.Load(r)
	if err != nil {
		return nil, nil, err
	}
	if err := catalog.Register(reg, caps); err != nil {
		return nil, nil, err
	}
	return caps, catalog.EmitterOptions(caps), nil
}

// Convenience helpers that forward to the underlying components.

// Simulate compiles the graph and walks the plan with the given input.
func Simulate(ctx context.Context, sim *Simulator, g *Graph, reg *TypeRegistry, input any) (*ExecutionTrace, error) {
	plan, err := Compile(g, reg)
	if err != nil {
		return nil, err
	}
	return sim.Simulate(ctx, plan, g, input), nil
}
