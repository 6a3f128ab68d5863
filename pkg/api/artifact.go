package api

// Backend identifiers for the two supported execution engines.
const (
	BackendStepChain = "stepchain"
	BackendScript    = "script"
)

// CompiledArtifact is a backend-specific executable representation of a
// linearized plan. Artifacts are immutable once produced by an emitter.
type CompiledArtifact interface {
	// Backend names the engine profile this artifact targets.
	Backend() string
}

// TriggerDefinition is the entry of a step-chain document. The trigger is
// derived from the plan's entry node; a manual entry becomes a generic
// webhook trigger whose input schema mirrors the entry node's config.
type TriggerDefinition struct {
	Name       string         `json:"name"`
	Capability string         `json:"capability"`
	Settings   map[string]any `json:"settings"`
}

// ChainStep is one executable step of a step-chain document. A linear step
// carries NextAction; a branching step instead carries NextActions, one
// entry per branch label. An empty next pointer ends the chain (or that
// branch of it).
type ChainStep struct {
	Name        string            `json:"name"`
	Capability  string            `json:"capability"`
	Action      string            `json:"action"`
	Settings    map[string]any    `json:"settings"`
	NextAction  string            `json:"nextAction,omitempty"`
	NextActions map[string]string `json:"nextActions,omitempty"`
}

// StepChainDocument is the declarative engine's native flow shape.
type StepChainDocument struct {
	DisplayName string            `json:"displayName"`
	Trigger     TriggerDefinition `json:"trigger"`
	Steps       []ChainStep       `json:"steps"`
}

// Backend implements CompiledArtifact.
func (*StepChainDocument) Backend() string { return BackendStepChain }

// GeneratedModule is one synthesized source module of a script bundle.
type GeneratedModule struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Content  string `json:"content"`
}

// ModuleTransition records one edge of the call graph between generated
// modules. Label is "" for a plain next-step transition and the branch
// label for branching ones; To is "" when the transition terminates the
// run. The transitions preserve the plan's full branch structure, which
// ModuleOrder alone (a flat listing) cannot.
type ModuleTransition struct {
	From  string `json:"from"`
	Label string `json:"label,omitempty"`
	To    string `json:"to,omitempty"`
}

// ScriptManifest describes how the code-synthesis engine chains the
// generated modules together.
type ScriptManifest struct {
	Summary       string             `json:"summary"`
	ModuleOrder   []string           `json:"moduleOrder"`
	FailureModule string             `json:"failureModule"`
	InputSchema   map[string]any     `json:"inputSchema"`
	Transitions   []ModuleTransition `json:"transitions,omitempty"`
}

// ScriptBundle is the code-synthesis engine's native artifact: generated
// modules plus the manifest that sequences them.
type ScriptBundle struct {
	Modules  []GeneratedModule `json:"modules"`
	Manifest ScriptManifest    `json:"manifest"`
}

// Backend implements CompiledArtifact.
func (*ScriptBundle) Backend() string { return BackendScript }
