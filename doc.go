// Package flowforge compiles visual agent workflow graphs into
// executable artifacts.
//
// Flowforge is designed for platforms where users assemble automation
// agents on a node-and-edge canvas and the resulting graph must be
// validated, ordered, and rendered for a concrete execution engine. It
// runs fully in Go, carries no server of its own, and integrates
// cleanly into existing backends.
//
// # Core Concepts
//
// The programming model is intentionally small:
//
//  1. Graph
//  2. TypeRegistry
//  3. Compile
//  4. Emitter
//  5. Simulator
//  6. Deployer
//
// Together they form a complete compilation pipeline with deterministic
// output, durable artifact storage (when using the SQLite store), and a
// clear mental model.
//
// # Graph
//
// A Graph is the canvas-level model: nodes carry a type id and a free
// form configuration map, edges connect named output ports to named
// input ports. Graphs can be assembled programmatically with
// GraphBuilder or decoded from their JSON wire form.
//
// # TypeRegistry
//
// The TypeRegistry holds NodeTypeDescriptors describing every node type
// a graph may use: its configuration contract, its input and output
// ports, and its category. NewCoreRegistry ships the built-in taxonomy
// (manual trigger, prompt, tool, logic, memory, integration); catalogs
// of third-party integrations extend it at load time via LoadCatalog.
//
// # Compile
//
// Compile validates a graph against the registry and, when it is
// structurally sound, linearizes it into a LinearizedPlan: an
// index-addressed sequence of steps where every step names its
// successor, or its labelled branch targets for branching nodes. All
// validation findings accumulate in one pass; errors block compilation
// while warnings do not.
//
// # Emitter
//
// An Emitter renders a plan for one execution backend:
//
//   - StepChainEmitter produces a declarative trigger-plus-steps JSON
//     document for step-chain engines
//   - ScriptEmitter synthesizes one source module per node plus a
//     manifest describing module order and transitions
//
// Both emitters reject node types their backend cannot express with a
// typed ConfigError rather than emitting partial output.
//
// # Simulator
//
// The Simulator walks a plan without calling any external service,
// producing the same ExecutionTrace shape a real run would. Branch
// decisions follow configured conditions or per-node overrides, and
// observers receive the same callbacks as in production runs. Failures
// halt the walk immediately.
//
// # Deployer
//
// The Deployer pushes a compiled artifact to a remote execution engine
// over HTTP, triggers runs, and polls run state until it reaches a
// terminal status or a timeout expires.
//
// # Sandbox
//
// Sandbox bundles a registry, both emitters, a simulator, and a run
// store into a single process-local helper for development and unit
// testing. NewSQLiteWorkspace is the durable variant backed by an
// embedded SQLite database.
//
// # Summary
//
// Flowforge's goal is a graph compiler that feels like Go: easy to
// embed, easy to test, deterministic, and without operational overhead.
// Graphs model the canvas, the registry defines the vocabulary, Compile
// orders the work, Emitters speak each engine's dialect, the Simulator
// previews behavior, and the Deployer ships the result.
package flowforge
