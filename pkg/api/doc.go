// Package api contains the core building blocks used by the flowforge
// graph compiler. It provides the data model for graphs, validation
// results, linearized plans, compiled artifacts, execution traces, and run
// observability.
//
// Most users interact with the higher-level flowforge package, which
// re-exports selected types and helpers from this package. The api package
// is intended for advanced use cases, custom emitters, or contributors
// extending the compiler itself.
//
// # Concepts
//
// The api package centers around a small set of concepts:
//
//   - Graphs: node/edge containers edited by UI layers
//   - Node type descriptors: config schema and declared ports per type
//   - Linearized plans: the ordered/branching step chains a graph compiles to
//   - Compiled artifacts: backend-specific executable representations
//   - Execution traces and observers
//
// # Graphs
//
// A Graph is a pure data container. Its mutation operations are total;
// the only structural rule enforced at edit time is that an edge must
// reference nodes the graph contains. All semantic checking happens in the
// validator, which accumulates issues rather than failing on the first one.
//
// # Descriptors and the Type Registry
//
// A NodeTypeDescriptor declares a node type's default configuration, its
// mandatory config keys, and its input/output ports. Descriptors for the
// core taxonomy (manual, prompt, tool, logic, memory, integration) are
// registered by NewCoreRegistry; descriptors for external capabilities are
// added from a capability catalog. Descriptors are immutable once
// registered, which is what makes compilation deterministic.
//
// # Plans and Artifacts
//
// A LinearizedPlan stores its steps in an index-addressed arena so that a
// step reachable via several branches exists exactly once. Emitters turn a
// plan into either a StepChainDocument (declarative engine) or a
// ScriptBundle (code-synthesis engine); both are immutable value shapes
// that marshal directly to the engines' wire formats.
//
// # Observability
//
// RunObserver receives run and step lifecycle events from the simulator and
// the deployment poller. Ready-made implementations cover structured
// logging (log/slog), in-memory metrics, and fan-out composition.
package api
