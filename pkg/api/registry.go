package api

import (
	"fmt"
	"sync"
)

// TypeRegistry holds the node type descriptors known to the compiler.
// The core taxonomy is registered at construction; integration descriptors
// from a capability catalog are added afterwards. Registration happens at
// startup; lookups may run concurrently with each other.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]NodeTypeDescriptor
	order []string
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[string]NodeTypeDescriptor)}
}

// Register adds a descriptor. It fails on an empty type id or a duplicate
// registration; replacing a descriptor is not supported because compiled
// plans assume descriptors never change underneath them.
func (r *TypeRegistry) Register(d NodeTypeDescriptor) error {
	if d.TypeID == "" {
		return fmt.Errorf("flowforge: descriptor with empty type id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[d.TypeID]; ok {
		return fmt.Errorf("flowforge: node type %q already registered", d.TypeID)
	}
	r.types[d.TypeID] = d.clone()
	r.order = append(r.order, d.TypeID)
	return nil
}

// MustRegister is Register but panics on error. Intended for static
// registration at startup.
func (r *TypeRegistry) MustRegister(d NodeTypeDescriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Lookup returns a copy of the descriptor for the given type id.
func (r *TypeRegistry) Lookup(typeID string) (NodeTypeDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[typeID]
	if !ok {
		return NodeTypeDescriptor{}, false
	}
	return d.clone(), true
}

// TypeIDs returns all registered type ids in registration order.
func (r *TypeRegistry) TypeIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
