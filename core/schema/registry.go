package schema

import "fmt"

// Schemas is the name-keyed store of top-level schema definitions: the
// substrate deferred references resolve against. It is populated during
// the declaration and resolution phases and read-only afterwards.
// Definitions are never removed.
type Schemas struct {
	names []string
	items map[string]Schema
}

// NewSchemas creates an empty registry.
func NewSchemas() *Schemas {
	return &Schemas{items: make(map[string]Schema)}
}

// Add inserts a schema under its own name. Duplicate names are a
// resolution fault.
func (s *Schemas) Add(sc Schema) error {
	name := sc.Name()
	if _, exists := s.items[name]; exists {
		return resolverErrorf("schema %q is already registered", name)
	}
	s.names = append(s.names, name)
	s.items[name] = sc
	return nil
}

// Get returns the stored definition, not a copy. Callers that need to
// modify it must Copy first. Returns nil when the name is unknown.
func (s *Schemas) Get(name string) Schema {
	return s.items[name]
}

// Names returns the registered names in insertion order.
func (s *Schemas) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of registered schemas.
func (s *Schemas) Len() int { return len(s.names) }

// MustAdd panics on a duplicate name; for use in declarations that are
// wired statically at startup.
func (s *Schemas) MustAdd(sc Schema) {
	if err := s.Add(sc); err != nil {
		panic(fmt.Sprintf("schema registry: %v", err))
	}
}
