// Package method manages RPC method registration and dispatch-time
// validation. Methods declare the schemas of their inputs and output; a
// one-time resolution pass at startup materializes every deferred schema
// reference, and Call validates arguments before they reach handler code.
package method

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pelagos/shoal/core/schema"
)

// Handler is the business-logic entry point of a method. Arguments arrive
// cleaned and validated, one value per accepts schema.
type Handler func(ctx context.Context, args []any) (any, error)

// Method describes a named RPC operation.
type Method struct {
	// Name is the dotted method name (e.g. "tunable.create").
	Name string

	// Description for documentation output.
	Description string

	// Accepts declares one schema per positional argument.
	Accepts []schema.Schema

	// Returns declares the result schema; nil when the method's result is
	// opaque. Results are dumped through it to strip private data.
	Returns schema.Schema

	// Handler runs after validation.
	Handler Handler
}

// Metrics observes dispatch outcomes. Implementations must be safe for
// concurrent use.
type Metrics interface {
	ObserveCall(method, outcome string, seconds float64)
}

type nopMetrics struct{}

func (nopMetrics) ObserveCall(string, string, float64) {}

// Registry holds registered methods and the schema registry their
// declarations resolve against. Populate it at startup, call Resolve once,
// then treat it as read-only; Call is safe for concurrent use afterwards.
type Registry struct {
	mu       sync.RWMutex
	schemas  *schema.Schemas
	methods  map[string]*Method
	resolved bool
	metrics  Metrics
	logger   zerolog.Logger
}

// NewRegistry creates a method registry over the given schema registry.
func NewRegistry(schemas *schema.Schemas, logger zerolog.Logger) *Registry {
	return &Registry{
		schemas: schemas,
		methods: make(map[string]*Method),
		metrics: nopMetrics{},
		logger:  logger,
	}
}

// SetMetrics installs a dispatch observer.
func (r *Registry) SetMetrics(m Metrics) {
	r.metrics = m
}

// Schemas returns the underlying schema registry.
func (r *Registry) Schemas() *schema.Schemas {
	return r.schemas
}

// Register adds a method. Duplicate names and nil handlers are
// registration errors.
func (r *Registry) Register(m *Method) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.Name == "" {
		return fmt.Errorf("method has no name")
	}
	if m.Handler == nil {
		return fmt.Errorf("method %q has no handler", m.Name)
	}
	if _, exists := r.methods[m.Name]; exists {
		return fmt.Errorf("method %q already registered", m.Name)
	}
	r.methods[m.Name] = m
	return nil
}

// Get returns a registered method by name.
func (r *Registry) Get(name string) (*Method, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.methods[name]
	return m, ok
}

// List returns all registered methods sorted by name.
func (r *Registry) List() []*Method {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Method, 0, len(r.methods))
	for _, m := range r.methods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Resolve runs the one-time resolution pass over every method's accepts
// and returns schemas. Any failure is a startup fault; the registry must
// not serve calls after an error.
func (r *Registry) Resolve() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := r.methods[name]
		for i, s := range m.Accepts {
			if s.Resolved() {
				continue
			}
			resolved, err := s.Resolve(r.schemas)
			if err != nil {
				return fmt.Errorf("method %s: resolve argument %d (%s): %w", name, i, s.Name(), err)
			}
			m.Accepts[i] = resolved
		}
		if m.Returns != nil && !m.Returns.Resolved() {
			resolved, err := m.Returns.Resolve(r.schemas)
			if err != nil {
				return fmt.Errorf("method %s: resolve result schema: %w", name, err)
			}
			m.Returns = resolved
		}
	}

	r.resolved = true
	r.logger.Info().Int("methods", len(r.methods)).Int("schemas", r.schemas.Len()).
		Msg("method registry resolved")
	return nil
}

// UnknownMethodError reports a call to a name that was never registered.
type UnknownMethodError struct {
	Name string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("method %q is not registered", e.Name)
}

// Call dispatches a method: missing trailing arguments become
// schema.NotProvided, each argument is cleaned and validated against its
// accepts schema, the handler runs, and the result is dumped through the
// returns schema. Validation faults are *schema.Error or
// *schema.ValidationErrors and carry the offending attribute path.
func (r *Registry) Call(ctx context.Context, name string, args []any) (any, error) {
	r.mu.RLock()
	resolved := r.resolved
	m, ok := r.methods[name]
	r.mu.RUnlock()

	if !resolved {
		return nil, fmt.Errorf("method registry is not resolved; Call is only valid after startup")
	}
	if !ok {
		return nil, &UnknownMethodError{Name: name}
	}

	if len(args) > len(m.Accepts) {
		verrors := schema.NewValidationErrors()
		verrors.Add(name, fmt.Sprintf("takes %d arguments, got %d", len(m.Accepts), len(args)), schema.EINVAL)
		r.metrics.ObserveCall(name, "invalid", 0)
		return nil, verrors.Check()
	}

	cleaned := make([]any, len(m.Accepts))
	for i, s := range m.Accepts {
		value := any(schema.NotProvided)
		if i < len(args) {
			value = args[i]
		}
		v, err := s.Clean(value)
		if err != nil {
			r.metrics.ObserveCall(name, "invalid", 0)
			return nil, err
		}
		if validator, ok := s.(schema.Validator); ok {
			if err := validator.Validate(v); err != nil {
				r.metrics.ObserveCall(name, "invalid", 0)
				return nil, err
			}
		}
		cleaned[i] = v
	}

	start := time.Now()
	result, err := m.Handler(ctx, cleaned)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		outcome := "error"
		switch err.(type) {
		case *schema.Error, *schema.ValidationErrors:
			outcome = "invalid"
		}
		r.metrics.ObserveCall(name, outcome, elapsed)
		return nil, err
	}

	if m.Returns != nil {
		result = m.Returns.Dump(result)
	}
	r.metrics.ObserveCall(name, "ok", elapsed)
	return result, nil
}
