package schema

// Ref is a deferred, by-name pointer to another registered schema. Before
// resolution it carries no behavior beyond identity; Resolve replaces it
// with an independent deep copy of the target, renamed and never
// re-registered under the referencing name. The target may be declared
// after the Ref; order does not matter.
type Ref struct {
	schemaName string
	name       string
	resolved   bool
}

// NewRef creates a reference to a registered schema, reusing its name.
func NewRef(schemaName string) *Ref {
	return &Ref{schemaName: schemaName, name: schemaName}
}

// NewRenamedRef creates a reference that takes a new identity on
// resolution.
func NewRenamedRef(schemaName, newName string) *Ref {
	return &Ref{schemaName: schemaName, name: newName}
}

func (r *Ref) Name() string         { return r.name }
func (r *Ref) SetName(name string)  { r.name = name }
func (r *Ref) Resolved() bool       { return r.resolved }
func (r *Ref) ShouldRegister() bool { return false }
func (r *Ref) HasPrivate() bool     { return false }

// Clean must not be called before resolution.
func (r *Ref) Clean(value any) (any, error) {
	return nil, &Error{Attribute: r.name, Message: "unresolved schema reference", Code: EINVAL}
}

func (r *Ref) Dump(value any) any { return value }

func (r *Ref) ToJSONSchema(parent Schema) map[string]any {
	return map[string]any{"_name_": r.name, "$ref": r.schemaName}
}

// Resolve looks up the target and returns an independent, renamed deep
// copy of it. Mutating the result never affects the registered original.
// Deferred nodes still inside the target are materialized on the copy.
func (r *Ref) Resolve(reg *Schemas) (Schema, error) {
	target := reg.Get(r.schemaName)
	if target == nil {
		return nil, resolverErrorf("schema %q does not exist", r.schemaName)
	}
	cp := target.Copy()
	cp.SetName(r.name)
	resolved, err := cp.Resolve(reg)
	if err != nil {
		return nil, err
	}
	r.resolved = true
	return resolved, nil
}

func (r *Ref) Copy() Schema {
	cp := *r
	return &cp
}
