package schema

// Redacted replaces private values in dumped output.
const Redacted = "********"

type notProvided struct{}

func (notProvided) String() string { return "<not provided>" }

// NotProvided marks an argument that was not supplied at all, as opposed
// to an explicit null. Defaults are only applied to NotProvided values.
var NotProvided any = notProvided{}

// Schema is the capability set every schema variant implements.
//
// Clean and Dump operate on decoded JSON-ish values (nil, bool, int64,
// float64, string, []any, map[string]any). Clean failures are *Error or
// *ValidationErrors; Resolve failures are *ResolverError.
type Schema interface {
	Name() string
	SetName(name string)

	// Resolved reports whether the resolution pass has materialized this
	// schema. Clean/Validate/Dump must not be called before that.
	Resolved() bool

	// ShouldRegister reports whether resolution inserts this schema into
	// the registry under its own name.
	ShouldRegister() bool

	Clean(value any) (any, error)
	Dump(value any) any
	ToJSONSchema(parent Schema) map[string]any

	// Resolve materializes the schema against the registry and returns the
	// schema to use in its place.
	Resolve(reg *Schemas) (Schema, error)

	// Copy returns an independent deep clone with register disabled.
	Copy() Schema

	HasPrivate() bool
}

// Requirer is the optional capability of schemas that know whether a value
// for them must be supplied. Deferred references do not expose it until
// they are resolved.
type Requirer interface {
	Required() bool
}

// Validator is the optional capability of schemas that support a
// side-effect-free re-check of an already cleaned value.
type Validator interface {
	Validate(value any) error
}

// Attribute carries the state shared by every leaf schema variant.
// Concrete variants embed it and add their own Clean/Dump/ToJSONSchema.
type Attribute struct {
	name        string
	title       string
	description string
	required    bool
	null        bool
	private     bool
	defValue    any
	hasDefault  bool
	register    bool
	resolved    bool

	// additionalAttrs and update are only meaningful for Dict; they live
	// here so the shared Option type can set them.
	additionalAttrs bool
	update          bool
}

// Option configures an Attribute at construction time.
type Option func(*Attribute)

// Title sets the display title. Defaults to the attribute name.
func Title(title string) Option { return func(a *Attribute) { a.title = title } }

// Description sets the human-readable description.
func Description(desc string) Option { return func(a *Attribute) { a.description = desc } }

// Required marks the attribute as mandatory.
func Required() Option { return func(a *Attribute) { a.required = true } }

// Null allows an explicit null value.
func Null() Option { return func(a *Attribute) { a.null = true } }

// Private excludes the attribute's value from external dumps.
func Private() Option { return func(a *Attribute) { a.private = true } }

// Default sets the value used when the attribute is not provided.
func Default(value any) Option {
	return func(a *Attribute) {
		a.defValue = value
		a.hasDefault = true
	}
}

// Update marks an object schema as a partial-update body: children absent
// from the value are skipped during Clean instead of being defaulted or
// reported as missing.
func Update() Option { return func(a *Attribute) { a.update = true } }

// RegisterSchema makes the resolution pass insert the schema into the
// registry under its own name, so other declarations can reference it.
func RegisterSchema() Option { return func(a *Attribute) { a.register = true } }

func newAttribute(name string, opts ...Option) Attribute {
	a := Attribute{name: name, title: name}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

func (a *Attribute) Name() string            { return a.name }
func (a *Attribute) SetName(name string)     { a.name = name }
func (a *Attribute) Title() string           { return a.title }
func (a *Attribute) SetTitle(title string)   { a.title = title }
func (a *Attribute) Description() string     { return a.description }
func (a *Attribute) SetDescription(d string) { a.description = d }
func (a *Attribute) Required() bool          { return a.required }
func (a *Attribute) SetRequired(r bool)      { a.required = r }
func (a *Attribute) SetNull(n bool)          { a.null = n }
func (a *Attribute) SetPrivate(p bool)       { a.private = p }
func (a *Attribute) Resolved() bool          { return a.resolved }
func (a *Attribute) ShouldRegister() bool    { return a.register }
func (a *Attribute) HasPrivate() bool        { return a.private }
func (a *Attribute) HasDefault() bool        { return a.hasDefault }
func (a *Attribute) DefaultValue() any       { return a.defValue }

// SetDefault replaces the default value.
func (a *Attribute) SetDefault(value any) {
	a.defValue = value
	a.hasDefault = true
}

// Validate is the base re-check; leaf variants that carry no cross-field
// rules accept any already-cleaned value.
func (a *Attribute) Validate(value any) error { return nil }

// cleanCommon applies default and null handling shared by all variants.
// done is true when the returned value is final and the variant's own type
// check must be skipped.
func (a *Attribute) cleanCommon(value any) (out any, done bool, err error) {
	if value == NotProvided {
		if a.hasDefault {
			return copyValue(a.defValue), true, nil
		}
		if a.required {
			return nil, true, &Error{Attribute: a.name, Message: "attribute required", Code: EINVAL}
		}
		return NotProvided, true, nil
	}
	if value == nil {
		if !a.null {
			return nil, true, &Error{Attribute: a.name, Message: "null not allowed", Code: EINVAL}
		}
		return nil, true, nil
	}
	return value, false, nil
}

// resolveCommon implements resolution for self-contained variants: mark
// resolved and register when asked.
func (a *Attribute) resolveCommon(self Schema, reg *Schemas) (Schema, error) {
	if a.resolved {
		return self, nil
	}
	a.resolved = true
	if a.register {
		if err := reg.Add(self); err != nil {
			return nil, err
		}
	}
	return self, nil
}

// dumpCommon redacts private values.
func (a *Attribute) dumpCommon(value any) (any, bool) {
	if a.private {
		return Redacted, true
	}
	return value, false
}

// jsonSchemaCommon emits the metadata keys every variant's document shares.
func (a *Attribute) jsonSchemaCommon(parent Schema) map[string]any {
	doc := map[string]any{
		"_name_":      a.name,
		"title":       a.title,
		"_required_":  a.required,
		"description": a.description,
	}
	if a.hasDefault {
		doc["default"] = a.defValue
	}
	return doc
}

// mergeDoc overlays the common metadata onto a variant document.
func mergeDoc(doc, common map[string]any) map[string]any {
	for k, v := range common {
		doc[k] = v
	}
	return doc
}

// typeOrNull returns the JSON-schema type field honoring nullability.
func (a *Attribute) typeOrNull(typ string) any {
	if a.null {
		return []string{typ, "null"}
	}
	return typ
}

// copyValue deep-copies a decoded JSON-ish value. Scalars are returned
// as-is; maps and slices are cloned recursively.
func copyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = copyValue(item)
		}
		return out
	default:
		return value
	}
}

// valueEqual compares decoded JSON-ish values structurally.
func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, item := range av {
			other, ok := bv[k]
			if !ok || !valueEqual(item, other) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i, item := range av {
			if !valueEqual(item, bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
