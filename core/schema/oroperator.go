package schema

import "fmt"

// OROperator is a tagged union over a fixed list of alternative schemas
// with implicit discrimination: there is no tag field, matching is by
// trial. Alternatives are consulted in declared order and the first one
// that accepts a value wins, which makes declaration order a first-class
// part of the contract whenever alternatives structurally overlap.
type OROperator struct {
	name        string
	title       string
	description string
	schemas     []Schema
	defValue    any
	hasDefault  bool
	private     bool
	resolved    bool
}

// OROption configures an OROperator at construction time.
type OROption func(*OROperator)

// ORTitle sets the display title.
func ORTitle(title string) OROption { return func(o *OROperator) { o.title = title } }

// ORDescription sets the human-readable description.
func ORDescription(desc string) OROption { return func(o *OROperator) { o.description = desc } }

// ORDefault sets the union's own default; an incoming value equal to it is
// returned without consulting the alternatives.
func ORDefault(value any) OROption {
	return func(o *OROperator) {
		o.defValue = value
		o.hasDefault = true
	}
}

// ORPrivate marks the union itself as private.
func ORPrivate() OROption { return func(o *OROperator) { o.private = true } }

// NewOROperator creates a union over the given alternatives, tried in the
// order they are declared.
func NewOROperator(name string, alternatives []Schema, opts ...OROption) *OROperator {
	o := &OROperator{name: name, title: name, schemas: alternatives}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *OROperator) Name() string         { return o.name }
func (o *OROperator) SetName(name string)  { o.name = name }
func (o *OROperator) Resolved() bool       { return o.resolved }
func (o *OROperator) ShouldRegister() bool { return false }

// Schemas returns the alternatives in declared order.
func (o *OROperator) Schemas() []Schema { return o.schemas }

// Required is true iff any alternative that exposes a required capability
// is required. A union with no capable alternative is not required.
func (o *OROperator) Required() bool {
	for _, alt := range o.schemas {
		if req, ok := alt.(Requirer); ok && req.Required() {
			return true
		}
	}
	return false
}

// Clean tries each alternative in declared order on an independent copy of
// the value; the first alternative that cleans without error wins. When
// every alternative rejects the value, the error embeds the accumulated
// per-alternative detail.
func (o *OROperator) Clean(value any) (any, error) {
	if o.hasDefault && valueEqual(value, o.defValue) {
		return copyValue(o.defValue), nil
	}

	verrors := NewValidationErrors()
	for _, alt := range o.schemas {
		cleaned, err := alt.Clean(copyValue(value))
		if err == nil {
			return cleaned, nil
		}
		verrors.AddError(alt.Name(), err)
	}
	return nil, &Error{
		Attribute: o.name,
		Message:   fmt.Sprintf("Result does not match specified schema: %s", verrors.Error()),
		Code:      EINVAL,
	}
}

// Validate tries each alternative's validate capability; alternatives
// without one are skipped, not failed. The first alternative that
// validates wins; when none does, the aggregated errors of all attempted
// alternatives are raised.
func (o *OROperator) Validate(value any) error {
	attempted := NewValidationErrors()
	for _, alt := range o.schemas {
		validator, ok := alt.(Validator)
		if !ok {
			continue
		}
		err := validator.Validate(value)
		if err == nil {
			return nil
		}
		attempted.AddError(alt.Name(), err)
	}
	return attempted.Check()
}

// Dump tries each alternative with Clean on an independent copy; the
// first alternative whose Clean succeeds dumps the original value. When
// nothing matches, the value is returned unchanged.
func (o *OROperator) Dump(value any) any {
	value = copyValue(value)
	for _, alt := range o.schemas {
		if _, err := alt.Clean(copyValue(value)); err == nil {
			return alt.Dump(value)
		}
	}
	return value
}

func (o *OROperator) ToJSONSchema(parent Schema) map[string]any {
	alternatives := make([]map[string]any, 0, len(o.schemas))
	for _, alt := range o.schemas {
		alternatives = append(alternatives, alt.ToJSONSchema(o))
	}
	return map[string]any{
		"anyOf":       alternatives,
		"nullable":    false,
		"_name_":      o.name,
		"description": o.description,
		"_required_":  o.Required(),
	}
}

// Resolve materializes any unresolved alternative in place, in declared
// order. Idempotent.
func (o *OROperator) Resolve(reg *Schemas) (Schema, error) {
	if o.resolved {
		return o, nil
	}
	for index, alt := range o.schemas {
		if alt.Resolved() {
			continue
		}
		resolved, err := alt.Resolve(reg)
		if err != nil {
			return nil, err
		}
		o.schemas[index] = resolved
	}
	o.resolved = true
	return o, nil
}

func (o *OROperator) Copy() Schema {
	cp := &OROperator{
		name:        o.name,
		title:       o.title,
		description: o.description,
		schemas:     make([]Schema, len(o.schemas)),
		defValue:    copyValue(o.defValue),
		hasDefault:  o.hasDefault,
		private:     o.private,
		resolved:    o.resolved,
	}
	for i, alt := range o.schemas {
		cp.schemas[i] = alt.Copy()
	}
	return cp
}

// HasPrivate propagates outward through the union: one private branch is
// enough to treat the whole union as exposing private data.
func (o *OROperator) HasPrivate() bool {
	if o.private {
		return true
	}
	for _, alt := range o.schemas {
		if alt.HasPrivate() {
			return true
		}
	}
	return false
}
