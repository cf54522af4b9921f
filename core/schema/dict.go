package schema

import "fmt"

// Dict is the object-shaped attribute. It owns a name-keyed,
// insertion-ordered mapping of child attributes; Ref and Patch operate on
// schemas of this kind.
type Dict struct {
	Attribute
	keys            []string
	attrs           map[string]Schema
	additionalAttrs bool
	update          bool
}

// AdditionalAttrs allows keys that are not declared as children. Unknown
// keys are carried through Clean unvalidated.
func AdditionalAttrs() Option { return func(a *Attribute) { a.additionalAttrs = true } }

// NewDict creates an object attribute with the given children, preserving
// their declaration order.
func NewDict(name string, attrs []Schema, opts ...Option) *Dict {
	d := &Dict{
		Attribute: newAttribute(name, opts...),
		attrs:     make(map[string]Schema, len(attrs)),
	}
	d.additionalAttrs = d.Attribute.additionalAttrs
	d.update = d.Attribute.update
	for _, attr := range attrs {
		d.Set(attr)
	}
	return d
}

// SetUpdate toggles partial-update cleaning: with it set, absent children
// are left out of the result instead of being defaulted or required.
func (d *Dict) SetUpdate(u bool) { d.update = u }

// Set inserts or overwrites a child attribute. A new name is appended at
// the end of the declaration order; an existing name keeps its position.
func (d *Dict) Set(attr Schema) {
	if _, ok := d.attrs[attr.Name()]; !ok {
		d.keys = append(d.keys, attr.Name())
	}
	d.attrs[attr.Name()] = attr
}

// Remove deletes a child attribute by name. It reports whether the child
// existed.
func (d *Dict) Remove(name string) bool {
	if _, ok := d.attrs[name]; !ok {
		return false
	}
	delete(d.attrs, name)
	for i, k := range d.keys {
		if k == name {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the child attribute with the given name.
func (d *Dict) Get(name string) (Schema, bool) {
	attr, ok := d.attrs[name]
	return attr, ok
}

// Len returns the number of children.
func (d *Dict) Len() int { return len(d.keys) }

// Attrs returns the children in declaration order.
func (d *Dict) Attrs() []Schema {
	out := make([]Schema, 0, len(d.keys))
	for _, k := range d.keys {
		out = append(out, d.attrs[k])
	}
	return out
}

func (d *Dict) Clean(value any) (any, error) {
	value, done, err := d.cleanCommon(value)
	if done || err != nil {
		return value, err
	}
	data, ok := value.(map[string]any)
	if !ok {
		return nil, &Error{Attribute: d.name, Message: "A dict was expected", Code: EINVAL}
	}

	verrors := NewValidationErrors()
	result := make(map[string]any, len(data))

	for key, item := range data {
		if _, known := d.attrs[key]; known {
			continue
		}
		if d.additionalAttrs {
			result[key] = copyValue(item)
			continue
		}
		verrors.Add(fmt.Sprintf("%s.%s", d.name, key), "Field was not expected", EINVAL)
	}

	for _, key := range d.keys {
		attr := d.attrs[key]
		item, present := data[key]
		if !present {
			if d.update {
				continue
			}
			item = NotProvided
		}
		cleaned, err := attr.Clean(item)
		if err != nil {
			verrors.AddError(fmt.Sprintf("%s.%s", d.name, key), prefixError(d.name, err))
			continue
		}
		if cleaned == NotProvided {
			continue
		}
		result[key] = cleaned
	}

	if err := verrors.Check(); err != nil {
		return nil, err
	}
	return result, nil
}

// prefixError scopes a child failure under the parent attribute name so
// nested faults stay addressable from the top of the value.
func prefixError(parent string, err error) error {
	switch e := err.(type) {
	case *Error:
		return &Error{Attribute: parent + "." + e.Attribute, Message: e.Message, Code: e.Code}
	case *ValidationErrors:
		out := NewValidationErrors()
		for _, item := range e.Errors {
			out.Add(parent+"."+item.Attribute, item.Message, item.Code)
		}
		return out
	default:
		return err
	}
}

// Validate re-checks an already cleaned value, aggregating child failures.
func (d *Dict) Validate(value any) error {
	if value == nil || value == NotProvided {
		return nil
	}
	data, ok := value.(map[string]any)
	if !ok {
		return &Error{Attribute: d.name, Message: "A dict was expected", Code: EINVAL}
	}
	verrors := NewValidationErrors()
	for _, key := range d.keys {
		item, present := data[key]
		if !present {
			continue
		}
		validator, ok := d.attrs[key].(Validator)
		if !ok {
			continue
		}
		if err := validator.Validate(item); err != nil {
			verrors.AddError(fmt.Sprintf("%s.%s", d.name, key), prefixError(d.name, err))
		}
	}
	return verrors.Check()
}

func (d *Dict) Dump(value any) any {
	if out, done := d.dumpCommon(value); done {
		return out
	}
	data, ok := value.(map[string]any)
	if !ok {
		return value
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = copyValue(v)
	}
	for _, key := range d.keys {
		attr := d.attrs[key]
		if !attr.HasPrivate() {
			continue
		}
		if item, present := out[key]; present {
			out[key] = attr.Dump(item)
		}
	}
	return out
}

func (d *Dict) ToJSONSchema(parent Schema) map[string]any {
	properties := make(map[string]any, len(d.keys))
	for _, key := range d.keys {
		properties[key] = d.attrs[key].ToJSONSchema(d)
	}
	return mergeDoc(map[string]any{
		"type":                 d.typeOrNull("object"),
		"properties":           properties,
		"additionalProperties": d.additionalAttrs,
	}, d.jsonSchemaCommon(parent))
}

func (d *Dict) Resolve(reg *Schemas) (Schema, error) {
	if d.resolved {
		return d, nil
	}
	for _, key := range d.keys {
		attr := d.attrs[key]
		if attr.Resolved() {
			continue
		}
		resolved, err := attr.Resolve(reg)
		if err != nil {
			return nil, err
		}
		d.attrs[key] = resolved
	}
	d.resolved = true
	if d.register {
		if err := reg.Add(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Dict) Copy() Schema {
	cp := &Dict{
		Attribute:       d.Attribute.copyBase(),
		keys:            append([]string(nil), d.keys...),
		attrs:           make(map[string]Schema, len(d.attrs)),
		additionalAttrs: d.additionalAttrs,
		update:          d.update,
	}
	for name, attr := range d.attrs {
		cp.attrs[name] = attr.Copy()
	}
	return cp
}

func (d *Dict) HasPrivate() bool {
	if d.private {
		return true
	}
	for _, attr := range d.attrs {
		if attr.HasPrivate() {
			return true
		}
	}
	return false
}
