package schema

import "fmt"

// List is the array-shaped attribute. Each element is cleaned against the
// item schemas in declared order; the first item schema that accepts the
// element wins.
type List struct {
	Attribute
	items []Schema
}

// NewList creates an array attribute over the given item schemas.
func NewList(name string, items []Schema, opts ...Option) *List {
	return &List{Attribute: newAttribute(name, opts...), items: items}
}

// Items returns the item schemas in declared order.
func (l *List) Items() []Schema { return l.items }

func (l *List) Clean(value any) (any, error) {
	value, done, err := l.cleanCommon(value)
	if done || err != nil {
		return value, err
	}
	data, ok := value.([]any)
	if !ok {
		return nil, &Error{Attribute: l.name, Message: "Should be a list", Code: EINVAL}
	}
	if len(l.items) == 0 {
		return copyValue(data), nil
	}

	verrors := NewValidationErrors()
	result := make([]any, 0, len(data))
	for index, element := range data {
		cleaned, err := l.cleanElement(element)
		if err != nil {
			attr := fmt.Sprintf("%s.%d", l.name, index)
			switch e := err.(type) {
			case *Error:
				verrors.Add(attr, e.Message, e.Code)
			case *ValidationErrors:
				for _, item := range e.Errors {
					verrors.Add(attr+"."+item.Attribute, item.Message, item.Code)
				}
			default:
				verrors.Add(attr, err.Error(), EINVAL)
			}
			continue
		}
		result = append(result, cleaned)
	}
	if err := verrors.Check(); err != nil {
		return nil, err
	}
	return result, nil
}

// cleanElement tries each item schema on an independent copy, first match
// wins.
func (l *List) cleanElement(element any) (any, error) {
	var lastErr error
	for _, item := range l.items {
		cleaned, err := item.Clean(copyValue(element))
		if err == nil {
			return cleaned, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (l *List) Validate(value any) error {
	if value == nil || value == NotProvided {
		return nil
	}
	data, ok := value.([]any)
	if !ok {
		return &Error{Attribute: l.name, Message: "Should be a list", Code: EINVAL}
	}
	verrors := NewValidationErrors()
	for index, element := range data {
		for _, item := range l.items {
			validator, ok := item.(Validator)
			if !ok {
				continue
			}
			if err := validator.Validate(element); err != nil {
				verrors.AddError(fmt.Sprintf("%s.%d", l.name, index), err)
			}
			break
		}
	}
	return verrors.Check()
}

func (l *List) Dump(value any) any {
	if out, done := l.dumpCommon(value); done {
		return out
	}
	if !l.HasPrivate() {
		return value
	}
	data, ok := value.([]any)
	if !ok {
		return value
	}
	out := make([]any, len(data))
	for i, element := range data {
		out[i] = l.dumpElement(element)
	}
	return out
}

// dumpElement tries item schemas with Clean to find the matching branch,
// then dumps through it. Unmatched elements pass through unchanged.
func (l *List) dumpElement(element any) any {
	for _, item := range l.items {
		if _, err := item.Clean(copyValue(element)); err == nil {
			return item.Dump(element)
		}
	}
	return element
}

func (l *List) ToJSONSchema(parent Schema) map[string]any {
	itemDocs := make([]map[string]any, 0, len(l.items))
	for _, item := range l.items {
		itemDocs = append(itemDocs, item.ToJSONSchema(l))
	}
	return mergeDoc(map[string]any{
		"type":  l.typeOrNull("array"),
		"items": map[string]any{"anyOf": itemDocs},
	}, l.jsonSchemaCommon(parent))
}

func (l *List) Resolve(reg *Schemas) (Schema, error) {
	if l.resolved {
		return l, nil
	}
	for index, item := range l.items {
		if item.Resolved() {
			continue
		}
		resolved, err := item.Resolve(reg)
		if err != nil {
			return nil, err
		}
		l.items[index] = resolved
	}
	l.resolved = true
	if l.register {
		if err := reg.Add(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *List) Copy() Schema {
	cp := &List{
		Attribute: l.Attribute.copyBase(),
		items:     make([]Schema, len(l.items)),
	}
	for i, item := range l.items {
		cp.items[i] = item.Copy()
	}
	return cp
}

func (l *List) HasPrivate() bool {
	if l.private {
		return true
	}
	for _, item := range l.items {
		if item.HasPrivate() {
			return true
		}
	}
	return false
}
