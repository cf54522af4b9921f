package schema

import (
	"fmt"
	"strings"
)

// copyBase clones the shared attribute state for Copy implementations.
// Copies never re-register under the source's name.
func (a Attribute) copyBase() Attribute {
	a.defValue = copyValue(a.defValue)
	a.register = false
	return a
}

// Bool accepts true or false. There is no coercion of truthy values; the
// check is a strict type check.
type Bool struct {
	Attribute
}

// NewBool creates a boolean attribute.
func NewBool(name string, opts ...Option) *Bool {
	return &Bool{Attribute: newAttribute(name, opts...)}
}

func (b *Bool) Clean(value any) (any, error) {
	value, done, err := b.cleanCommon(value)
	if done || err != nil {
		return value, err
	}
	if _, ok := value.(bool); !ok {
		return nil, &Error{Attribute: b.name, Message: "Not a boolean", Code: EINVAL}
	}
	return value, nil
}

func (b *Bool) Dump(value any) any {
	out, _ := b.dumpCommon(value)
	return out
}

func (b *Bool) ToJSONSchema(parent Schema) map[string]any {
	return mergeDoc(map[string]any{
		"type": b.typeOrNull("boolean"),
	}, b.jsonSchemaCommon(parent))
}

func (b *Bool) Resolve(reg *Schemas) (Schema, error) {
	return b.resolveCommon(b, reg)
}

func (b *Bool) Copy() Schema {
	cp := *b
	cp.Attribute = b.Attribute.copyBase()
	return &cp
}

// Int accepts integers. Strings are rejected even when they contain
// digits; float64 values produced by JSON decoding are accepted only when
// integral. Cleaned values are normalized to int64.
type Int struct {
	Attribute
}

// NewInt creates an integer attribute.
func NewInt(name string, opts ...Option) *Int {
	return &Int{Attribute: newAttribute(name, opts...)}
}

func (i *Int) Clean(value any) (any, error) {
	value, done, err := i.cleanCommon(value)
	if done || err != nil {
		return value, err
	}
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v == float64(int64(v)) {
			return int64(v), nil
		}
	}
	return nil, &Error{Attribute: i.name, Message: "Not an integer", Code: EINVAL}
}

func (i *Int) Dump(value any) any {
	out, _ := i.dumpCommon(value)
	return out
}

func (i *Int) ToJSONSchema(parent Schema) map[string]any {
	return mergeDoc(map[string]any{
		"type": i.typeOrNull("integer"),
	}, i.jsonSchemaCommon(parent))
}

func (i *Int) Resolve(reg *Schemas) (Schema, error) {
	return i.resolveCommon(i, reg)
}

func (i *Int) Copy() Schema {
	cp := *i
	cp.Attribute = i.Attribute.copyBase()
	return &cp
}

// Str accepts strings, optionally restricted to an enumerated set.
type Str struct {
	Attribute
	enum []string
}

// NewStr creates a string attribute.
func NewStr(name string, opts ...Option) *Str {
	return &Str{Attribute: newAttribute(name, opts...)}
}

// NewEnum creates a string attribute restricted to the given values.
func NewEnum(name string, values []string, opts ...Option) *Str {
	s := NewStr(name, opts...)
	s.enum = values
	return s
}

func (s *Str) Clean(value any) (any, error) {
	value, done, err := s.cleanCommon(value)
	if done || err != nil {
		return value, err
	}
	str, ok := value.(string)
	if !ok {
		return nil, &Error{Attribute: s.name, Message: "Not a string", Code: EINVAL}
	}
	if len(s.enum) > 0 {
		for _, v := range s.enum {
			if v == str {
				return str, nil
			}
		}
		return nil, &Error{
			Attribute: s.name,
			Message:   fmt.Sprintf("Invalid choice: %s (must be one of %s)", str, strings.Join(s.enum, ", ")),
			Code:      EINVAL,
		}
	}
	return str, nil
}

func (s *Str) Dump(value any) any {
	out, _ := s.dumpCommon(value)
	return out
}

func (s *Str) ToJSONSchema(parent Schema) map[string]any {
	doc := map[string]any{
		"type": s.typeOrNull("string"),
	}
	if len(s.enum) > 0 {
		doc["enum"] = append([]string(nil), s.enum...)
	}
	return mergeDoc(doc, s.jsonSchemaCommon(parent))
}

func (s *Str) Resolve(reg *Schemas) (Schema, error) {
	return s.resolveCommon(s, reg)
}

func (s *Str) Copy() Schema {
	cp := *s
	cp.Attribute = s.Attribute.copyBase()
	cp.enum = append([]string(nil), s.enum...)
	return &cp
}

// Any accepts every JSON-representable value.
type Any struct {
	Attribute
}

// NewAny creates an attribute that accepts anything.
func NewAny(name string, opts ...Option) *Any {
	return &Any{Attribute: newAttribute(name, opts...)}
}

func (a *Any) Clean(value any) (any, error) {
	value, done, err := a.cleanCommon(value)
	if done || err != nil {
		return value, err
	}
	return value, nil
}

func (a *Any) Dump(value any) any {
	out, _ := a.dumpCommon(value)
	return out
}

func (a *Any) ToJSONSchema(parent Schema) map[string]any {
	return mergeDoc(map[string]any{
		"anyOf": []map[string]any{
			{"type": "string"},
			{"type": "integer"},
			{"type": "boolean"},
			{"type": "object"},
			{"type": "array"},
		},
		"nullable": a.null,
	}, a.jsonSchemaCommon(parent))
}

func (a *Any) Resolve(reg *Schemas) (Schema, error) {
	return a.resolveCommon(a, reg)
}

func (a *Any) Copy() Schema {
	cp := *a
	cp.Attribute = a.Attribute.copyBase()
	return &cp
}
