package schema

// Patch is a deferred, by-name pointer to a registered object schema plus
// an ordered list of structural edits. Resolution deep-copies the target,
// renames it, applies the edits in declared order, and optionally registers
// the result under the new name. The referenced original is never mutated.
//
// Edits applied before a failing edit are not rolled back; when Resolve
// returns an error the caller must discard the partially-built schema.
type Patch struct {
	schemaName string
	name       string
	items      []PatchItem
	register   bool
	resolved   bool
}

// NewPatch creates a patch of a registered object schema under a new name.
func NewPatch(schemaName, newName string, items ...PatchItem) *Patch {
	return &Patch{schemaName: schemaName, name: newName, items: items}
}

// WithRegister makes resolution insert the patched schema into the
// registry under its new name.
func (p *Patch) WithRegister() *Patch {
	p.register = true
	return p
}

type patchOp int

const (
	opAdd patchOp = iota
	opRemove
	opEdit
	opAttr
	opReplace
)

// PatchItem is a single structural edit.
type PatchItem struct {
	op         patchOp
	schema     Schema
	shape      map[string]any
	name       string
	safeDelete bool
	edit       func(Schema) Schema
	fields     map[string]any
}

// AddItem inserts (or overwrites) a child attribute.
func AddItem(attr Schema) PatchItem {
	return PatchItem{op: opAdd, schema: attr}
}

// AddShape inserts a child attribute described by a raw shape (see
// ConvertShape).
func AddShape(shape map[string]any) PatchItem {
	return PatchItem{op: opAdd, shape: shape}
}

// RemoveItem deletes a child attribute by name. Resolution fails when the
// child is absent.
func RemoveItem(name string) PatchItem {
	return PatchItem{op: opRemove, name: name}
}

// SafeRemoveItem deletes a child attribute by name, treating absence as a
// no-op.
func SafeRemoveItem(name string) PatchItem {
	return PatchItem{op: opRemove, name: name, safeDelete: true}
}

// EditItem applies a transform to an existing child attribute. The result
// is re-resolved against the registry, so a transform may swap the child
// for a deferred reference.
func EditItem(name string, edit func(Schema) Schema) PatchItem {
	return PatchItem{op: opEdit, name: name, edit: edit}
}

// AttrItem sets object-level properties on the patched schema itself.
// Supported keys: title, description, null, required, private,
// additional_attrs, update, default.
func AttrItem(fields map[string]any) PatchItem {
	return PatchItem{op: opAttr, fields: fields}
}

// ReplaceItem upserts a child attribute: remove-if-present, then add. It
// never fails on absence.
func ReplaceItem(attr Schema) PatchItem {
	return PatchItem{op: opReplace, schema: attr}
}

// ReplaceShape is ReplaceItem for a raw shape description.
func ReplaceShape(shape map[string]any) PatchItem {
	return PatchItem{op: opReplace, shape: shape}
}

func (p *Patch) Name() string         { return p.name }
func (p *Patch) SetName(name string)  { p.name = name }
func (p *Patch) Resolved() bool       { return p.resolved }
func (p *Patch) ShouldRegister() bool { return p.register }
func (p *Patch) HasPrivate() bool     { return false }

// Clean must not be called before resolution.
func (p *Patch) Clean(value any) (any, error) {
	return nil, &Error{Attribute: p.name, Message: "unresolved schema patch", Code: EINVAL}
}

func (p *Patch) Dump(value any) any { return value }

func (p *Patch) ToJSONSchema(parent Schema) map[string]any {
	return map[string]any{"_name_": p.name, "$ref": p.schemaName}
}

func (p *Patch) Copy() Schema {
	cp := *p
	cp.items = append([]PatchItem(nil), p.items...)
	cp.register = false
	return &cp
}

// Resolve materializes the patch: deep-copy the target object schema,
// rename, apply edits in order, register when asked.
func (p *Patch) Resolve(reg *Schemas) (Schema, error) {
	target := reg.Get(p.schemaName)
	if target == nil {
		return nil, resolverErrorf("schema %q not found", p.schemaName)
	}
	dict, ok := target.Copy().(*Dict)
	if !ok {
		return nil, resolverErrorf("schema %q is not an object schema; only object schemas can be patched", p.schemaName)
	}

	dict.SetName(p.name)
	dict.SetTitle(p.name)
	for _, item := range p.items {
		if item.op == opReplace {
			name := item.name
			if item.schema != nil {
				name = item.schema.Name()
			} else if item.shape != nil {
				name, _ = item.shape["name"].(string)
			}
			dict.Remove(name)
			item.op = opAdd
		}
		if err := p.apply(dict, reg, item); err != nil {
			return nil, err
		}
	}
	// The copy may still contain deferred nodes from the target; resolve
	// materializes them against the registry.
	if _, err := dict.Resolve(reg); err != nil {
		return nil, err
	}
	if p.register {
		if err := reg.Add(dict); err != nil {
			return nil, err
		}
	}
	p.resolved = true
	return dict, nil
}

func (p *Patch) apply(dict *Dict, reg *Schemas, item PatchItem) error {
	switch item.op {
	case opAdd:
		attr := item.schema
		if attr == nil {
			converted, err := ConvertShape(item.shape)
			if err != nil {
				return err
			}
			attr = converted
		} else {
			attr = attr.Copy()
		}
		dict.Set(attr)
	case opRemove:
		if !dict.Remove(item.name) && !item.safeDelete {
			return resolverErrorf("attribute %q does not exist in schema %q", item.name, p.schemaName)
		}
	case opEdit:
		attr, ok := dict.Get(item.name)
		if !ok {
			return resolverErrorf("attribute %q does not exist in schema %q", item.name, p.schemaName)
		}
		if item.edit != nil {
			edited := item.edit(attr)
			resolved, err := edited.Resolve(reg)
			if err != nil {
				return err
			}
			dict.Set(resolved)
		}
	case opAttr:
		for key, value := range item.fields {
			if err := setSchemaField(dict, key, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// setSchemaField sets an object-level property by name. Unknown keys are a
// resolution fault.
func setSchemaField(dict *Dict, key string, value any) error {
	switch key {
	case "title":
		s, ok := value.(string)
		if !ok {
			return resolverErrorf("attr edit %q: expected string, got %T", key, value)
		}
		dict.SetTitle(s)
	case "description":
		s, ok := value.(string)
		if !ok {
			return resolverErrorf("attr edit %q: expected string, got %T", key, value)
		}
		dict.SetDescription(s)
	case "null":
		b, ok := value.(bool)
		if !ok {
			return resolverErrorf("attr edit %q: expected bool, got %T", key, value)
		}
		dict.SetNull(b)
	case "required":
		b, ok := value.(bool)
		if !ok {
			return resolverErrorf("attr edit %q: expected bool, got %T", key, value)
		}
		dict.SetRequired(b)
	case "private":
		b, ok := value.(bool)
		if !ok {
			return resolverErrorf("attr edit %q: expected bool, got %T", key, value)
		}
		dict.SetPrivate(b)
	case "additional_attrs":
		b, ok := value.(bool)
		if !ok {
			return resolverErrorf("attr edit %q: expected bool, got %T", key, value)
		}
		dict.additionalAttrs = b
	case "update":
		b, ok := value.(bool)
		if !ok {
			return resolverErrorf("attr edit %q: expected bool, got %T", key, value)
		}
		dict.SetUpdate(b)
	case "default":
		dict.SetDefault(copyValue(value))
	default:
		return resolverErrorf("attr edit: unknown schema field %q", key)
	}
	return nil
}
