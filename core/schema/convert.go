package schema

// ConvertShape converts a raw shape description into a concrete schema.
// Shapes are plain maps, typically decoded from YAML or JSON:
//
//	{name: force, type: bool, default: false}
//	{name: opts, type: dict, attrs: [{name: level, type: int, required: true}]}
//
// Recognized keys: name, type (bool|int|str|any|dict|list), title,
// description, required, null, private, default, register, enum (str),
// attrs (dict), items (list), additional_attrs (dict), update (dict).
func ConvertShape(shape map[string]any) (Schema, error) {
	name, _ := shape["name"].(string)
	if name == "" {
		return nil, resolverErrorf("shape is missing a name: %v", shape)
	}
	typ, _ := shape["type"].(string)

	opts, err := shapeOptions(name, shape)
	if err != nil {
		return nil, err
	}

	switch typ {
	case "bool":
		return NewBool(name, opts...), nil
	case "int":
		return NewInt(name, opts...), nil
	case "str":
		if raw, ok := shape["enum"]; ok {
			values, err := stringSlice(name, raw)
			if err != nil {
				return nil, err
			}
			return NewEnum(name, values, opts...), nil
		}
		return NewStr(name, opts...), nil
	case "any", "":
		return NewAny(name, opts...), nil
	case "dict":
		attrs, err := childSchemas(name, shape["attrs"])
		if err != nil {
			return nil, err
		}
		if extra, ok := shape["additional_attrs"].(bool); ok && extra {
			opts = append(opts, AdditionalAttrs())
		}
		if u, ok := shape["update"].(bool); ok && u {
			opts = append(opts, Update())
		}
		return NewDict(name, attrs, opts...), nil
	case "list":
		items, err := childSchemas(name, shape["items"])
		if err != nil {
			return nil, err
		}
		return NewList(name, items, opts...), nil
	default:
		return nil, resolverErrorf("shape %q: unknown type %q", name, typ)
	}
}

func shapeOptions(name string, shape map[string]any) ([]Option, error) {
	var opts []Option
	if title, ok := shape["title"].(string); ok {
		opts = append(opts, Title(title))
	}
	if desc, ok := shape["description"].(string); ok {
		opts = append(opts, Description(desc))
	}
	for _, key := range []string{"required", "null", "private", "register"} {
		raw, present := shape[key]
		if !present {
			continue
		}
		b, ok := raw.(bool)
		if !ok {
			return nil, resolverErrorf("shape %q: %s must be a bool", name, key)
		}
		if !b {
			continue
		}
		switch key {
		case "required":
			opts = append(opts, Required())
		case "null":
			opts = append(opts, Null())
		case "private":
			opts = append(opts, Private())
		case "register":
			opts = append(opts, RegisterSchema())
		}
	}
	if def, present := shape["default"]; present {
		opts = append(opts, Default(def))
	}
	return opts, nil
}

func stringSlice(name string, raw any) ([]string, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, resolverErrorf("shape %q: enum must be a list of strings", name)
	}
	values := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, resolverErrorf("shape %q: enum must be a list of strings", name)
		}
		values = append(values, s)
	}
	return values, nil
}

func childSchemas(name string, raw any) ([]Schema, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, resolverErrorf("shape %q: children must be a list of shapes", name)
	}
	children := make([]Schema, 0, len(items))
	for _, item := range items {
		shape, ok := item.(map[string]any)
		if !ok {
			return nil, resolverErrorf("shape %q: children must be a list of shapes", name)
		}
		child, err := ConvertShape(shape)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}
