package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// schemaFile is the on-disk declaration format: a list of raw shapes.
type schemaFile struct {
	Schemas []map[string]any `yaml:"schemas"`
}

// ParseFile parses schema declarations from a YAML file.
func ParseFile(path string) ([]Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	schemas, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return schemas, nil
}

// Parse parses schema declarations from YAML bytes.
func Parse(data []byte) ([]Schema, error) {
	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	schemas := make([]Schema, 0, len(file.Schemas))
	for _, shape := range file.Schemas {
		s, err := ConvertShape(normalizeShape(shape))
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

// ParseDir parses all schema declarations from a directory, including
// subdirectories.
func ParseDir(dir string) ([]Schema, error) {
	var schemas []Schema

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			sub, err := ParseDir(path)
			if err != nil {
				return nil, err
			}
			schemas = append(schemas, sub...)
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		parsed, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, parsed...)
	}

	return schemas, nil
}

// normalizeShape rewrites yaml.v3 decoding artifacts (map[any]any keys in
// nested maps) into the plain map form ConvertShape expects.
func normalizeShape(shape map[string]any) map[string]any {
	out := make(map[string]any, len(shape))
	for k, v := range shape {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return normalizeShape(v)
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[fmt.Sprintf("%v", k)] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return value
	}
}
