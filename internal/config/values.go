package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Value is one entry of a values file: the logical field name (or control
// name/id) and the value to enter.
type Value struct {
	Field string
	Value string
}

// LoadValues reads a YAML (or JSON) mapping of field names to values. File
// order is preserved, since later entries may reveal fields used by earlier
// conditions.
func LoadValues(path string) ([]Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read values %s: %w", path, err)
	}
	return ParseValues(data, path)
}

// ParseValues decodes an ordered mapping of scalar values.
func ParseValues(data []byte, source string) ([]Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("config: parse values %s: %w", source, err)
	}
	if root.Kind == 0 {
		return nil, nil
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config: values %s: expected a mapping of field names", source)
	}

	values := make([]Value, 0, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		name := strings.TrimSpace(key.Value)
		if name == "" {
			return nil, fmt.Errorf("config: values %s line %d: empty field name", source, key.Line)
		}
		if val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("config: values %s line %d: field %q must be a scalar", source, val.Line, name)
		}
		text := val.Value
		if val.Tag == "!!null" {
			text = ""
		}
		values = append(values, Value{Field: name, Value: text})
	}
	return values, nil
}
