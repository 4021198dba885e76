package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/nota-dashboard/pkg/nota"
)

// parseFieldFlag parses a schema field given as name:type[:required].
// The type defaults to text.
func parseFieldFlag(s string) (nota.Field, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return nota.Field{}, fmt.Errorf("invalid field %q, want name:type[:required]", s)
	}
	f := nota.Field{Name: strings.TrimSpace(parts[0]), Type: nota.FieldText}
	if f.Name == "" {
		return nota.Field{}, fmt.Errorf("invalid field %q: name is empty", s)
	}
	if len(parts) > 1 && parts[1] != "" {
		t, err := nota.ParseFieldType(parts[1])
		if err != nil {
			return nota.Field{}, fmt.Errorf("invalid field %q: %w", s, err)
		}
		f.Type = t
	}
	if len(parts) == 3 {
		switch strings.ToLower(strings.TrimSpace(parts[2])) {
		case "required", "req", "true":
			f.IsRequired = true
		case "", "optional", "false":
		default:
			return nota.Field{}, fmt.Errorf("invalid field %q: unknown flag %q", s, parts[2])
		}
	}
	return f, nil
}

// splitAssignment splits key=value.
func splitAssignment(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid assignment %q, want field=value", s)
	}
	return key, value, nil
}

// parseValue converts textual input for the named field of schema.
func parseValue(schema nota.Schema, name, raw string) (any, error) {
	field, ok := schema.Field(name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, nota.ErrUnknownField)
	}
	spec, ok := nota.Lookup(field.Type)
	if !ok {
		return raw, nil
	}
	v, err := spec.ParseInput(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// parseAssignments parses --set flags into field values.
func parseAssignments(schema nota.Schema, sets []string) (map[string]any, error) {
	values := make(map[string]any, len(sets))
	for _, s := range sets {
		key, raw, err := splitAssignment(s)
		if err != nil {
			return nil, err
		}
		v, err := parseValue(schema, key, raw)
		if err != nil {
			return nil, err
		}
		values[key] = v
	}
	return values, nil
}

// openFile opens path for upload. The caller closes the returned file.
func openFile(path string) (nota.File, *os.File, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nota.File{}, nil, fmt.Errorf("open %s: %w", path, err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return nota.File{Name: filepath.Base(path), ContentType: contentType, Reader: f}, f, nil
}
