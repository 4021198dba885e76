package nota

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
)

// Lookup keys per canonical field, in resolution order.
var (
	idKeys        = []string{"ID", "id", "Id"}
	schemaIDKeys  = []string{"SchemaID", "schemaID", "schemaId", "schema_id"}
	dataKeys      = []string{"Data", "data", "payload"}
	publishedKeys = []string{"Published", "published"}
	wrapperKeys   = []string{"Bool", "bool", "value"}
	createdKeys   = []string{"CreatedAt", "createdAt", "created_at"}
	updatedKeys   = []string{"UpdatedAt", "updatedAt", "updated_at", "updateAt"}

	schemaNameKeys = []string{"Name", "name"}
	definitionKeys = []string{"Definition", "definition"}
)

// shapeKind tags how a raw value is encoded.
type shapeKind int

const (
	shapeAbsent shapeKind = iota
	shapeBool
	shapeWrapper
	shapeUnknown
)

type boolShape struct {
	kind    shapeKind
	value   bool
	wrapper map[string]any
}

func classifyBool(v any, present bool) boolShape {
	if !present || v == nil {
		return boolShape{kind: shapeAbsent}
	}
	switch x := v.(type) {
	case bool:
		return boolShape{kind: shapeBool, value: x}
	case map[string]any:
		return boolShape{kind: shapeWrapper, wrapper: x}
	default:
		return boolShape{kind: shapeUnknown}
	}
}

// NormalizeContent converts an API record of any observed casing into the
// canonical Content shape. It never fails; unrecognized shapes fall back to
// empty values.
func NormalizeContent(raw map[string]any) Content {
	c := Content{
		ID:        firstString(raw, idKeys),
		SchemaID:  firstString(raw, schemaIDKeys),
		Data:      normalizeData(raw),
		Published: normalizePublished(raw),
		CreatedAt: firstString(raw, createdKeys),
		UpdatedAt: firstString(raw, updatedKeys),
		Raw:       raw,
	}
	return c
}

// UnwrapRecord returns the record inside a {data: record} envelope. A body
// that carries an id itself, or whose data member is not a record, is
// returned unchanged.
func UnwrapRecord(body map[string]any) map[string]any {
	if firstString(body, idKeys) != "" {
		return body
	}
	for _, key := range []string{"data", "Data"} {
		if inner, ok := body[key].(map[string]any); ok && firstString(inner, idKeys) != "" {
			return inner
		}
	}
	return body
}

// NormalizeContents normalizes every record of a list response.
func NormalizeContents(raws []map[string]any) []Content {
	out := make([]Content, 0, len(raws))
	for _, raw := range raws {
		out = append(out, NormalizeContent(raw))
	}
	return out
}

func normalizePublished(raw map[string]any) bool {
	for _, key := range publishedKeys {
		v, ok := raw[key]
		shape := classifyBool(v, ok)
		switch shape.kind {
		case shapeBool:
			return shape.value
		case shapeWrapper:
			return unwrapBool(shape.wrapper)
		}
	}
	return false
}

func unwrapBool(w map[string]any) bool {
	for _, key := range wrapperKeys {
		v, ok := w[key]
		if !ok || v == nil {
			continue
		}
		if b, isBool := v.(bool); isBool {
			return b
		}
		return false
	}
	return false
}

func normalizeData(raw map[string]any) map[string]any {
	for _, key := range dataKeys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch x := v.(type) {
		case map[string]any:
			return copyData(x)
		case string:
			if m, ok := decodeObject(x); ok {
				return m
			}
			return map[string]any{}
		default:
			return map[string]any{}
		}
	}
	return map[string]any{}
}

// decodeObject accepts a JSON object either as text or as base64 of the text.
func decodeObject(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err == nil && m != nil {
		return m, true
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, false
	}
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

func firstString(raw map[string]any, keys []string) string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		return stringify(v)
	}
	return ""
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// NormalizeSchema converts an API schema record into a Schema. A definition
// may arrive as an array of field objects or as a JSON-encoded string.
func NormalizeSchema(raw map[string]any) Schema {
	return Schema{
		ID:         firstString(raw, idKeys),
		Name:       firstString(raw, schemaNameKeys),
		Definition: normalizeDefinition(raw),
		CreatedAt:  firstString(raw, createdKeys),
	}
}

// NormalizeSchemas normalizes every record of a schema list response.
func NormalizeSchemas(raws []map[string]any) []Schema {
	out := make([]Schema, 0, len(raws))
	for _, raw := range raws {
		out = append(out, NormalizeSchema(raw))
	}
	return out
}

func normalizeDefinition(raw map[string]any) []Field {
	for _, key := range definitionKeys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		var items []any
		switch x := v.(type) {
		case []any:
			items = x
		case string:
			if err := json.Unmarshal([]byte(x), &items); err != nil {
				if b, derr := base64.StdEncoding.DecodeString(x); derr == nil {
					_ = json.Unmarshal(b, &items)
				}
			}
		}
		fields := make([]Field, 0, len(items))
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			fields = append(fields, Field{
				Name:       firstString(m, []string{"name", "Name"}),
				Type:       FieldType(firstString(m, []string{"type", "Type"})),
				IsRequired: normalizeRequired(m),
			})
		}
		return fields
	}
	return []Field{}
}

func normalizeRequired(m map[string]any) bool {
	for _, key := range []string{"isRequired", "IsRequired", "is_required", "required"} {
		v, ok := m[key]
		shape := classifyBool(v, ok)
		switch shape.kind {
		case shapeAbsent:
			continue
		case shapeBool:
			return shape.value
		default:
			return false
		}
	}
	return false
}
