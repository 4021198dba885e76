package nota_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/nota-dashboard/pkg/nota"
)

func TestNormalizeContentPublished(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want bool
	}{
		{"capitalized plain", map[string]any{"Published": true}, true},
		{"capitalized wrapper Bool", map[string]any{"Published": map[string]any{"Bool": true, "Valid": true}}, true},
		{"capitalized wrapper bool", map[string]any{"Published": map[string]any{"bool": true}}, true},
		{"capitalized wrapper value", map[string]any{"Published": map[string]any{"value": true}}, true},
		{"lowercase plain false", map[string]any{"published": false}, false},
		{"lowercase plain true", map[string]any{"published": true}, true},
		{"lowercase wrapper", map[string]any{"published": map[string]any{"Bool": true, "Valid": true}}, true},
		{"wrapper without known key", map[string]any{"Published": map[string]any{"Valid": true}}, false},
		{"wrapper key precedence", map[string]any{"Published": map[string]any{"Bool": false, "value": true}}, false},
		{"wrapper non bool value", map[string]any{"Published": map[string]any{"Bool": "yes"}}, false},
		{"capitalized before lowercase", map[string]any{"Published": false, "published": true}, false},
		{"null falls through", map[string]any{"Published": nil, "published": true}, true},
		{"unrecognized shape falls through", map[string]any{"Published": "true", "published": true}, true},
		{"zero falls through", map[string]any{"Published": 0, "published": true}, true},
		{"unrecognized shape alone", map[string]any{"Published": "true"}, false},
		{"absent", map[string]any{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nota.NormalizeContent(tt.raw).Published)
		})
	}
}

func TestNormalizeContentKeys(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want nota.Content
	}{
		{
			name: "capitalized",
			raw: map[string]any{
				"ID": "a1", "SchemaID": "s1", "Data": map[string]any{"title": "x"},
				"CreatedAt": "2024-01-01T00:00:00Z", "UpdatedAt": "2024-01-02T00:00:00Z",
			},
			want: nota.Content{
				ID: "a1", SchemaID: "s1", Data: map[string]any{"title": "x"},
				CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-01-02T00:00:00Z",
			},
		},
		{
			name: "lowercase and backend typo",
			raw: map[string]any{
				"id": "b2", "schemaID": "s2", "data": map[string]any{"n": "1"},
				"createdAt": "c", "updateAt": "u",
			},
			want: nota.Content{ID: "b2", SchemaID: "s2", Data: map[string]any{"n": "1"}, CreatedAt: "c", UpdatedAt: "u"},
		},
		{
			name: "snake case aliases",
			raw: map[string]any{
				"Id": "c3", "schema_id": "s3", "payload": map[string]any{"k": true},
				"created_at": "c", "updated_at": "u",
			},
			want: nota.Content{ID: "c3", SchemaID: "s3", Data: map[string]any{"k": true}, CreatedAt: "c", UpdatedAt: "u"},
		},
		{
			name: "numeric id",
			raw:  map[string]any{"id": float64(42)},
			want: nota.Content{ID: "42", Data: map[string]any{}},
		},
		{
			name: "capitalized key wins",
			raw:  map[string]any{"ID": "upper", "id": "lower", "Data": map[string]any{"a": 1.0}, "data": map[string]any{"b": 2.0}},
			want: nota.Content{ID: "upper", Data: map[string]any{"a": 1.0}},
		},
		{
			name: "non object data",
			raw:  map[string]any{"id": "d4", "Data": []any{"x"}},
			want: nota.Content{ID: "d4", Data: map[string]any{}},
		},
		{
			name: "json string data",
			raw:  map[string]any{"id": "e5", "data": `{"title":"t"}`},
			want: nota.Content{ID: "e5", Data: map[string]any{"title": "t"}},
		},
		{
			name: "base64 data",
			raw:  map[string]any{"id": "f6", "data": base64.StdEncoding.EncodeToString([]byte(`{"title":"b"}`))},
			want: nota.Content{ID: "f6", Data: map[string]any{"title": "b"}},
		},
		{
			name: "garbage string data",
			raw:  map[string]any{"id": "g7", "data": "not json"},
			want: nota.Content{ID: "g7", Data: map[string]any{}},
		},
		{
			name: "empty",
			raw:  map[string]any{},
			want: nota.Content{ID: "", Data: map[string]any{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nota.NormalizeContent(tt.raw)
			assert.True(t, tt.want.Equal(got), "got %+v", got)
			assert.NotNil(t, got.Data)
			assert.Equal(t, tt.raw, got.Raw)
		})
	}
}

func TestNormalizeContentNil(t *testing.T) {
	got := nota.NormalizeContent(nil)
	assert.Equal(t, "", got.ID)
	assert.Equal(t, map[string]any{}, got.Data)
	assert.False(t, got.Published)
}

func TestNormalizeContentIdempotent(t *testing.T) {
	raws := []map[string]any{
		{"ID": "a", "Data": map[string]any{"x": "1"}, "Published": map[string]any{"Bool": true, "Valid": true}},
		{"id": "b", "schemaId": "s", "data": map[string]any{}, "published": false, "updateAt": "u"},
		{},
	}
	for _, raw := range raws {
		once := nota.NormalizeContent(raw)
		twice := nota.NormalizeContent(once.Map())
		assert.True(t, once.Equal(twice), "%+v != %+v", once, twice)
	}
}

func TestNormalizeContentDoesNotAliasData(t *testing.T) {
	data := map[string]any{"title": "x"}
	got := nota.NormalizeContent(map[string]any{"id": "a", "data": data})
	got.Data["title"] = "changed"
	assert.Equal(t, "x", data["title"])
}

func TestNormalizeSchema(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want nota.Schema
	}{
		{
			name: "array definition",
			raw: map[string]any{
				"ID": "s1", "Name": "posts",
				"Definition": []any{
					map[string]any{"name": "title", "type": "text", "isRequired": true},
					map[string]any{"name": "views", "type": "number"},
				},
			},
			want: nota.Schema{ID: "s1", Name: "posts", Definition: []nota.Field{
				{Name: "title", Type: nota.FieldText, IsRequired: true},
				{Name: "views", Type: nota.FieldNumber},
			}},
		},
		{
			name: "string definition",
			raw: map[string]any{
				"id": "s2", "name": "pages",
				"definition": `[{"name":"body","type":"textarea","isRequired":false}]`,
				"created_at": "c",
			},
			want: nota.Schema{ID: "s2", Name: "pages", CreatedAt: "c", Definition: []nota.Field{
				{Name: "body", Type: nota.FieldTextarea},
			}},
		},
		{
			name: "missing definition",
			raw:  map[string]any{"id": "s3", "name": "empty"},
			want: nota.Schema{ID: "s3", Name: "empty", Definition: []nota.Field{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nota.NormalizeSchema(tt.raw))
		})
	}
}

func TestUnwrapRecord(t *testing.T) {
	record := map[string]any{"id": "a", "data": map[string]any{"title": "x"}}
	assert.Equal(t, record, nota.UnwrapRecord(map[string]any{"data": record}))
	assert.Equal(t, record, nota.UnwrapRecord(record), "a record with its own id is not unwrapped")

	ack := map[string]any{"message": "ok"}
	assert.Equal(t, ack, nota.UnwrapRecord(ack))
}
