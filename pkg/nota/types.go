package nota

import (
	"io"
	"reflect"
	"strings"
	"time"
)

// Field is one named, typed attribute of a schema definition.
type Field struct {
	Name       string    `json:"name" yaml:"name" validate:"notblank"`
	Type       FieldType `json:"type" yaml:"type" validate:"required,fieldtype"`
	IsRequired bool      `json:"isRequired" yaml:"isRequired"`
}

// Schema is a user-defined record type.
//
// Name is the routing key used to fetch the schema's content and is unique
// among schemas. Definition order is display and edit order.
type Schema struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Definition []Field `json:"definition"`
	CreatedAt  string  `json:"createdAt,omitempty"`
}

// Field returns the definition entry with the given name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Definition {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Title returns the display title of a record: the value of the first
// definition field, or "Content" followed by the short id.
func (s Schema) Title(c Content) string {
	if len(s.Definition) > 0 {
		if v, ok := c.Data[s.Definition[0].Name]; ok && v != nil {
			if str := FormatValue(v); str != "" {
				return str
			}
		}
	}
	return "Content " + c.ShortID()
}

// Content is the canonical in-memory shape of one content record.
//
// Raw holds the response the record was normalized from so callers can fall
// back to keys the canonical shape does not model.
type Content struct {
	ID        string
	SchemaID  string
	Data      map[string]any
	Published bool
	CreatedAt string
	UpdatedAt string
	Raw       map[string]any
}

// Map renders the canonical fields using the capitalized keys. Normalizing
// the result yields the same canonical record.
func (c Content) Map() map[string]any {
	m := map[string]any{
		"ID":        c.ID,
		"Data":      copyData(c.Data),
		"Published": c.Published,
	}
	if c.SchemaID != "" {
		m["SchemaID"] = c.SchemaID
	}
	if c.CreatedAt != "" {
		m["CreatedAt"] = c.CreatedAt
	}
	if c.UpdatedAt != "" {
		m["UpdatedAt"] = c.UpdatedAt
	}
	return m
}

// CreatedTime parses CreatedAt as RFC 3339.
func (c Content) CreatedTime() (time.Time, bool) {
	return parseTimestamp(c.CreatedAt)
}

// UpdatedTime parses UpdatedAt as RFC 3339.
func (c Content) UpdatedTime() (time.Time, bool) {
	return parseTimestamp(c.UpdatedAt)
}

// ShortID returns the first six characters of the id.
func (c Content) ShortID() string {
	if len(c.ID) <= 6 {
		return c.ID
	}
	return c.ID[:6]
}

// Equal reports whether two records have the same canonical fields.
func (c Content) Equal(o Content) bool {
	if c.ID != o.ID || c.SchemaID != o.SchemaID || c.Published != o.Published ||
		c.CreatedAt != o.CreatedAt || c.UpdatedAt != o.UpdatedAt {
		return false
	}
	if len(c.Data) == 0 && len(o.Data) == 0 {
		return true
	}
	return reflect.DeepEqual(c.Data, o.Data)
}

// User is the account returned by the verify endpoint.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// AuthStatus is the result of a session verification.
type AuthStatus struct {
	Auth bool
	User *User
}

// File is a local file selected for upload.
type File struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// CreateSchemaRequest is the body of the create-schema call.
type CreateSchemaRequest struct {
	Name       string  `json:"name"`
	Definition []Field `json:"definition"`
}

// CreateContentRequest is the body of the create-content call.
type CreateContentRequest struct {
	SchemaID  string         `json:"schema_id"`
	Data      map[string]any `json:"data"`
	Published bool           `json:"published"`
}

// UpdateContentRequest is the body of the update-content call. It replaces
// the whole data mapping and the published flag.
type UpdateContentRequest struct {
	ContentID string         `json:"content_id"`
	Data      map[string]any `json:"data"`
	Published bool           `json:"published"`
}

// PublishedFilter selects records by published state when listing content.
type PublishedFilter string

const (
	PublishedAll   PublishedFilter = "all"
	PublishedOnly  PublishedFilter = "true"
	PublishedDraft PublishedFilter = "false"
)

// ListContentOptions narrows a content list request.
type ListContentOptions struct {
	Published PublishedFilter
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05.999999-07"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// copyData returns a shallow copy of a data mapping. The result is never nil.
func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
