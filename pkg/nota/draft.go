package nota

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DraftAPI is the part of the API a Draft talks to.
type DraftAPI interface {
	ContentAPI
	MediaAPI
}

// Draft is a content record being created against a schema.
type Draft struct {
	api      DraftAPI
	schema   Schema
	contents *ContentRegistry
	logger   *zap.Logger

	mu        sync.Mutex
	data      map[string]any
	published bool
}

// DraftOption configures a Draft.
type DraftOption func(*Draft)

// WithDraftLogger sets the draft logger.
func WithDraftLogger(logger *zap.Logger) DraftOption {
	return func(d *Draft) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDraft creates an empty draft for schema. A successful Submit adds the
// record to contents.
func NewDraft(api DraftAPI, schema Schema, contents *ContentRegistry, opts ...DraftOption) *Draft {
	d := &Draft{
		api:      api,
		schema:   schema,
		contents: contents,
		logger:   zap.NewNop(),
		data:     map[string]any{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Schema returns the schema the draft is created against.
func (d *Draft) Schema() Schema {
	return d.schema
}

// Set stores a value for a definition field.
func (d *Draft) Set(name string, value any) error {
	if _, ok := d.schema.Field(name); !ok {
		return fmt.Errorf("set %q: %w", name, ErrUnknownField)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data[name] = value
	return nil
}

// SetPublished sets the initial published flag.
func (d *Draft) SetPublished(published bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = published
}

// Data returns a copy of the draft values.
func (d *Draft) Data() map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyData(d.data)
}

// Upload uploads file for a media field and stores the returned URL. Nothing
// is deleted in the create flow.
func (d *Draft) Upload(ctx context.Context, name string, file File) (string, error) {
	field, ok := d.schema.Field(name)
	if !ok {
		return "", fmt.Errorf("upload %q: %w", name, ErrUnknownField)
	}
	if !field.Type.IsMedia() {
		return "", fmt.Errorf("upload %q: %w", name, ErrNotMediaField)
	}
	url, err := uploadFile(ctx, d.api, file)
	if err != nil {
		d.logger.Warn("Failed to upload media", zap.String("field", name), zap.Error(err))
		return "", &OperationError{Op: "upload", ID: name, Err: err}
	}
	d.mu.Lock()
	d.data[name] = url
	d.mu.Unlock()
	return url, nil
}

// Validate reports the first required field without a value.
func (d *Draft) Validate() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.validate()
}

func (d *Draft) validate() error {
	for _, f := range d.schema.Definition {
		if f.IsRequired && isEmptyValue(d.data[f.Name]) {
			return &RequiredFieldError{Field: f.Name}
		}
	}
	return nil
}

// isEmptyValue reports missing values. false and 0 count as present.
func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Submit creates the record. No request is sent when a required field is
// empty. On success the normalized record is added to the registry, the
// registry is refreshed for the schema and the draft resets.
func (d *Draft) Submit(ctx context.Context) (Content, error) {
	d.mu.Lock()
	if err := d.validate(); err != nil {
		d.mu.Unlock()
		return Content{}, err
	}
	req := CreateContentRequest{
		SchemaID:  d.schema.ID,
		Data:      copyData(d.data),
		Published: d.published,
	}
	d.mu.Unlock()

	raw, err := d.api.CreateContent(ctx, req)
	if err != nil {
		d.logger.Warn("Failed to create content", zap.String("schema", d.schema.Name), zap.Error(err))
		return Content{}, &OperationError{Op: "create content", ID: d.schema.Name, Err: err}
	}

	created := NormalizeContent(UnwrapRecord(raw))
	if created.SchemaID == "" {
		created.SchemaID = d.schema.ID
	}
	if created.ID != "" && len(created.Data) == 0 {
		created.Data = copyData(req.Data)
	}
	owned := created.ID == "" || d.contents.AddIfOwner(d.schema.Name, created)
	if owned {
		if err := d.contents.Refresh(ctx, d.api, d.schema.Name); err != nil {
			d.logger.Warn("Failed to refresh content", zap.String("schema", d.schema.Name), zap.Error(err))
		}
	}

	d.mu.Lock()
	d.data = map[string]any{}
	d.published = false
	d.mu.Unlock()
	return created, nil
}
