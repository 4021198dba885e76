package nota

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// FieldPatch changes selected attributes of a draft field. Nil members are
// left untouched.
type FieldPatch struct {
	Name       *string
	Type       *FieldType
	IsRequired *bool
}

// schemaDraft is the validated shape of a builder.
type schemaDraft struct {
	Name       string  `json:"name" validate:"notblank"`
	Definition []Field `json:"definition" validate:"dive"`
}

// SchemaBuilder holds a draft schema name and an ordered list of draft fields.
type SchemaBuilder struct {
	api     SchemaAPI
	schemas *SchemaRegistry
	logger  *zap.Logger

	mu     sync.Mutex
	name   string
	fields []Field
}

// BuilderOption configures a SchemaBuilder.
type BuilderOption func(*SchemaBuilder)

// WithBuilderLogger sets the builder logger.
func WithBuilderLogger(logger *zap.Logger) BuilderOption {
	return func(b *SchemaBuilder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewSchemaBuilder creates an empty builder. A successful Submit adds the
// schema to schemas.
func NewSchemaBuilder(api SchemaAPI, schemas *SchemaRegistry, opts ...BuilderOption) *SchemaBuilder {
	b := &SchemaBuilder{api: api, schemas: schemas, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetName sets the draft schema name.
func (b *SchemaBuilder) SetName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.name = name
}

// Name returns the draft schema name.
func (b *SchemaBuilder) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.name
}

// AddField appends an empty field and returns its position.
func (b *SchemaBuilder) AddField() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fields = append(b.fields, Field{})
	return len(b.fields) - 1
}

// UpdateField patches the field at position i.
func (b *SchemaBuilder) UpdateField(i int, patch FieldPatch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.fields) {
		return fmt.Errorf("update field: index %d out of range [0,%d)", i, len(b.fields))
	}
	if patch.Name != nil {
		b.fields[i].Name = *patch.Name
	}
	if patch.Type != nil {
		b.fields[i].Type = *patch.Type
	}
	if patch.IsRequired != nil {
		b.fields[i].IsRequired = *patch.IsRequired
	}
	return nil
}

// RemoveField deletes the field at position i.
func (b *SchemaBuilder) RemoveField(i int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.fields) {
		return fmt.Errorf("remove field: index %d out of range [0,%d)", i, len(b.fields))
	}
	b.fields = append(b.fields[:i:i], b.fields[i+1:]...)
	return nil
}

// Definition returns the draft fields in order.
func (b *SchemaBuilder) Definition() []Field {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Field{}, b.fields...)
}

// Validate reports the first violated rule: the schema name, then each field
// in order by name and then type, then duplicate field names.
func (b *SchemaBuilder) Validate() error {
	b.mu.Lock()
	draft := schemaDraft{Name: b.name, Definition: append([]Field{}, b.fields...)}
	b.mu.Unlock()
	return validateDraft(draft)
}

func validateDraft(draft schemaDraft) error {
	if err := defaultValidator.Struct(draft); err != nil {
		return firstViolation(err)
	}
	seen := make(map[string]int, len(draft.Definition))
	for i, f := range draft.Definition {
		name := strings.TrimSpace(f.Name)
		if j, ok := seen[name]; ok {
			return &ValidationError{
				Field:   fmt.Sprintf("definition[%d].name", i),
				Rule:    "unique",
				Message: fmt.Sprintf("field name %q is used by fields %d and %d", name, j+1, i+1),
			}
		}
		seen[name] = i
	}
	return nil
}

// Submit validates the draft and creates the schema. Nothing is sent when
// validation fails. On success the schema is added to the registry, the
// registry is refreshed and the created schema is returned.
func (b *SchemaBuilder) Submit(ctx context.Context) (Schema, error) {
	b.mu.Lock()
	draft := schemaDraft{Name: strings.TrimSpace(b.name), Definition: append([]Field{}, b.fields...)}
	b.mu.Unlock()

	if err := validateDraft(draft); err != nil {
		return Schema{}, err
	}
	for i := range draft.Definition {
		draft.Definition[i].Name = strings.TrimSpace(draft.Definition[i].Name)
	}

	created, err := b.api.CreateSchema(ctx, CreateSchemaRequest{Name: draft.Name, Definition: draft.Definition})
	if err != nil {
		b.logger.Warn("Failed to create schema", zap.String("name", draft.Name), zap.Error(err))
		return Schema{}, &OperationError{Op: "create schema", ID: draft.Name, Err: err}
	}
	if created.Name == "" {
		created.Name = draft.Name
	}
	if len(created.Definition) == 0 {
		created.Definition = draft.Definition
	}
	if created.ID != "" {
		b.schemas.Add(created)
	}
	if err := b.schemas.Refresh(ctx, b.api); err != nil {
		b.logger.Warn("Failed to refresh schemas", zap.Error(err))
	} else if s, ok := b.schemas.ByName(created.Name); ok {
		created = s
	}

	b.mu.Lock()
	b.name = ""
	b.fields = nil
	b.mu.Unlock()
	return created, nil
}
