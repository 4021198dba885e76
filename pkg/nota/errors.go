package nota

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrUnauthorized indicates the API rejected the session credential
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the API has no such schema, record or object
	ErrNotFound = errors.New("not found")

	// ErrSchemaNotFound indicates a schema is not held by the registry
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrContentNotFound indicates a content record is not held by the registry
	ErrContentNotFound = errors.New("content not found")

	// ErrNoSchemaSelected indicates an editor operation needs a selected schema
	ErrNoSchemaSelected = errors.New("no schema selected")

	// ErrNoContentSelected indicates an editor operation needs a selected record
	ErrNoContentSelected = errors.New("no content selected")

	// ErrNotEditing indicates an editor operation needs an edit snapshot
	ErrNotEditing = errors.New("content is not being edited")

	// ErrBusy indicates a save, delete or publish call is already in flight
	ErrBusy = errors.New("another action is in progress")

	// ErrStaleEdit indicates an asynchronous edit resolved after its snapshot was discarded
	ErrStaleEdit = errors.New("edit snapshot was discarded")

	// ErrNotMediaField indicates a file was supplied for a non file-category field
	ErrNotMediaField = errors.New("field does not accept files")

	// ErrUnknownField indicates a field name that is not part of the schema definition
	ErrUnknownField = errors.New("unknown field")

	// ErrEmptyUploadURL indicates the upload endpoint answered without a URL
	ErrEmptyUploadURL = errors.New("upload returned no url")
)

// ValidationError is a client-side validation failure. It never reaches the
// network. Field is empty for form-level rules.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RequiredFieldError reports a required schema field left empty in a draft.
type RequiredFieldError struct {
	Field string
}

func (e *RequiredFieldError) Error() string {
	return fmt.Sprintf("Field %q is required.", e.Field)
}

// OperationError wraps a failed network-backed operation of the dashboard.
type OperationError struct {
	Op  string
	ID  string
	Err error
}

func (e *OperationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed for %s: %v", e.Op, e.ID, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
