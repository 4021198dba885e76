package nota

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Session owns the registries of one dashboard session and hands them to
// the editor, schema builder and drafts it creates.
type Session struct {
	api      API
	logger   *zap.Logger
	schemas  *SchemaRegistry
	contents *ContentRegistry

	mu   sync.Mutex
	user *User
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the logger shared by every component of the session.
func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSchemaRegistry makes the session use an existing schema registry.
func WithSchemaRegistry(r *SchemaRegistry) SessionOption {
	return func(s *Session) {
		if r != nil {
			s.schemas = r
		}
	}
}

// WithContentRegistry makes the session use an existing content registry.
func WithContentRegistry(r *ContentRegistry) SessionOption {
	return func(s *Session) {
		if r != nil {
			s.contents = r
		}
	}
}

// NewSession creates a session over api with empty registries.
func NewSession(api API, opts ...SessionOption) *Session {
	s := &Session{
		api:      api,
		logger:   zap.NewNop(),
		schemas:  NewSchemaRegistry(),
		contents: NewContentRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schemas returns the schema registry.
func (s *Session) Schemas() *SchemaRegistry { return s.schemas }

// Contents returns the content registry.
func (s *Session) Contents() *ContentRegistry { return s.contents }

// User returns the user reported by the last successful Verify.
func (s *Session) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Verify asks the API whether the credential is still accepted. Any failure
// is reported as unauthenticated.
func (s *Session) Verify(ctx context.Context) AuthStatus {
	status, err := s.api.Verify(ctx)
	if err != nil {
		s.logger.Debug("Session verification failed", zap.Error(err))
		status = AuthStatus{}
	}
	s.mu.Lock()
	if status.Auth {
		s.user = status.User
	} else {
		s.user = nil
	}
	s.mu.Unlock()
	return status
}

// Login validates the form and logs in.
func (s *Session) Login(ctx context.Context, creds Credentials) error {
	if err := creds.ValidateLogin(); err != nil {
		return err
	}
	if err := s.api.Login(ctx, creds.Email, creds.Password); err != nil {
		s.logger.Warn("Login failed", zap.String("email", creds.Email), zap.Error(err))
		return &OperationError{Op: "login", ID: creds.Email, Err: err}
	}
	return nil
}

// Signup validates the form and registers an account. Nothing is sent when
// validation fails.
func (s *Session) Signup(ctx context.Context, creds Credentials) error {
	if err := creds.ValidateSignup(); err != nil {
		return err
	}
	if err := s.api.Signup(ctx, creds.Email, creds.Password); err != nil {
		s.logger.Warn("Signup failed", zap.String("email", creds.Email), zap.Error(err))
		return &OperationError{Op: "signup", ID: creds.Email, Err: err}
	}
	return nil
}

// Bootstrap loads the schema registry.
func (s *Session) Bootstrap(ctx context.Context) error {
	if err := s.schemas.Refresh(ctx, s.api); err != nil {
		s.logger.Warn("Failed to load schemas", zap.Error(err))
		return err
	}
	return nil
}

// NewEditor creates a content editor over the session registries.
func (s *Session) NewEditor() *Editor {
	return NewEditor(s.api, s.schemas, s.contents, WithEditorLogger(s.logger))
}

// NewSchemaBuilder creates a schema builder over the session registry.
func (s *Session) NewSchemaBuilder() *SchemaBuilder {
	return NewSchemaBuilder(s.api, s.schemas, WithBuilderLogger(s.logger))
}

// NewDraft creates a content draft for the named schema.
func (s *Session) NewDraft(schemaName string) (*Draft, error) {
	schema, ok := s.schemas.ByName(schemaName)
	if !ok {
		return nil, fmt.Errorf("new draft %q: %w", schemaName, ErrSchemaNotFound)
	}
	return NewDraft(s.api, schema, s.contents, WithDraftLogger(s.logger)), nil
}

// DeleteSchema deletes a schema and removes it from the registry on success.
// Records of the schema are not touched.
func (s *Session) DeleteSchema(ctx context.Context, id string) error {
	if err := s.api.DeleteSchema(ctx, id); err != nil {
		s.logger.Warn("Failed to delete schema", zap.String("id", id), zap.Error(err))
		return &OperationError{Op: "delete schema", ID: id, Err: err}
	}
	s.schemas.Delete(id)
	return nil
}
