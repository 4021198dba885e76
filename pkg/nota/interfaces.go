package nota

import "context"

// AuthAPI defines the session endpoints of the Nota API
type AuthAPI interface {
	// Verify reports whether the current credential is accepted
	Verify(ctx context.Context) (AuthStatus, error)

	// Login exchanges email and password for a server-set credential
	Login(ctx context.Context, email, password string) error

	// Signup registers a new account
	Signup(ctx context.Context, email, password string) error
}

// SchemaAPI defines the schema endpoints of the Nota API
type SchemaAPI interface {
	ListSchemas(ctx context.Context) ([]Schema, error)
	GetSchema(ctx context.Context, id string) (Schema, error)
	GetSchemaByName(ctx context.Context, name string) (Schema, error)
	// CreateSchema returns the created schema. The ID is empty when the API
	// only acknowledged the request.
	CreateSchema(ctx context.Context, req CreateSchemaRequest) (Schema, error)
	DeleteSchema(ctx context.Context, id string) error
}

// ContentAPI defines the content endpoints of the Nota API. Records are
// returned untyped; callers run them through NormalizeContent.
type ContentAPI interface {
	ListContent(ctx context.Context, schemaName string, opts ListContentOptions) ([]map[string]any, error)
	GetContent(ctx context.Context, id string) (map[string]any, error)
	CreateContent(ctx context.Context, req CreateContentRequest) (map[string]any, error)
	UpdateContent(ctx context.Context, req UpdateContentRequest) (map[string]any, error)
	DeleteContent(ctx context.Context, id string) error
}

// MediaAPI defines the media endpoints of the Nota API
type MediaAPI interface {
	// Upload stores a file and returns its public URL
	Upload(ctx context.Context, file File) (string, error)

	// DeleteMedia removes the object behind a URL returned by Upload
	DeleteMedia(ctx context.Context, url string) error
}

// API is the full client-side contract of the Nota REST API.
type API interface {
	AuthAPI
	SchemaAPI
	ContentAPI
	MediaAPI
}
