package nota_test

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tendant/nota-dashboard/pkg/nota"
)

// fakeAPI is an in-memory nota.API. Hooks replace the default behavior of
// single calls.
type fakeAPI struct {
	mu       sync.Mutex
	schemas  []nota.Schema
	records  map[string][]map[string]any
	calls    []string
	deleted  []string
	uploaded []string
	nextID   int

	listHook   func(ctx context.Context, schemaName string) ([]map[string]any, error)
	updateHook func(ctx context.Context, req nota.UpdateContentRequest) (map[string]any, error)
	uploadHook func(ctx context.Context, file nota.File) (string, error)
	mediaHook  func(ctx context.Context, url string)
	createErr  error
	deleteErr  error
	verify     nota.AuthStatus
	verifyErr  error
	signupErr  error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{records: map[string][]map[string]any{}}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

func (f *fakeAPI) DeletedMedia() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.deleted...)
}

func (f *fakeAPI) addSchema(s nota.Schema) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schemas = append(f.schemas, s)
}

func (f *fakeAPI) addRecord(schemaName string, raw map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[schemaName] = append(f.records[schemaName], raw)
}

func (f *fakeAPI) Verify(ctx context.Context) (nota.AuthStatus, error) {
	f.record("verify")
	return f.verify, f.verifyErr
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) error {
	f.record("login")
	return nil
}

func (f *fakeAPI) Signup(ctx context.Context, email, password string) error {
	f.record("signup")
	return f.signupErr
}

func (f *fakeAPI) ListSchemas(ctx context.Context) ([]nota.Schema, error) {
	f.record("list schemas")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]nota.Schema{}, f.schemas...), nil
}

func (f *fakeAPI) GetSchema(ctx context.Context, id string) (nota.Schema, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.schemas {
		if s.ID == id {
			return s, nil
		}
	}
	return nota.Schema{}, nota.ErrNotFound
}

func (f *fakeAPI) GetSchemaByName(ctx context.Context, name string) (nota.Schema, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.schemas {
		if s.Name == name {
			return s, nil
		}
	}
	return nota.Schema{}, nota.ErrNotFound
}

func (f *fakeAPI) CreateSchema(ctx context.Context, req nota.CreateSchemaRequest) (nota.Schema, error) {
	f.record("create schema")
	if f.createErr != nil {
		return nota.Schema{}, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s := nota.Schema{ID: fmt.Sprintf("schema-%d", f.nextID), Name: req.Name, Definition: req.Definition}
	f.schemas = append(f.schemas, s)
	return s, nil
}

func (f *fakeAPI) DeleteSchema(ctx context.Context, id string) error {
	f.record("delete schema")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.schemas {
		if s.ID == id {
			f.schemas = append(f.schemas[:i], f.schemas[i+1:]...)
			return nil
		}
	}
	return nota.ErrNotFound
}

func (f *fakeAPI) ListContent(ctx context.Context, schemaName string, opts nota.ListContentOptions) ([]map[string]any, error) {
	f.record("list content " + schemaName)
	if f.listHook != nil {
		return f.listHook(ctx, schemaName)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any{}, f.records[schemaName]...), nil
}

func (f *fakeAPI) GetContent(ctx context.Context, id string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, list := range f.records {
		for _, raw := range list {
			if nota.NormalizeContent(raw).ID == id {
				return raw, nil
			}
		}
	}
	return nil, nota.ErrNotFound
}

func (f *fakeAPI) CreateContent(ctx context.Context, req nota.CreateContentRequest) (map[string]any, error) {
	f.record("create content")
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	raw := map[string]any{
		"id":        fmt.Sprintf("content-%d", f.nextID),
		"schemaID":  req.SchemaID,
		"data":      req.Data,
		"published": map[string]any{"Bool": req.Published, "Valid": true},
	}
	for _, s := range f.schemas {
		if s.ID == req.SchemaID {
			f.records[s.Name] = append(f.records[s.Name], raw)
		}
	}
	return map[string]any{"data": raw}, nil
}

func (f *fakeAPI) UpdateContent(ctx context.Context, req nota.UpdateContentRequest) (map[string]any, error) {
	f.record("update content")
	if f.updateHook != nil {
		return f.updateHook(ctx, req)
	}
	return map[string]any{"ID": req.ContentID, "Data": req.Data, "Published": req.Published}, nil
}

func (f *fakeAPI) DeleteContent(ctx context.Context, id string) error {
	f.record("delete content")
	return f.deleteErr
}

func (f *fakeAPI) Upload(ctx context.Context, file nota.File) (string, error) {
	f.record("upload")
	if f.uploadHook != nil {
		return f.uploadHook(ctx, file)
	}
	b, err := io.ReadAll(file.Reader)
	if err != nil {
		return "", err
	}
	url := "https://cdn.test/" + file.Name + "?" + string(b)
	f.mu.Lock()
	f.uploaded = append(f.uploaded, url)
	f.mu.Unlock()
	return url, nil
}

func (f *fakeAPI) DeleteMedia(ctx context.Context, url string) error {
	f.record("delete media")
	if f.mediaHook != nil {
		f.mediaHook(ctx, url)
	}
	f.mu.Lock()
	f.deleted = append(f.deleted, url)
	f.mu.Unlock()
	return nil
}

var postsSchema = nota.Schema{
	ID:   "schema-posts",
	Name: "posts",
	Definition: []nota.Field{
		{Name: "title", Type: nota.FieldText, IsRequired: true},
		{Name: "body", Type: nota.FieldTextarea},
		{Name: "cover", Type: nota.FieldImage},
		{Name: "featured", Type: nota.FieldBoolean},
	},
}
