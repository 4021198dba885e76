package nota

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// State is the lifecycle position of an Editor.
type State int

const (
	StateNoSchemaSelected State = iota
	StateNoContentSelected
	StateViewing
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateNoSchemaSelected:
		return "no-schema-selected"
	case StateNoContentSelected:
		return "no-content-selected"
	case StateViewing:
		return "viewing"
	case StateEditing:
		return "editing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// EditorAPI is the part of the API an Editor talks to.
type EditorAPI interface {
	ContentAPI
	MediaAPI
}

// Editor drives the view, edit and save lifecycle of one content record of a
// selected schema.
//
// Registry mutations performed by the editor notify subscribers while the
// editor lock is held, so subscribers must not call back into the editor
// synchronously.
type Editor struct {
	api      EditorAPI
	schemas  *SchemaRegistry
	contents *ContentRegistry
	logger   *zap.Logger

	mu       sync.Mutex
	schema   *Schema
	selected *Content
	editing  map[string]any
	// editGen changes whenever the edit snapshot is created or discarded.
	editGen    uint64
	fetchGen   uint64
	fetchStop  context.CancelFunc
	busy       bool
	publishing bool
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithEditorLogger sets the logger used for soft failures.
func WithEditorLogger(logger *zap.Logger) EditorOption {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEditor creates an editor over the given registries.
func NewEditor(api EditorAPI, schemas *SchemaRegistry, contents *ContentRegistry, opts ...EditorOption) *Editor {
	e := &Editor{
		api:      api,
		schemas:  schemas,
		contents: contents,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current lifecycle state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state()
}

func (e *Editor) state() State {
	switch {
	case e.schema == nil:
		return StateNoSchemaSelected
	case e.selected == nil:
		return StateNoContentSelected
	case e.editing != nil:
		return StateEditing
	default:
		return StateViewing
	}
}

// Publishing reports whether a publish toggle is in flight.
func (e *Editor) Publishing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.publishing
}

// Busy reports whether a save, delete or publish call is in flight.
func (e *Editor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// Schema returns the selected schema.
func (e *Editor) Schema() (Schema, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.schema == nil {
		return Schema{}, false
	}
	return *e.schema, true
}

// Selected returns a copy of the viewed record.
func (e *Editor) Selected() (Content, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected == nil {
		return Content{}, false
	}
	c := *e.selected
	c.Data = copyData(c.Data)
	return c, true
}

// Editing returns a copy of the edit snapshot.
func (e *Editor) Editing() (map[string]any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.editing == nil {
		return nil, false
	}
	return copyData(e.editing), true
}

// Contents returns the records of the selected schema.
func (e *Editor) Contents() []Content {
	e.mu.Lock()
	name := ""
	if e.schema != nil {
		name = e.schema.Name
	}
	e.mu.Unlock()
	if name == "" || e.contents.SchemaName() != name {
		return []Content{}
	}
	return e.contents.List()
}

// Title returns the display title of a record under the selected schema.
func (e *Editor) Title(c Content) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.schema == nil {
		return Schema{}.Title(c)
	}
	return e.schema.Title(c)
}

// SelectSchema selects a schema by name and loads its records. Any selected
// record and edit are discarded. A failed fetch empties the list, is logged
// and is not returned. A newer selection cancels an older fetch, and a
// response for a superseded selection is dropped.
func (e *Editor) SelectSchema(ctx context.Context, name string) error {
	schema, ok := e.schemas.ByName(name)
	if !ok {
		return fmt.Errorf("select schema %q: %w", name, ErrSchemaNotFound)
	}

	e.mu.Lock()
	e.schema = &schema
	e.clearSelection()
	e.contents.ReplaceFor(name, []Content{})
	fctx, gen := e.beginFetch(ctx)
	e.mu.Unlock()

	e.fetch(fctx, gen, name)
	return nil
}

// Refresh reloads the records of the selected schema. The selection survives
// when the record is still listed.
func (e *Editor) Refresh(ctx context.Context) error {
	e.mu.Lock()
	if e.schema == nil {
		e.mu.Unlock()
		return ErrNoSchemaSelected
	}
	name := e.schema.Name
	fctx, gen := e.beginFetch(ctx)
	e.mu.Unlock()

	e.fetch(fctx, gen, name)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected != nil {
		if _, ok := e.contents.Get(e.selected.ID); !ok {
			e.clearSelection()
		}
	}
	return nil
}

// beginFetch cancels any in-flight fetch and tags a new one. It must be
// called with e.mu held.
func (e *Editor) beginFetch(ctx context.Context) (context.Context, uint64) {
	if e.fetchStop != nil {
		e.fetchStop()
	}
	e.fetchGen++
	fctx, cancel := context.WithCancel(ctx)
	e.fetchStop = cancel
	return fctx, e.fetchGen
}

func (e *Editor) fetch(ctx context.Context, gen uint64, name string) {
	raws, err := e.api.ListContent(ctx, name, ListContentOptions{})

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.fetchGen || e.schema == nil || e.schema.Name != name {
		e.logger.Debug("Discarding stale content list", zap.String("schema", name))
		return
	}
	e.fetchStop()
	e.fetchStop = nil
	if err != nil {
		e.logger.Warn("Failed to fetch content", zap.String("schema", name), zap.Error(err))
		e.contents.ReplaceFor(name, []Content{})
		return
	}
	e.contents.ReplaceFor(name, NormalizeContents(raws))
}

// clearSelection drops the viewed record and edit. It must be called with
// e.mu held.
func (e *Editor) clearSelection() {
	e.selected = nil
	e.discardEdit()
}

func (e *Editor) discardEdit() {
	e.editing = nil
	e.editGen++
}

// SelectContent enters Viewing for a record of the selected schema. Any edit
// in progress is discarded.
func (e *Editor) SelectContent(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.schema == nil {
		return ErrNoSchemaSelected
	}
	if e.contents.SchemaName() != e.schema.Name {
		return fmt.Errorf("select content %q: %w", id, ErrContentNotFound)
	}
	c, ok := e.contents.Get(id)
	if !ok {
		return fmt.Errorf("select content %q: %w", id, ErrContentNotFound)
	}
	c.Data = copyData(c.Data)
	e.selected = &c
	e.discardEdit()
	return nil
}

// SelectRecord normalizes a raw record and enters Viewing for it.
func (e *Editor) SelectRecord(raw map[string]any) error {
	c := NormalizeContent(raw)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.schema == nil {
		return ErrNoSchemaSelected
	}
	e.selected = &c
	e.discardEdit()
	return nil
}

// BeginEdit snapshots the viewed data and enters Editing.
func (e *Editor) BeginEdit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected == nil {
		return ErrNoContentSelected
	}
	e.editing = copyData(e.selected.Data)
	e.editGen++
	return nil
}

// CancelEdit discards the snapshot and returns to Viewing.
func (e *Editor) CancelEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.editing != nil {
		e.discardEdit()
	}
}

// SetField sets one value of the edit snapshot.
func (e *Editor) SetField(name string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.editing == nil {
		return ErrNotEditing
	}
	if _, ok := e.schema.Field(name); !ok {
		return fmt.Errorf("set %q: %w", name, ErrUnknownField)
	}
	e.editing[name] = value
	return nil
}

// ReplaceFile uploads file for a media field of the edit snapshot, deletes
// the object behind the previous URL and stores the new URL. Concurrent
// replacements of the same field resolve as last completed write wins, and
// every displaced upload is deleted. A
// replacement that completes after the snapshot was discarded returns
// ErrStaleEdit and leaves no value behind.
func (e *Editor) ReplaceFile(ctx context.Context, name string, file File) (string, error) {
	e.mu.Lock()
	if e.editing == nil {
		e.mu.Unlock()
		return "", ErrNotEditing
	}
	field, ok := e.schema.Field(name)
	if !ok {
		e.mu.Unlock()
		return "", fmt.Errorf("replace %q: %w", name, ErrUnknownField)
	}
	if !field.Type.IsMedia() {
		e.mu.Unlock()
		return "", fmt.Errorf("replace %q: %w", name, ErrNotMediaField)
	}
	gen := e.editGen
	e.mu.Unlock()

	url, err := uploadFile(ctx, e.api, file)
	if err != nil {
		e.logger.Warn("Failed to upload file", zap.String("field", name), zap.Error(err))
		return "", &OperationError{Op: "upload", ID: name, Err: err}
	}

	e.mu.Lock()
	if gen != e.editGen {
		e.mu.Unlock()
		e.dropOrphan(ctx, url)
		return "", ErrStaleEdit
	}
	prev := FormatValue(e.editing[name])
	e.mu.Unlock()

	if prev != "" && prev != url {
		if err := e.api.DeleteMedia(ctx, prev); err != nil {
			e.logger.Warn("Failed to delete previous file", zap.String("url", prev), zap.Error(err))
		}
	}

	e.mu.Lock()
	if gen != e.editGen {
		e.mu.Unlock()
		e.dropOrphan(ctx, url)
		return "", ErrStaleEdit
	}
	displaced := FormatValue(e.editing[name])
	e.editing[name] = url
	e.mu.Unlock()

	// A concurrent replacement stored its URL after prev was read.
	if displaced != "" && displaced != prev && displaced != url {
		e.dropOrphan(ctx, displaced)
	}
	return url, nil
}

func (e *Editor) dropOrphan(ctx context.Context, url string) {
	if err := e.api.DeleteMedia(ctx, url); err != nil {
		e.logger.Debug("Failed to delete orphaned upload", zap.String("url", url), zap.Error(err))
	}
}

// acquire sets the busy flag. It must be called with e.mu held.
func (e *Editor) acquire() error {
	if e.busy {
		return ErrBusy
	}
	e.busy = true
	return nil
}

func (e *Editor) release() {
	e.mu.Lock()
	e.busy = false
	e.publishing = false
	e.mu.Unlock()
}

// Save posts the edit snapshot. On success the response replaces the viewed
// and registry copies and the editor returns to Viewing. On failure the
// snapshot is kept for a retry.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.editing == nil {
		e.mu.Unlock()
		return ErrNotEditing
	}
	if err := e.acquire(); err != nil {
		e.mu.Unlock()
		return err
	}
	req := UpdateContentRequest{
		ContentID: e.selected.ID,
		Data:      copyData(e.editing),
		Published: e.selected.Published,
	}
	base := *e.selected
	gen := e.editGen
	e.mu.Unlock()
	defer e.release()

	raw, err := e.api.UpdateContent(ctx, req)
	if err != nil {
		e.logger.Warn("Failed to save content", zap.String("id", req.ContentID), zap.Error(err))
		return &OperationError{Op: "save", ID: req.ContentID, Err: err}
	}

	updated := mergeResponse(base, raw, req)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.contents.Update(updated)
	if e.selected != nil && e.selected.ID == updated.ID {
		c := updated
		c.Data = copyData(updated.Data)
		e.selected = &c
	}
	if gen == e.editGen {
		e.discardEdit()
	}
	return nil
}

// mergeResponse normalizes an update response. A response without an id
// falls back to the submitted values.
func mergeResponse(base Content, raw map[string]any, req UpdateContentRequest) Content {
	updated := NormalizeContent(UnwrapRecord(raw))
	if updated.ID == "" {
		base.Data = copyData(req.Data)
		base.Published = req.Published
		base.Raw = raw
		return base
	}
	if updated.SchemaID == "" {
		updated.SchemaID = base.SchemaID
	}
	if updated.CreatedAt == "" {
		updated.CreatedAt = base.CreatedAt
	}
	return updated
}

// Delete removes a record. An empty id means the viewed record. Deleting the
// viewed record returns the editor to NoContentSelected; on failure the
// selection is kept.
func (e *Editor) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	if id == "" {
		if e.selected == nil {
			e.mu.Unlock()
			return ErrNoContentSelected
		}
		id = e.selected.ID
	}
	if err := e.acquire(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()
	defer e.release()

	if err := e.api.DeleteContent(ctx, id); err != nil {
		e.logger.Warn("Failed to delete content", zap.String("id", id), zap.Error(err))
		return &OperationError{Op: "delete", ID: id, Err: err}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.contents.Delete(id)
	if e.selected != nil && e.selected.ID == id {
		e.clearSelection()
	}
	return nil
}

// SetPublished toggles the published flag of the viewed record. The value is
// applied immediately and restored if the update fails. An edit in
// progress is kept.
func (e *Editor) SetPublished(ctx context.Context, published bool) error {
	e.mu.Lock()
	if e.selected == nil {
		e.mu.Unlock()
		return ErrNoContentSelected
	}
	if err := e.acquire(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.publishing = true
	id := e.selected.ID
	data := copyData(e.selected.Data)
	base := *e.selected
	e.mu.Unlock()
	defer e.release()

	var raw map[string]any
	opt := Optimistic[bool]{
		Load: func() bool {
			e.mu.Lock()
			defer e.mu.Unlock()
			if e.selected != nil && e.selected.ID == id {
				return e.selected.Published
			}
			return base.Published
		},
		Store: func(v bool) { e.applyPublished(id, v) },
	}
	err := opt.Do(ctx, published, func(ctx context.Context, v bool) error {
		var err error
		raw, err = e.api.UpdateContent(ctx, UpdateContentRequest{ContentID: id, Data: data, Published: v})
		return err
	})
	if err != nil {
		e.logger.Warn("Failed to update published state", zap.String("id", id), zap.Bool("published", published), zap.Error(err))
		return &OperationError{Op: "publish", ID: id, Err: err}
	}

	updated := mergeResponse(base, raw, UpdateContentRequest{ContentID: id, Data: data, Published: published})

	e.mu.Lock()
	defer e.mu.Unlock()
	e.contents.Update(updated)
	if e.selected != nil && e.selected.ID == id {
		c := updated
		c.Data = copyData(updated.Data)
		e.selected = &c
	}
	return nil
}

func (e *Editor) applyPublished(id string, v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected != nil && e.selected.ID == id {
		e.selected.Published = v
	}
	if c, ok := e.contents.Get(id); ok {
		c.Published = v
		e.contents.Update(c)
	}
}
