package notatest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tendant/nota-dashboard/pkg/nota"
)

const maxUploadSize = 32 << 20

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}
	if req.Role == "" {
		req.Role = "editor"
	}
	u, ok := s.store.createUser(req.Email, req.Password, req.Role)
	if !ok {
		writeError(w, r, http.StatusConflict, "user already exists")
		return
	}
	render.JSON(w, r, map[string]any{
		"id":        u.ID,
		"email":     u.Email,
		"role":      u.Role,
		"createdAt": formatTime(u.Created),
		"updatedAt": formatTime(u.Created),
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid body")
		return
	}
	token, ok := s.store.login(req.Email, req.Password)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: TokenCookie, Value: token, Path: "/", HttpOnly: true})
	render.JSON(w, r, map[string]any{"token": token})
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(TokenCookie)
	if err != nil {
		render.JSON(w, r, map[string]any{"auth": false})
		return
	}
	u, ok := s.store.userByToken(cookie.Value)
	if !ok {
		render.JSON(w, r, map[string]any{"auth": false})
		return
	}
	render.JSON(w, r, map[string]any{
		"auth": true,
		"user": map[string]any{"id": u.ID, "email": u.Email, "role": u.Role},
	})
}

type createSchemaRequest struct {
	Name       string       `json:"name"`
	Definition []nota.Field `json:"definition"`
}

func (s *Server) createSchema(w http.ResponseWriter, r *http.Request) {
	var req createSchemaRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Name == "" || len(req.Definition) == 0 {
		writeError(w, r, http.StatusBadRequest, "name and definition are required")
		return
	}
	rec, ok := s.store.createSchema(req.Name, req.Definition, s.userID(r))
	if !ok {
		writeError(w, r, http.StatusConflict, "could not create schema")
		return
	}
	render.JSON(w, r, map[string]any{
		"id":         rec.ID,
		"name":       rec.Name,
		"definition": encodeDefinition(rec.Definition),
		"createdAt":  formatTime(rec.Created),
	})
}

func (s *Server) listSchemas(w http.ResponseWriter, r *http.Request) {
	recs := s.store.listSchemas()
	if len(recs) == 0 {
		render.JSON(w, r, map[string]any{"message": "No schemas found", "data": []any{}})
		return
	}
	items := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		items = append(items, schemaRow(rec))
	}
	render.JSON(w, r, map[string]any{"count": len(items), "data": items})
}

func (s *Server) getSchemaByID(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.store.schema(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "schema not found")
		return
	}
	render.JSON(w, r, schemaRow(rec))
}

func (s *Server) getSchemaByName(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.store.schemaByName(chi.URLParam(r, "name"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "schema not found")
		return
	}
	render.JSON(w, r, schemaRow(rec))
}

func (s *Server) deleteSchema(w http.ResponseWriter, r *http.Request) {
	if !s.store.deleteSchema(chi.URLParam(r, "id")) {
		writeError(w, r, http.StatusNotFound, "schema not found")
		return
	}
	render.JSON(w, r, map[string]any{"message": "Schema deleted successfully"})
}

// schemaRow renders a schema the way the database layer serializes it.
func schemaRow(rec *schemaRecord) map[string]any {
	return map[string]any{
		"ID":         rec.ID,
		"Name":       rec.Name,
		"Definition": encodeDefinition(rec.Definition),
		"CreatedBy":  rec.CreatedBy,
		"CreatedAt":  formatTime(rec.Created),
	}
}

// encodeDefinition returns the JSON bytes of def; render encodes them as a
// base64 string.
func encodeDefinition(def []nota.Field) []byte {
	b, _ := json.Marshal(def)
	return b
}

func (s *Server) listContent(w http.ResponseWriter, r *http.Request) {
	schema, ok := s.store.schemaByName(chi.URLParam(r, "schemaName"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "Error fetching schema")
		return
	}
	var published *bool
	switch r.URL.Query().Get("published") {
	case "true":
		v := true
		published = &v
	case "false":
		v := false
		published = &v
	}
	items := []map[string]any{}
	for _, rec := range s.store.listContents(schema.ID, published) {
		items = append(items, map[string]any{
			"id":        rec.ID,
			"schemaID":  rec.SchemaID,
			"data":      rec.Data,
			"published": rec.Published,
			"createdAt": formatTime(rec.Created),
			"updatedAt": formatTime(rec.Updated),
		})
	}
	render.JSON(w, r, items)
}

func (s *Server) getContent(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.store.content(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "Error fetching content")
		return
	}
	render.JSON(w, r, map[string]any{
		"id":        rec.ID,
		"schemaID":  rec.SchemaID,
		"data":      rec.Data,
		"createdAt": formatTime(rec.Created),
	})
}

type writeContentRequest struct {
	SchemaID  string         `json:"schema_id"`
	ContentID string         `json:"content_id"`
	Data      map[string]any `json:"data"`
	Published bool           `json:"published"`
}

func (s *Server) createContent(w http.ResponseWriter, r *http.Request) {
	var req writeContentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid body")
		return
	}
	schema, ok := s.store.schema(req.SchemaID)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid schema ID")
		return
	}
	if err := matchSchema(schema.Definition, req.Data); err != nil {
		writeError(w, r, http.StatusBadRequest, "Data does not match schema: "+err.Error())
		return
	}
	rec := s.store.createContent(schema.ID, req.Data, req.Published)
	render.JSON(w, r, writtenRow(*rec, "updateAt"))
}

func (s *Server) updateContent(w http.ResponseWriter, r *http.Request) {
	var req writeContentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid body")
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		req.ContentID = id
	}
	current, ok := s.store.content(req.ContentID)
	if !ok {
		writeError(w, r, http.StatusNotFound, "Could not fetch content")
		return
	}
	if schema, ok := s.store.schema(current.SchemaID); ok {
		if err := matchSchema(schema.Definition, req.Data); err != nil {
			writeError(w, r, http.StatusBadRequest, "Data does not match schema: "+err.Error())
			return
		}
	}
	rec, _ := s.store.updateContent(req.ContentID, req.Data, req.Published)
	render.JSON(w, r, writtenRow(rec, "updatedAt"))
}

// writtenRow renders a created or updated record: data as base64 JSON bytes
// and published as a nullable-boolean wrapper.
func writtenRow(rec contentRecord, updatedKey string) map[string]any {
	data, _ := json.Marshal(rec.Data)
	return map[string]any{
		"id":        rec.ID,
		"schemaID":  rec.SchemaID,
		"data":      data,
		"published": map[string]any{"Bool": rec.Published, "Valid": true},
		"createdAt": formatTime(rec.Created),
		updatedKey:  formatTime(rec.Updated),
	}
}

func (s *Server) deleteContent(w http.ResponseWriter, r *http.Request) {
	if !s.store.deleteContent(chi.URLParam(r, "id")) {
		writeError(w, r, http.StatusNotFound, "Content not found")
		return
	}
	render.JSON(w, r, map[string]any{"message": "Content deleted successfully"})
}

// matchSchema rejects keys outside the definition and missing required
// values.
func matchSchema(def []nota.Field, data map[string]any) error {
	known := make(map[string]nota.Field, len(def))
	for _, f := range def {
		known[f.Name] = f
	}
	for key := range data {
		if _, ok := known[key]; !ok {
			return fmt.Errorf("field %q not defined in schema", key)
		}
	}
	for _, f := range def {
		if !f.IsRequired {
			continue
		}
		if v, ok := data[f.Name]; !ok || v == nil || v == "" {
			return fmt.Errorf("missing required field %q", f.Name)
		}
	}
	return nil
}

func (s *Server) uploadMedia(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, http.StatusBadRequest, "file is required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	b, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "cannot open file")
		return
	}
	id := uuid.New().String()
	url := fmt.Sprintf("http://%s/media/%s/%s", r.Host, id, header.Filename)
	s.store.putMedia(url, b)
	s.logger.Debug("Stored media", zap.String("url", url), zap.Int("size", len(b)))
	render.JSON(w, r, map[string]any{"id": id, "url": url})
}

type deleteMediaRequest struct {
	FileURL  string `json:"file_url"`
	FilePath string `json:"file_path"`
}

func (s *Server) deleteMedia(w http.ResponseWriter, r *http.Request) {
	var req deleteMediaRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, url := range []string{req.FilePath, req.FileURL} {
		if url != "" && s.store.deleteMedia(url) {
			render.JSON(w, r, map[string]any{"message": "file deleted successfully"})
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "file not found")
}

func (s *Server) serveMedia(w http.ResponseWriter, r *http.Request) {
	url := "http://" + r.Host + r.URL.Path
	b, ok := s.store.getMedia(url)
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write(b)
}

func (s *Server) userID(r *http.Request) string {
	cookie, err := r.Cookie(TokenCookie)
	if err != nil {
		return ""
	}
	if u, ok := s.store.userByToken(cookie.Value); ok {
		return u.ID
	}
	return ""
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
