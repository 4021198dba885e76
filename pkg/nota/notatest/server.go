// Package notatest provides an in-memory fake of the Nota REST API.
//
// The fake implements the client-visible contract only. Responses reproduce
// the key casing of the real backend: schema lists use capitalized keys with
// base64 definitions, content lists are bare arrays, and create/update
// responses carry base64 data with a {Bool, Valid} published wrapper.
package notatest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/tendant/nota-dashboard/pkg/nota"
)

// BasePath is the mount point of the API routes.
const BasePath = "/api/v1"

// TokenCookie is the name of the session cookie set by login.
const TokenCookie = "token"

// Request is one call received by the fake.
type Request struct {
	Method string
	// Route is the chi pattern the call matched, e.g. /content/delete/{id}.
	Route string
	Path  string
	Body  []byte
}

type failure struct {
	status  int
	message string
}

// Server is a running fake API.
type Server struct {
	*httptest.Server

	store       *store
	logger      *zap.Logger
	requireAuth bool

	mu       sync.Mutex
	requests []Request
	failures map[string]failure
	hooks    map[string]func(*http.Request)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger logs every request through logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithoutAuth serves every route without a session cookie.
func WithoutAuth() Option {
	return func(s *Server) {
		s.requireAuth = false
	}
}

// WithUser registers an account at startup.
func WithUser(email, password string) Option {
	return func(s *Server) {
		s.store.createUser(email, password, "editor")
	}
}

// New starts a fake API server. Close it when done.
func New(opts ...Option) *Server {
	s := &Server{
		store:       newStore(),
		logger:      zap.NewNop(),
		requireAuth: true,
		failures:    make(map[string]failure),
		hooks:       make(map[string]func(*http.Request)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(s.Routes())
	return s
}

// APIURL returns the base URL clients should be configured with.
func (s *Server) APIURL() string {
	return s.URL + BasePath
}

// Routes builds the router of the fake.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/media/*", s.serveMedia)

	r.Route(BasePath, func(r chi.Router) {
		s.handle(r, http.MethodPost, "/auth/register", s.register)
		s.handle(r, http.MethodPost, "/auth/signup", s.register)
		s.handle(r, http.MethodPost, "/auth/login", s.login)
		s.handle(r, http.MethodPost, "/auth/verify", s.verify)

		s.handle(r, http.MethodGet, "/content/get/{id}", s.getContent)
		s.handle(r, http.MethodGet, "/content/get_all/{schemaName}", s.listContent)

		r.Group(func(r chi.Router) {
			r.Use(s.protect)

			s.handle(r, http.MethodPost, "/schemas/create", s.createSchema)
			s.handle(r, http.MethodGet, "/schemas/list", s.listSchemas)
			s.handle(r, http.MethodGet, "/schemas/get_by_id/{id}", s.getSchemaByID)
			s.handle(r, http.MethodGet, "/schemas/get_by_name/{name}", s.getSchemaByName)
			s.handle(r, http.MethodDelete, "/schemas/delete/{id}", s.deleteSchema)

			s.handle(r, http.MethodPost, "/content/create", s.createContent)
			s.handle(r, http.MethodPost, "/content/update", s.updateContent)
			s.handle(r, http.MethodPost, "/content/update/{id}", s.updateContent)
			s.handle(r, http.MethodDelete, "/content/delete/{id}", s.deleteContent)

			s.handle(r, http.MethodPost, "/media/upload", s.uploadMedia)
			s.handle(r, http.MethodDelete, "/media/delete", s.deleteMedia)
		})
	})
	return r
}

func routeKey(method, route string) string {
	return method + " " + route
}

// handle registers h with request recording, hooks and failure injection.
func (s *Server) handle(r chi.Router, method, route string, h http.HandlerFunc) {
	key := routeKey(method, route)
	r.Method(method, route, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		_ = req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: method, Route: route, Path: req.URL.Path, Body: body})
		hook := s.hooks[key]
		fail, failing := s.failures[key]
		s.mu.Unlock()

		if hook != nil {
			hook(req)
		}
		if failing {
			writeError(w, req, fail.status, fail.message)
			return
		}
		h(w, req)
	}))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("Fake API request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()))
	})
}

func (s *Server) protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.requireAuth {
			next.ServeHTTP(w, r)
			return
		}
		cookie, err := r.Cookie(TokenCookie)
		if err != nil || cookie.Value == "" {
			writeError(w, r, http.StatusUnauthorized, "missing token")
			return
		}
		if _, ok := s.store.userByToken(cookie.Value); !ok {
			writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]any{"error": message})
}

// Fail makes every later call of the route answer with status and message.
// Routes use chi patterns relative to BasePath, e.g. "/content/update".
func (s *Server) Fail(method, route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[routeKey(method, route)] = failure{status: status, message: message}
}

// Recover removes a failure installed by Fail.
func (s *Server) Recover(method, route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, routeKey(method, route))
}

// Hook runs fn before the route is served. fn may block to hold a response.
func (s *Server) Hook(method, route string, fn func(*http.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		delete(s.hooks, routeKey(method, route))
		return
	}
	s.hooks[routeKey(method, route)] = fn
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request{}, s.requests...)
}

// CountRequests returns how many calls matched the route.
func (s *Server) CountRequests(method, route string) int {
	n := 0
	for _, req := range s.Requests() {
		if req.Method == method && req.Route == route {
			n++
		}
	}
	return n
}

// AddUser registers an account.
func (s *Server) AddUser(email, password string) {
	s.store.createUser(email, password, "editor")
}

// AddSchema stores a schema and returns it in canonical form.
func (s *Server) AddSchema(name string, definition []nota.Field) nota.Schema {
	rec, ok := s.store.createSchema(name, definition, "")
	if !ok {
		rec, _ = s.store.schemaByName(name)
	}
	return nota.Schema{ID: rec.ID, Name: rec.Name, Definition: rec.Definition}
}

// AddContent stores a record for the named schema and returns its id. It
// returns an empty id when the schema does not exist.
func (s *Server) AddContent(schemaName string, data map[string]any, published bool) string {
	schema, ok := s.store.schemaByName(schemaName)
	if !ok {
		return ""
	}
	return s.store.createContent(schema.ID, data, published).ID
}

// Content returns the stored record in canonical form.
func (s *Server) Content(id string) (nota.Content, bool) {
	rec, ok := s.store.content(id)
	if !ok {
		return nota.Content{}, false
	}
	return nota.Content{ID: rec.ID, SchemaID: rec.SchemaID, Data: rec.Data, Published: rec.Published}, true
}

// Media returns the URLs of stored media objects in sorted order.
func (s *Server) Media() []string {
	return s.store.mediaURLs()
}
