package notatest

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/nota-dashboard/pkg/nota"
)

type userRecord struct {
	ID       string
	Email    string
	Password string
	Role     string
	Created  time.Time
}

type schemaRecord struct {
	ID         string
	Name       string
	Definition []nota.Field
	CreatedBy  string
	Created    time.Time
}

type contentRecord struct {
	ID        string
	SchemaID  string
	Data      map[string]any
	Published bool
	Created   time.Time
	Updated   time.Time
}

// store is the in-memory state of the fake API.
type store struct {
	mu       sync.RWMutex
	users    map[string]*userRecord
	tokens   map[string]string
	schemas  map[string]*schemaRecord
	contents map[string]*contentRecord
	media    map[string][]byte
	seq      int
	order    map[string]int
	now      func() time.Time
}

func newStore() *store {
	return &store{
		users:    make(map[string]*userRecord),
		tokens:   make(map[string]string),
		schemas:  make(map[string]*schemaRecord),
		contents: make(map[string]*contentRecord),
		media:    make(map[string][]byte),
		order:    make(map[string]int),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// track remembers insertion order so lists are stable.
func (s *store) track(id string) {
	s.seq++
	s.order[id] = s.seq
}

func (s *store) createUser(email, password, role string) (*userRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		return nil, false
	}
	u := &userRecord{ID: uuid.New().String(), Email: email, Password: password, Role: role, Created: s.now()}
	s.users[email] = u
	return u, true
}

func (s *store) login(email, password string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok || u.Password != password {
		return "", false
	}
	token := uuid.New().String()
	s.tokens[token] = email
	return token, true
}

func (s *store) userByToken(token string) (*userRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email, ok := s.tokens[token]
	if !ok {
		return nil, false
	}
	u, ok := s.users[email]
	return u, ok
}

func (s *store) createSchema(name string, def []nota.Field, createdBy string) (*schemaRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.schemas {
		if existing.Name == name {
			return nil, false
		}
	}
	rec := &schemaRecord{
		ID:         uuid.New().String(),
		Name:       name,
		Definition: append([]nota.Field{}, def...),
		CreatedBy:  createdBy,
		Created:    s.now(),
	}
	s.schemas[rec.ID] = rec
	s.track(rec.ID)
	return rec, true
}

func (s *store) schema(id string) (*schemaRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.schemas[id]
	return rec, ok
}

func (s *store) schemaByName(name string) (*schemaRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.schemas {
		if rec.Name == name {
			return rec, true
		}
	}
	return nil, false
}

func (s *store) listSchemas() []*schemaRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*schemaRecord, 0, len(s.schemas))
	for _, rec := range s.schemas {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return s.order[out[i].ID] < s.order[out[j].ID] })
	return out
}

func (s *store) deleteSchema(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schemas[id]; !ok {
		return false
	}
	delete(s.schemas, id)
	return true
}

func (s *store) createContent(schemaID string, data map[string]any, published bool) *contentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	rec := &contentRecord{
		ID:        uuid.New().String(),
		SchemaID:  schemaID,
		Data:      copyMap(data),
		Published: published,
		Created:   now,
		Updated:   now,
	}
	s.contents[rec.ID] = rec
	s.track(rec.ID)
	return rec
}

func (s *store) content(id string) (contentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.contents[id]
	if !ok {
		return contentRecord{}, false
	}
	out := *rec
	out.Data = copyMap(rec.Data)
	return out, true
}

func (s *store) updateContent(id string, data map[string]any, published bool) (contentRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.contents[id]
	if !ok {
		return contentRecord{}, false
	}
	rec.Data = copyMap(data)
	rec.Published = published
	rec.Updated = s.now()
	out := *rec
	out.Data = copyMap(rec.Data)
	return out, true
}

func (s *store) deleteContent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contents[id]; !ok {
		return false
	}
	delete(s.contents, id)
	return true
}

// listContents returns the records of a schema. A nil published matches all.
func (s *store) listContents(schemaID string, published *bool) []contentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []contentRecord{}
	for _, rec := range s.contents {
		if rec.SchemaID != schemaID {
			continue
		}
		if published != nil && rec.Published != *published {
			continue
		}
		c := *rec
		c.Data = copyMap(rec.Data)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return s.order[out[i].ID] < s.order[out[j].ID] })
	return out
}

func (s *store) putMedia(url string, b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media[url] = b
}

func (s *store) getMedia(url string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.media[url]
	return b, ok
}

func (s *store) deleteMedia(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.media[url]; !ok {
		return false
	}
	delete(s.media, url)
	return true
}

func (s *store) mediaURLs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.media))
	for url := range s.media {
		out = append(out, url)
	}
	sort.Strings(out)
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
