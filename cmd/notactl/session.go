package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// savedSession is the session file written by login.
type savedSession struct {
	APIURL  string        `yaml:"api_url"`
	Email   string        `yaml:"email,omitempty"`
	Cookies []savedCookie `yaml:"cookies"`
}

type savedCookie struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

func newSavedSession(apiURL, email string, cookies []*http.Cookie) *savedSession {
	s := &savedSession{APIURL: apiURL, Email: email}
	for _, c := range cookies {
		s.Cookies = append(s.Cookies, savedCookie{Name: c.Name, Value: c.Value})
	}
	return s
}

func (s *savedSession) httpCookies() []*http.Cookie {
	cookies := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	return cookies
}

// loadSession reads the session file. A missing file is an empty session.
func loadSession(path string) (*savedSession, error) {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &savedSession{}, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}
	var s savedSession
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return &s, nil
}

// saveSession writes the session file readable by the owner only.
func saveSession(path string, s *savedSession) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	if err := os.WriteFile(filepath.Clean(path), b, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// deleteSession removes the session file. A missing file is not an error.
func deleteSession(path string) error {
	if err := os.Remove(filepath.Clean(path)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
