package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/roshambo/internal/fileutil"
)

// savedCookie is the on-disk form of a session cookie
type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// sessionStore keeps the server's session cookies in a file so a later
// process continues the same server session.
type sessionStore struct {
	path   string
	origin *url.URL
	jar    http.CookieJar
	logger *log.Logger

	mu   sync.Mutex
	last string
}

func newSessionStore(path string, origin *url.URL, jar http.CookieJar, logger *log.Logger) *sessionStore {
	return &sessionStore{path: path, origin: origin, jar: jar, logger: logger}
}

// load restores saved cookies into the jar. A missing file is an empty session.
func (s *sessionStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var saved []savedCookie
	if err := json.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("invalid session file %s: %w", s.path, err)
	}

	cookies := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	s.jar.SetCookies(s.origin, cookies)
	s.last = string(data)

	s.logger.Debug("Restored session", "file", s.path, "cookies", len(cookies))
	return nil
}

// save writes the jar's cookies for the server when they have changed
func (s *sessionStore) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cookies := s.jar.Cookies(s.origin)
	saved := make([]savedCookie, 0, len(cookies))
	for _, c := range cookies {
		saved = append(saved, savedCookie{Name: c.Name, Value: c.Value})
	}

	data, err := json.Marshal(saved)
	if err != nil {
		return err
	}
	if string(data) == s.last {
		return nil
	}

	if err := fileutil.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.last = string(data)

	s.logger.Debug("Saved session", "file", s.path, "cookies", len(saved))
	return nil
}
