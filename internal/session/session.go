package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const credFileName = "credentials.json"

// EnvToken overrides the stored token when set.
const EnvToken = "QNA_TOKEN"

// TokenProvider hands out the current bearer token. Implementations must
// re-read their backing state on every call: a Clear between two requests has
// to be observed by the second one. An empty string means "not logged in".
type TokenProvider interface {
	Token() string
}

// TokenInfo is what we persist alongside the token itself.
type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "file"
	CreatedAt time.Time  `json:"created_at"` // when we saved to file
	ExpiresAt *time.Time `json:"expires_at"` // optional (JWT or server-provided)
}

// Store keeps the token in a credentials file under dir, with an env-var
// override. It never caches: every read goes back to the env and the file.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir (typically ~/.qna).
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) credPath() string {
	return filepath.Join(s.dir, credFileName)
}

// Info returns the current token info, or (nil, nil) when not logged in.
func (s *Store) Info() (*TokenInfo, error) {
	// 1) env override
	if env := strings.TrimSpace(os.Getenv(EnvToken)); env != "" {
		return &TokenInfo{Token: stripBearer(env), Source: "env"}, nil
	}

	// 2) file
	b, err := os.ReadFile(s.credPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // not logged in
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Token = stripBearer(ti.Token)
	return &ti, nil
}

// Token implements TokenProvider. Read errors and a missing file both come
// back as "", so a protected request is still attempted and fails on the
// server side like any other bad credential.
func (s *Store) Token() string {
	ti, err := s.Info()
	if err != nil || ti == nil {
		return ""
	}
	return ti.Token
}

// Save persists the token to the credentials file (dir 0700, file 0600).
func (s *Store) Save(token string, expires *time.Time) error {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return fmt.Errorf("empty token")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	ti := TokenInfo{
		Token:     token,
		Source:    "file",
		CreatedAt: time.Now(),
		ExpiresAt: expires,
	}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(s.credPath(), b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Clear removes the credentials file. Clearing when not logged in is fine.
func (s *Store) Clear() error {
	if err := os.Remove(s.credPath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
