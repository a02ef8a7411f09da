package claude

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/KentLee86/claude-oauth/internal/misc"
)

// Credentials stores OAuth2 token information for Anthropic Claude API
// authentication. Timestamps are epoch milliseconds to stay wire-compatible
// with the credential files written by other ports of this client.
type Credentials struct {
	// AccessToken is the OAuth2 access token used for authenticating API requests.
	AccessToken string `json:"accessToken"`
	// RefreshToken is used to obtain new access tokens when the current one expires.
	RefreshToken string `json:"refreshToken"`
	// ExpiresAt is the epoch-millisecond timestamp when the access token expires.
	ExpiresAt int64 `json:"expiresAt"`
	// ConnectedAt is the epoch-millisecond timestamp of the first successful
	// code exchange; preserved across refreshes.
	ConnectedAt int64 `json:"connectedAt"`
}

const credentialsFileName = "credentials.json"

// TokenStore persists a single credential record as JSON under a per-user
// directory with owner-only permissions.
type TokenStore struct {
	dir string
}

// NewTokenStore creates a token store rooted at dir. When dir is empty the
// default per-user location (~/.claude-oauth) is used.
func NewTokenStore(dir string) *TokenStore {
	if dir == "" {
		dir = DefaultStoreDir()
	}
	return &TokenStore{dir: dir}
}

// DefaultStoreDir returns the default per-user credential directory.
func DefaultStoreDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claude-oauth"
	}
	return filepath.Join(home, ".claude-oauth")
}

// Dir returns the directory backing this store.
func (s *TokenStore) Dir() string { return s.dir }

func (s *TokenStore) path() string { return filepath.Join(s.dir, credentialsFileName) }

// Save persists the credential record. The file is written to a temporary
// sibling first and renamed into place so a concurrent Load never observes a
// partially written record. File mode is 0600 where the platform supports it.
func (s *TokenStore) Save(creds *Credentials) error {
	if creds == nil {
		return fmt.Errorf("token store: credentials are nil")
	}
	misc.LogSavingCredentials(s.path())

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("token store: failed to create directory: %w", err)
	}

	raw, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("token store: failed to marshal credentials: %w", err)
	}

	tmp := s.path() + ".tmp"
	if err = os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("token store: failed to write credentials: %w", err)
	}
	if err = os.Rename(tmp, s.path()); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("token store: failed to replace credentials file: %w", err)
	}
	return nil
}

// Load retrieves the stored credential record. Any underlying I/O or parse
// failure is reported as absence (nil); a corrupt or missing credential file
// must never crash the caller.
func (s *TokenStore) Load() *Credentials {
	raw, err := os.ReadFile(s.path())
	if err != nil {
		return nil
	}
	var creds Credentials
	if err = json.Unmarshal(raw, &creds); err != nil {
		return nil
	}
	if creds.AccessToken == "" {
		return nil
	}
	return &creds
}

// Clear removes the stored credential record. Absence of an existing record
// is not an error.
func (s *TokenStore) Clear() error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("token store: failed to remove credentials: %w", err)
	}
	return nil
}

// IsValid reports whether a credential record exists and its access token
// remains valid for at least the given buffer beyond the current time.
func (s *TokenStore) IsValid(buffer time.Duration) bool {
	creds := s.Load()
	if creds == nil {
		return false
	}
	return creds.ExpiresAt > time.Now().UnixMilli()+buffer.Milliseconds()
}
