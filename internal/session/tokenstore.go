package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// TokenStore persists the bearer token across process restarts as a JSON
// file under the user's home directory.
type TokenStore struct {
	path string
}

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	SavedAt     time.Time `json:"saved_at"`
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Save writes the token with 0600 perms via a temp file rename, so a crash
// mid-write never leaves a truncated token behind.
func (t *TokenStore) Save(token string) error {
	data, err := json.MarshalIndent(tokenFile{
		AccessToken: token,
		SavedAt:     time.Now(),
	}, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, t.path)
}

// Load returns the persisted token, or "" when none exists.
func (t *TokenStore) Load() (string, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	var stored tokenFile
	if err := json.Unmarshal(data, &stored); err != nil {
		return "", err
	}
	return stored.AccessToken, nil
}

// Clear removes the token file. Missing file is not an error.
func (t *TokenStore) Clear() error {
	if err := os.Remove(t.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
