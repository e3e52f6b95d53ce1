package iot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoToken is returned by TokenStore implementations that hold no token.
var ErrNoToken = errors.New("iot: no saved token")

// TokenStore persists tokens obtained through Authenticate or RequestToken.
// The client never stores tokens itself.
type TokenStore interface {
	SaveToken(ctx context.Context, token *TokenResponse) error
	LoadToken(ctx context.Context) (*TokenResponse, error)
}

// FileTokenStore keeps one token as JSON in a file readable only by its owner.
type FileTokenStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileTokenStore returns a store backed by path. Missing parent
// directories are created on the first save.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// SaveToken replaces the stored token. The file is written next to its final
// location and renamed into place, so readers never see a partial token.
func (f *FileTokenStore) SaveToken(_ context.Context, token *TokenResponse) error {
	if token == nil {
		return fmt.Errorf("iot: cannot save a nil token")
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("iot: encode token: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("iot: create token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("iot: create token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("iot: protect token file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("iot: write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("iot: write token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("iot: save token file: %w", err)
	}
	return nil
}

// LoadToken returns the stored token, or an error wrapping ErrNoToken when
// nothing has been saved. Expired tokens are returned as is; check IsValid.
func (f *FileTokenStore) LoadToken(_ context.Context) (*TokenResponse, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w at %s", ErrNoToken, f.path)
	case err != nil:
		return nil, fmt.Errorf("iot: read token file: %w", err)
	}

	var token TokenResponse
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("iot: parse token file %s: %w", f.path, err)
	}
	return &token, nil
}

// Delete removes the stored token. Deleting a missing token is not an error.
func (f *FileTokenStore) Delete() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("iot: delete token file: %w", err)
	}
	return nil
}

// Path returns the file the store writes to.
func (f *FileTokenStore) Path() string {
	return f.path
}

// LoadValidToken loads a token from store and reports whether it can still
// be used. An absent token is not an error.
func LoadValidToken(ctx context.Context, store TokenStore) (*TokenResponse, bool, error) {
	token, err := store.LoadToken(ctx)
	if errors.Is(err, ErrNoToken) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return token, token.IsValid(), nil
}
