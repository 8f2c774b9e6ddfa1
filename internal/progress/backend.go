package progress

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rasnovtravel/townhunt/internal/hunt"
)

// FileBackend stores the progress blob in a single JSON file.
type FileBackend struct {
	path string
}

// NewFileBackend builds a file-backed channel at path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) Read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoProgress
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	return data, nil
}

func (f *FileBackend) Write(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating dir for %s: %w", f.path, err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", f.path, err)
	}
	return nil
}

func (f *FileBackend) Delete() error {
	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryBackend keeps the blob in memory only. Used as the degraded
// session-only channel and in tests.
type MemoryBackend struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Read() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, ErrNoProgress
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryBackend) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBackend) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}

// BackupCookie encodes progress as the cookie mirror of the primary
// store: one year expiry, SameSite=Strict, Secure when served over TLS.
func BackupCookie(p *hunt.Progress, secure bool) (*http.Cookie, error) {
	data, err := encodeCookieValue(p)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     StorageKey,
		Value:    data,
		Path:     "/",
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		SameSite: http.SameSiteStrictMode,
		Secure:   secure,
	}, nil
}

// ParseBackupCookie decodes a progress cookie produced by BackupCookie.
func ParseBackupCookie(c *http.Cookie) (*hunt.Progress, error) {
	if c == nil || c.Name != StorageKey {
		return nil, ErrNoProgress
	}
	return decodeCookieValue(c.Value)
}

func encodeCookieValue(p *hunt.Progress) (string, error) {
	data, err := progressJSON(p)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(string(data)), nil
}

func decodeCookieValue(v string) (*hunt.Progress, error) {
	raw, err := url.QueryUnescape(v)
	if err != nil {
		return nil, fmt.Errorf("decoding cookie value: %w", err)
	}
	return parseProgressJSON([]byte(raw))
}
