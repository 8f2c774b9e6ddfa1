// Package progress persists the player's hunt progress and captured
// photos. Every save is mirrored across two independent channels, a
// primary and a backup, so a corrupt or exhausted channel never loses
// the hunt.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rasnovtravel/townhunt/internal/hunt"
)

// StorageKey is the logical key progress is stored under on both
// channels.
const StorageKey = "rasnov_hunt_progress"

// ErrNoProgress is returned by backends when nothing is stored.
var ErrNoProgress = errors.New("no stored progress")

// Backend is one storage channel for the serialized progress blob.
type Backend interface {
	Read() ([]byte, error)
	Write(data []byte) error
	Delete() error
}

// Store is the persistence boundary of the hunt engine. Any storage
// failure degrades durability instead of failing the discovery flow.
type Store struct {
	mu       sync.Mutex
	primary  Backend
	backup   Backend
	photoDir string
	logger   *slog.Logger
	now      func() time.Time
}

// New builds a store over the given channels. backup may be nil.
// photoDir may be empty to disable photo persistence.
func New(primary, backup Backend, photoDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		primary:  primary,
		backup:   backup,
		photoDir: photoDir,
		logger:   logger,
		now:      time.Now,
	}
}

// Load reads progress from the primary channel, falling back to the
// backup when the primary is absent or corrupt. When neither channel
// yields a parsable progress, a fresh anonymous one is synthesized and
// persisted immediately.
func (s *Store) Load() (*hunt.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.readChannel(s.primary, "primary"); ok {
		return p, nil
	}
	if p, ok := s.readChannel(s.backup, "backup"); ok {
		return p, nil
	}

	now := s.now()
	p := &hunt.Progress{
		Username:    fmt.Sprintf("guest_%d", now.UnixMilli()),
		IsAnonymous: true,
		CreatedAt:   now,
	}
	if err := s.saveLocked(p); err != nil {
		// Session-only mode: the fresh progress is still usable.
		s.logger.Warn("persisting fresh progress failed", "error", err)
	}
	return p, nil
}

func (s *Store) readChannel(b Backend, name string) (*hunt.Progress, bool) {
	if b == nil {
		return nil, false
	}
	data, err := b.Read()
	if err != nil {
		if !errors.Is(err, ErrNoProgress) {
			s.logger.Warn("reading stored progress failed", "channel", name, "error", err)
		}
		return nil, false
	}
	var p hunt.Progress
	if err := json.Unmarshal(data, &p); err != nil || p.Username == "" {
		// Corrupt state is treated as absence, never a hard failure.
		s.logger.Warn("stored progress is corrupt", "channel", name, "error", err)
		return nil, false
	}
	return &p, true
}

// Save writes progress to both channels. It succeeds as long as at
// least one channel accepts the write; a single-channel failure is
// logged only.
func (s *Store) Save(p *hunt.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(p)
}

func (s *Store) saveLocked(p *hunt.Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding progress: %w", err)
	}

	var failures int
	channels := 0
	for _, ch := range []struct {
		name string
		b    Backend
	}{{"primary", s.primary}, {"backup", s.backup}} {
		if ch.b == nil {
			continue
		}
		channels++
		if err := ch.b.Write(data); err != nil {
			failures++
			s.logger.Warn("writing progress failed", "channel", ch.name, "error", err)
		}
	}
	if channels == 0 || failures == channels {
		return fmt.Errorf("all %d storage channels failed", channels)
	}
	return nil
}

// SavePhoto stores the captured photo for a location key, overwriting
// any earlier capture. Best-effort: failure must not block discovery.
func (s *Store) SavePhoto(key string, blob []byte) error {
	if s.photoDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.photoDir, 0o755); err != nil {
		return fmt.Errorf("creating photo dir: %w", err)
	}
	if err := os.WriteFile(s.photoPath(key), blob, 0o644); err != nil {
		return fmt.Errorf("writing photo %q: %w", key, err)
	}
	return nil
}

// LoadPhoto returns the stored photo for key, or nil when none exists.
func (s *Store) LoadPhoto(key string) ([]byte, error) {
	if s.photoDir == "" {
		return nil, nil
	}
	blob, err := os.ReadFile(s.photoPath(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading photo %q: %w", key, err)
	}
	return blob, nil
}

func (s *Store) photoPath(key string) string {
	return filepath.Join(s.photoDir, key+".png")
}

// ClearAll wipes progress on both channels and deletes all photos.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range []Backend{s.primary, s.backup} {
		if b == nil {
			continue
		}
		if err := b.Delete(); err != nil {
			s.logger.Warn("clearing progress channel failed", "error", err)
		}
	}
	if s.photoDir != "" {
		entries, err := os.ReadDir(s.photoDir)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("listing photos: %w", err)
		}
		for _, e := range entries {
			if filepath.Ext(e.Name()) == ".png" {
				_ = os.Remove(filepath.Join(s.photoDir, e.Name()))
			}
		}
	}
	return nil
}
