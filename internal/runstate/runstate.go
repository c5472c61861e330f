// Package runstate keeps per-target state on disk so that separate wsdlsync
// processes working on one workspace see each other's generator runs and
// params document writes.
package runstate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"wsdlsync/internal/fingerprint"
	"wsdlsync/pkg/logging"
)

const subsystem = "RunState"

const (
	lockSuffix    = ".lock"
	writtenSuffix = ".written"
)

// DefaultDir returns the per-user state directory.
func DefaultDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "wsdlsync", "run")
	}
	return filepath.Join(os.TempDir(), "wsdlsync", "run")
}

// Store holds run locks and write markers for targets, one file each,
// named after a digest of the target key.
type Store struct {
	dir string
}

// New creates a Store rooted at dir. The directory is created on first use.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the state directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key, suffix string) string {
	return filepath.Join(s.dir, string(fingerprint.Compute([]byte(key))[:16])+suffix)
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", s.dir, err)
	}
	return nil
}

// TryLock takes the run lock of key without blocking. ok is false when
// another holder, in this or another process, has it. The lock is released
// by unlock or when the holding process exits.
func (s *Store) TryLock(key string) (unlock func(), ok bool, err error) {
	if err := s.ensureDir(); err != nil {
		return nil, false, err
	}

	lock := flock.New(s.path(key, lockSuffix))
	ok, err = lock.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("failed to lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			logging.Warn(subsystem, "Failed to release run lock for %s: %v", key, err)
		}
	}, true, nil
}

// MarkWritten records that the params document key was written at at.
func (s *Store) MarkWritten(key string, at time.Time) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	path := s.path(key, writtenSuffix)
	if err := os.WriteFile(path, []byte(at.UTC().Format(time.RFC3339Nano)), 0644); err != nil {
		return fmt.Errorf("failed to write marker %s: %w", path, err)
	}
	return nil
}

// WrittenWithin reports whether key was marked written less than window
// before now. Expired or unreadable markers are removed.
func (s *Store) WrittenWithin(key string, window time.Duration, now time.Time) bool {
	if window <= 0 {
		return false
	}

	path := s.path(key, writtenSuffix)
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	at, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(string(data)))
	if err == nil && now.Sub(at) < window {
		return true
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Debug(subsystem, "Could not remove marker %s: %v", path, err)
	}
	return false
}
