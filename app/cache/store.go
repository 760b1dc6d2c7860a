package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists calendar artifacts as flat .ics files: per-URL artifacts
// keyed by a sha256 digest of the source URL, per-configuration artifacts
// keyed by the configuration's own name. Freshness is implicit from the
// scheduler cadence; no metadata sidecar is kept.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// ReadURL returns the cached artifact for a source URL. A missing artifact
// is not an error; the second return value reports presence.
func (s *Store) ReadURL(url string) ([]byte, bool, error) {
	return s.read(s.urlPath(url))
}

func (s *Store) WriteURL(url string, data []byte) error {
	return s.write(s.urlPath(url), data)
}

// ReadConfig returns the precomputed artifact for a configuration name.
func (s *Store) ReadConfig(name string) ([]byte, bool, error) {
	return s.read(s.configPath(name))
}

func (s *Store) WriteConfig(name string, data []byte) error {
	return s.write(s.configPath(name), data)
}

func (s *Store) urlPath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".ics")
}

func (s *Store) configPath(name string) string {
	// filepath.Base keeps artifact names inside the cache directory.
	return filepath.Join(s.dir, filepath.Base(name)+".ics")
}

func (s *Store) read(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	return data, true, nil
}

// write replaces an artifact atomically: the data goes to a temp file in
// the same directory, then a rename swaps it into place so concurrent
// readers never observe a half-written file.
func (s *Store) write(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close artifact: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace artifact %s: %w", path, err)
	}

	return nil
}
