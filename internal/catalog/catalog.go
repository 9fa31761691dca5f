// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"swordctl/internal/repo"

	"github.com/pelletier/go-toml/v2"
)

type (
	// Catalog is the cached module index of one source, persisted as TOML so
	// listing and searching work without re-downloading the index.
	Catalog struct {
		// SourceName is the source this catalog was fetched from.
		SourceName string `toml:"source_name"`

		// SavedAt is when the index was fetched.
		SavedAt time.Time `toml:"saved_at"`

		// Modules is the source's module list as of SavedAt.
		Modules []repo.ModuleInfo `toml:"modules"`
	}

	// Store reads and writes per-source catalog files under a cache directory.
	Store struct {
		dir string
	}
)

// NewStore creates a store rooted at dir. The directory is created lazily on
// first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the platform cache directory for catalogs
// (e.g. ~/.cache/swordctl/catalogs on Linux).
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get cache directory: %w", err)
	}
	return filepath.Join(base, "swordctl", "catalogs"), nil
}

// Save persists a source's module list. The write is atomic (temp file +
// rename) so a crash mid-write never leaves a truncated catalog behind.
func (s *Store) Save(sourceName string, modules []repo.ModuleInfo) error {
	if sourceName == "" {
		return fmt.Errorf("source name cannot be empty")
	}

	cat := Catalog{
		SourceName: sourceName,
		SavedAt:    time.Now().UTC(),
		Modules:    modules,
	}

	data, err := toml.Marshal(cat)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	path := s.path(sourceName)

	// Write atomically using temp file + rename
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Best-effort cleanup of temp file
		return fmt.Errorf("failed to rename catalog: %w", err)
	}

	return nil
}

// Load reads a source's cached catalog. A missing file is not an error; it
// yields (nil, nil) so callers can fall back to a refresh.
func (s *Store) Load(sourceName string) (*Catalog, error) {
	data, err := os.ReadFile(s.path(sourceName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var cat Catalog
	if err := toml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &cat, nil
}

// Remove deletes a source's cached catalog. Removing a catalog that does not
// exist is not an error.
func (s *Store) Remove(sourceName string) error {
	err := os.Remove(s.path(sourceName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove catalog: %w", err)
	}
	return nil
}

// List returns the source names with a cached catalog.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read catalog directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		cat, err := s.Load(strings.TrimSuffix(entry.Name(), ".toml"))
		if err != nil || cat == nil {
			continue
		}
		names = append(names, cat.SourceName)
	}
	return names, nil
}

// Age returns how long ago the catalog was saved.
func (c *Catalog) Age() time.Duration {
	return time.Since(c.SavedAt)
}

// path maps a source name to its catalog file. Source names may contain
// spaces and dots ("eBible.org"), so the filename is a sanitized lower-case
// form of the name.
func (s *Store) path(sourceName string) string {
	return filepath.Join(s.dir, sanitizeName(sourceName)+".toml")
}

func sanitizeName(name string) string {
	name = strings.ToLower(name)
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
