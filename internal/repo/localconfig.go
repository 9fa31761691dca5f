// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// installConfName is the reserved file in mods.d that holds the source list
// rather than a module descriptor.
const installConfName = "install.conf"

// LocalConfig is the on-disk installed-module database rooted at a SWORD
// directory (~/.sword by default). The installed set is never cached: it is
// always the live listing of mods.d/*.conf minus install.conf. A module is
// installed iff a parseable .conf with its section exists there.
type LocalConfig struct {
	SwordDir string
}

// DefaultSwordDir returns ~/.sword, falling back to a relative .sword when
// the home directory is unknown.
func DefaultSwordDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sword"
	}
	return filepath.Join(home, ".sword")
}

// NewLocalConfig wraps a SWORD directory without touching the filesystem.
func NewLocalConfig(swordDir string) *LocalConfig {
	return &LocalConfig{SwordDir: swordDir}
}

// LoadLocalConfig wraps an existing SWORD directory, failing if the path is
// missing or not a directory.
func LoadLocalConfig(swordDir string) (*LocalConfig, error) {
	info, err := os.Stat(swordDir)
	if err != nil {
		return nil, fmt.Errorf("sword directory not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", swordDir)
	}
	return &LocalConfig{SwordDir: swordDir}, nil
}

// ModsDir returns the descriptor directory (mods.d).
func (c *LocalConfig) ModsDir() string {
	return filepath.Join(c.SwordDir, "mods.d")
}

// ModulesDir returns the payload root (modules).
func (c *LocalConfig) ModulesDir() string {
	return filepath.Join(c.SwordDir, "modules")
}

// EnsureDirectories idempotently creates the SWORD directory tree.
func (c *LocalConfig) EnsureDirectories() error {
	for _, dir := range []string{c.SwordDir, c.ModsDir(), c.ModulesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// ListInstalledModules re-derives the installed set from mods.d: every .conf
// except install.conf, with parse failures silently skipped so one bad file
// never breaks the listing. ConfPath is stamped on each result.
func (c *LocalConfig) ListInstalledModules() ([]ModuleInfo, error) {
	entries, err := os.ReadDir(c.ModsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading mods.d: %w", err)
	}

	var modules []ModuleInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".conf") {
			continue
		}
		if entry.Name() == installConfName {
			continue
		}

		confPath := filepath.Join(c.ModsDir(), entry.Name())
		data, err := os.ReadFile(confPath)
		if err != nil {
			continue
		}

		module, err := ParseModuleConf(data, entry.Name())
		if err != nil {
			continue
		}

		module.ConfPath = confPath
		modules = append(modules, module)
	}

	return modules, nil
}

// GetInstalledModule looks up one installed module by ID, case-insensitively.
func (c *LocalConfig) GetInstalledModule(moduleID string) (ModuleInfo, bool) {
	modules, err := c.ListInstalledModules()
	if err != nil {
		return ModuleInfo{}, false
	}

	for _, m := range modules {
		if strings.EqualFold(m.ID, moduleID) {
			return m, true
		}
	}
	return ModuleInfo{}, false
}

// IsModuleInstalled reports whether a parseable descriptor for moduleID
// exists.
func (c *LocalConfig) IsModuleInstalled(moduleID string) bool {
	_, found := c.GetInstalledModule(moduleID)
	return found
}

// GetModuleDataPath resolves a descriptor DataPath against the SWORD
// directory. Descriptors are inconsistent about the leading "./" and
// trailing "/", so both are normalized here; every DataPath resolution must
// go through this method.
func (c *LocalConfig) GetModuleDataPath(dataPath string) string {
	dataPath = strings.TrimPrefix(dataPath, "./")
	dataPath = strings.TrimSuffix(dataPath, "/")
	return filepath.Join(c.SwordDir, dataPath)
}

// SaveInstallConf persists the known-source list to mods.d/install.conf.
func (c *LocalConfig) SaveInstallConf(sources []Source) error {
	var sb strings.Builder
	sb.WriteString("[General]\n\n")

	for _, source := range sources {
		fmt.Fprintf(&sb, "[%s]\n", source.Name)
		switch source.Type {
		case SourceTypeFTP:
			fmt.Fprintf(&sb, "FTPSource=%s|%s|%s\n", source.Host, source.Directory, source.Name)
		case SourceTypeHTTP:
			fmt.Fprintf(&sb, "HTTPSource=%s|%s|%s\n", source.Host, source.Directory, source.Name)
		case SourceTypeHTTPS:
			fmt.Fprintf(&sb, "HTTPSSource=%s|%s|%s\n", source.Host, source.Directory, source.Name)
		}
		sb.WriteString("\n")
	}

	confPath := filepath.Join(c.ModsDir(), installConfName)
	return os.WriteFile(confPath, []byte(sb.String()), 0o644)
}

// LoadInstallConf reads the known-source list from mods.d/install.conf. A
// missing file is not an error; it yields an empty list.
func (c *LocalConfig) LoadInstallConf() ([]Source, error) {
	confPath := filepath.Join(c.ModsDir(), installConfName)

	data, err := os.ReadFile(confPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading install.conf: %w", err)
	}

	return ParseSourcesConf(data)
}

// GetModuleActualSize walks a module's data directory summing regular file
// sizes, for verification against the declared InstallSize.
func (c *LocalConfig) GetModuleActualSize(dataPath string) (int64, error) {
	fullPath := c.GetModuleDataPath(dataPath)

	var totalSize int64
	err := filepath.WalkDir(fullPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		totalSize += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return totalSize, nil
}
