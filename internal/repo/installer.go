// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Install status values reported per module by InstallBatch.
const (
	StatusDone        = "done"        // Downloaded and extracted
	StatusSkipped     = "skipped"     // Already installed and skipping was requested
	StatusUnavailable = "unavailable" // Every package URL was confirmed absent
	StatusFailed      = "failed"      // Any other error
)

// InstallerProgressFunc reports coarse step progress for single installs.
type InstallerProgressFunc func(step, total int, message string)

// ModuleUpdate reports a version difference between an installed module and
// the same module in a source's index.
type ModuleUpdate struct {
	Module           ModuleInfo // Available module info
	InstalledVersion string
	AvailableVersion string
}

// HasUpdate reports whether the version strings differ. This is exact string
// inequality, not a semantic-version comparison: SWORD version strings are
// not reliably semver.
func (u *ModuleUpdate) HasUpdate() bool {
	return u.InstalledVersion != u.AvailableVersion
}

// InstallResult is the per-module outcome of a batch installation.
type InstallResult struct {
	Module ModuleInfo
	Source Source
	Status string // One of the Status* constants
	Error  error  // Set for unavailable and failed
}

// BatchInstallOptions configures InstallBatch.
type BatchInstallOptions struct {
	Workers       int                 // Parallel workers; defaults to 4
	SkipInstalled bool                // Skip modules already installed
	OnResult      func(InstallResult) // Called synchronously per completion
}

// Installer orchestrates module installation, removal, update checks and
// verification against one LocalConfig.
//
// Nothing mutually excludes concurrent installs or uninstalls of the same
// module ID; two overlapping operations on one module can race on its data
// directory. Callers own that hazard.
type Installer struct {
	config     *LocalConfig
	client     *Client
	OnProgress InstallerProgressFunc
	Logger     *log.Logger // Optional debug logger; nil means silent
}

// NewInstaller creates an installer over the given local tree and client.
func NewInstaller(config *LocalConfig, client *Client) *Installer {
	return &Installer{config: config, client: client}
}

// Install downloads and installs one module. The candidate package URLs from
// source.ModulePackageURLs are tried in order; if none succeeds and every
// failure was a confirmed not-found, the distinguished ErrPackageNotAvailable
// is returned, otherwise the last transient error surfaces. On success the
// package is extracted over the SWORD directory with zip-slip protection.
func (i *Installer) Install(ctx context.Context, source Source, module ModuleInfo) error {
	i.progress(1, 3, fmt.Sprintf("Downloading %s...", module.ID))

	packageURLs := source.ModulePackageURLs(module.ID)

	var data []byte
	var lastErr error
	allNotFound := true
	for _, packageURL := range packageURLs {
		var err error
		data, err = i.client.Download(ctx, packageURL)
		if err == nil {
			break
		}
		i.logf("package candidate failed", "module", module.ID, "url", packageURL, "err", err)
		lastErr = err
		if !IsNotFoundError(err) {
			allNotFound = false
		}
	}

	if data == nil {
		if allNotFound {
			return fmt.Errorf("%w: %s (tried %d URLs)", ErrPackageNotAvailable, module.ID, len(packageURLs))
		}
		return fmt.Errorf("downloading module package: %w", lastErr)
	}

	i.progress(2, 3, fmt.Sprintf("Installing %s...", module.ID))

	if err := ExtractZipArchive(data, i.config.SwordDir); err != nil {
		return fmt.Errorf("extracting module package: %w", err)
	}

	i.progress(3, 3, fmt.Sprintf("Installed %s successfully", module.ID))
	return nil
}

// InstallBatch installs modules in parallel with a fixed worker pool. Each
// worker owns a private Client and Installer, so no connection state is
// shared across goroutines. Cancellation is polled between jobs; a job in
// flight is not preempted. The returned slice has one entry per input module,
// in completion order, each tagged with exactly one status.
func (i *Installer) InstallBatch(ctx context.Context, source Source, modules []ModuleInfo, opts BatchInstallOptions) []InstallResult {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	// Snapshot the installed set once, up front. Read-only afterwards.
	var installedSet map[string]bool
	if opts.SkipInstalled {
		installedSet = make(map[string]bool)
		if installed, err := i.config.ListInstalledModules(); err == nil {
			for _, m := range installed {
				installedSet[strings.ToUpper(m.ID)] = true
			}
		}
	}

	jobs := make(chan ModuleInfo, len(modules))
	results := make([]InstallResult, 0, len(modules))
	var resultsMu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			workerClient, err := NewClient(ClientOptions{
				Timeout: i.client.opts.Timeout,
				Logger:  i.Logger,
			})
			if err != nil {
				return
			}
			workerInstaller := &Installer{
				config: i.config,
				client: workerClient,
				Logger: i.Logger,
			}

			for module := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				result := InstallResult{Module: module, Source: source}

				if opts.SkipInstalled && installedSet[strings.ToUpper(module.ID)] {
					result.Status = StatusSkipped
				} else {
					err := workerInstaller.Install(ctx, source, module)
					switch {
					case err == nil:
						result.Status = StatusDone
					case errors.Is(err, ErrPackageNotAvailable):
						result.Status = StatusUnavailable
						result.Error = err
					default:
						result.Status = StatusFailed
						result.Error = err
					}
				}

				resultsMu.Lock()
				results = append(results, result)
				resultsMu.Unlock()

				if opts.OnResult != nil {
					opts.OnResult(result)
				}
			}
		}()
	}

	for _, module := range modules {
		jobs <- module
	}
	close(jobs)

	wg.Wait()
	return results
}

// Uninstall removes an installed module: its data directory (tolerating one
// already gone) and its descriptor, located by the stored ConfPath or by the
// conventional lower-cased filename.
func (i *Installer) Uninstall(moduleID string) error {
	module, found := i.config.GetInstalledModule(moduleID)
	if !found {
		return fmt.Errorf("%w: %s", ErrModuleNotInstalled, moduleID)
	}

	dataPath := i.config.GetModuleDataPath(module.DataPath)
	if err := os.RemoveAll(dataPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing data directory: %w", err)
	}

	if module.ConfPath != "" {
		if err := os.Remove(module.ConfPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing conf file: %w", err)
		}
	} else {
		confPath := filepath.Join(i.config.ModsDir(), strings.ToLower(moduleID)+".conf")
		os.Remove(confPath)
	}

	return nil
}

// RefreshSource downloads and parses the source's module index.
func (i *Installer) RefreshSource(ctx context.Context, source Source) ([]ModuleInfo, error) {
	data, err := i.client.Download(ctx, source.ModsIndexURL())
	if err != nil {
		return nil, fmt.Errorf("downloading module index: %w", err)
	}

	modules, err := ParseModsArchive(data)
	if err != nil {
		return nil, fmt.Errorf("parsing module index: %w", err)
	}
	return modules, nil
}

// ListAvailable returns the modules a source offers.
func (i *Installer) ListAvailable(ctx context.Context, source Source) ([]ModuleInfo, error) {
	return i.RefreshSource(ctx, source)
}

// CheckUpdates cross-references the source's index against the installed set
// by ID, reporting every installed module whose available version string
// differs from the installed one.
func (i *Installer) CheckUpdates(ctx context.Context, source Source) ([]ModuleUpdate, error) {
	available, err := i.RefreshSource(ctx, source)
	if err != nil {
		return nil, err
	}

	installed, err := i.config.ListInstalledModules()
	if err != nil {
		return nil, err
	}

	installedMap := make(map[string]ModuleInfo, len(installed))
	for _, m := range installed {
		installedMap[m.ID] = m
	}

	var updates []ModuleUpdate
	for _, avail := range available {
		inst, ok := installedMap[avail.ID]
		if !ok {
			continue
		}
		if inst.Version != avail.Version {
			updates = append(updates, ModuleUpdate{
				Module:           avail,
				InstalledVersion: inst.Version,
				AvailableVersion: avail.Version,
			})
		}
	}

	return updates, nil
}

// InstallConf writes a bare descriptor without module data.
func (i *Installer) InstallConf(moduleID string, content []byte) error {
	confPath := filepath.Join(i.config.ModsDir(), strings.ToLower(moduleID)+".conf")
	return os.WriteFile(confPath, content, 0o644)
}

// RemoveConf removes a bare descriptor.
func (i *Installer) RemoveConf(moduleID string) error {
	confPath := filepath.Join(i.config.ModsDir(), strings.ToLower(moduleID)+".conf")
	return os.Remove(confPath)
}

// ValidateModule is the cheap driver-aware sanity check: zText drivers need
// ot.bzs or nt.bzs, zLD drivers need dict.idx or dict.zdx, anything else
// just needs a non-empty data directory.
func (i *Installer) ValidateModule(moduleID string) (bool, error) {
	module, found := i.config.GetInstalledModule(moduleID)
	if !found {
		return false, fmt.Errorf("%w: %s", ErrModuleNotInstalled, moduleID)
	}

	dataPath := i.config.GetModuleDataPath(module.DataPath)
	info, err := os.Stat(dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if !info.IsDir() {
		return false, nil
	}

	driver := strings.ToLower(module.Driver)
	switch {
	case strings.HasPrefix(driver, "ztext"):
		return fileExists(filepath.Join(dataPath, "ot.bzs")) ||
			fileExists(filepath.Join(dataPath, "nt.bzs")), nil
	case strings.HasPrefix(driver, "zld"):
		return fileExists(filepath.Join(dataPath, "dict.idx")) ||
			fileExists(filepath.Join(dataPath, "dict.zdx")), nil
	default:
		entries, err := os.ReadDir(dataPath)
		if err != nil {
			return false, err
		}
		return len(entries) > 0, nil
	}
}

// ModuleVerification is the detailed result of VerifyModule. Transient;
// never persisted.
type ModuleVerification struct {
	ModuleID     string
	Installed    bool   // Conf file exists
	DataExists   bool   // Data directory exists with files
	SizeMatch    bool   // Actual size equals declared InstallSize
	ExpectedSize int64  // Declared InstallSize (0 = unknown)
	ActualSize   int64  // Bytes on disk
	Error        string // Any error encountered
}

// IsValid reports whether the module passes verification: descriptor present,
// data present, and size matching unless no size was declared.
func (v *ModuleVerification) IsValid() bool {
	return v.Installed && v.DataExists && (v.ExpectedSize == 0 || v.SizeMatch)
}

// VerifyModule performs the comprehensive installed-state check: descriptor
// exists, data directory is non-empty, and the on-disk size matches the
// declared InstallSize when one was declared.
func (i *Installer) VerifyModule(moduleID string) ModuleVerification {
	result := ModuleVerification{ModuleID: moduleID}

	module, found := i.config.GetInstalledModule(moduleID)
	if !found {
		i.logf("verify: module not found", "module", moduleID)
		result.Error = "module not installed"
		return result
	}
	result.Installed = true
	result.ExpectedSize = module.InstallSize

	dataPath := i.config.GetModuleDataPath(module.DataPath)
	entries, err := os.ReadDir(dataPath)
	if err != nil {
		result.Error = fmt.Sprintf("cannot read data directory: %v", err)
		return result
	}
	result.DataExists = len(entries) > 0

	actualSize, err := i.config.GetModuleActualSize(module.DataPath)
	if err != nil {
		result.Error = fmt.Sprintf("cannot calculate size: %v", err)
		return result
	}
	result.ActualSize = actualSize

	if module.InstallSize > 0 {
		result.SizeMatch = actualSize == module.InstallSize
		i.logf("verify: size check", "module", moduleID, "expected", module.InstallSize, "actual", actualSize, "match", result.SizeMatch)
	} else {
		result.SizeMatch = true
	}

	return result
}

// VerifyAllModules verifies every installed module.
func (i *Installer) VerifyAllModules() ([]ModuleVerification, error) {
	modules, err := i.config.ListInstalledModules()
	if err != nil {
		return nil, err
	}

	var results []ModuleVerification
	for _, m := range modules {
		results = append(results, i.VerifyModule(m.ID))
	}
	return results, nil
}

func (i *Installer) progress(step, total int, message string) {
	if i.OnProgress != nil {
		i.OnProgress(step, total, message)
	}
}

func (i *Installer) logf(msg string, kv ...any) {
	if i.Logger != nil {
		i.Logger.Debug(msg, kv...)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
