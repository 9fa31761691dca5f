// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testMirror serves a minimal SWORD repository over HTTP: a module index at
// /sword/mods.d.tar.gz and zip packages at /sword/zip/<ID>.zip.
type testMirror struct {
	source   Source
	server   *httptest.Server
	packages map[string][]byte // by upper-case module ID
	index    []byte
}

func newTestMirror(t *testing.T, modules map[string]ModuleInfo) *testMirror {
	t.Helper()

	m := &testMirror{packages: make(map[string][]byte)}

	confs := make(map[string]string, len(modules))
	for id, module := range modules {
		confs["mods.d/"+strings.ToLower(id)+".conf"] = GenerateConf(module)

		m.packages[strings.ToUpper(id)] = buildZip(t, map[string]string{
			"mods.d/" + strings.ToLower(id) + ".conf":            GenerateConf(module),
			strings.TrimPrefix(module.DataPath, "./") + "ot.bzs": "data-" + id,
		})
	}
	m.index = buildModsArchive(t, confs)

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/sword/mods.d.tar.gz":
			w.Write(m.index)
		case strings.HasPrefix(r.URL.Path, "/sword/zip/"):
			id := strings.TrimSuffix(filepath.Base(r.URL.Path), ".zip")
			pkg, ok := m.packages[strings.ToUpper(id)]
			if !ok {
				http.NotFound(w, r)
				return
			}
			w.Write(pkg)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(m.server.Close)

	u, err := url.Parse(m.server.URL)
	if err != nil {
		t.Fatalf("parsing test server URL: %v", err)
	}
	m.source = Source{Name: "Test Mirror", Type: SourceTypeHTTP, Host: u.Host, Directory: "/sword"}
	return m
}

func testModule(id string) ModuleInfo {
	lower := strings.ToLower(id)
	return ModuleInfo{
		ID:          id,
		DataPath:    "./modules/texts/ztext/" + lower + "/",
		Driver:      "zText",
		Language:    "en",
		Description: id + " test text",
		Version:     "1.0",
	}
}

func newTestInstaller(t *testing.T) (*Installer, *LocalConfig) {
	t.Helper()

	config := NewLocalConfig(t.TempDir())
	if err := config.EnsureDirectories(); err != nil {
		t.Fatalf("ensuring directories: %v", err)
	}
	client := newTestClient(t, ClientOptions{MaxRetries: 1})
	return NewInstaller(config, client), config
}

func TestInstall_EndToEnd(t *testing.T) {
	t.Parallel()

	mirror := newTestMirror(t, map[string]ModuleInfo{"KJV": testModule("KJV")})
	installer, config := newTestInstaller(t)

	// Refresh sees the index.
	available, err := installer.RefreshSource(context.Background(), mirror.source)
	if err != nil {
		t.Fatalf("refreshing source: %v", err)
	}
	if len(available) != 1 || available[0].ID != "KJV" {
		t.Fatalf("available = %v, want [KJV]", available)
	}

	// Install downloads, extracts, and the module shows up installed.
	var steps []int
	installer.OnProgress = func(step, total int, message string) {
		steps = append(steps, step)
	}
	if err := installer.Install(context.Background(), mirror.source, available[0]); err != nil {
		t.Fatalf("installing: %v", err)
	}
	if len(steps) != 3 {
		t.Errorf("progress steps = %v, want 3 callbacks", steps)
	}

	if !config.IsModuleInstalled("KJV") {
		t.Fatal("KJV not installed after Install")
	}
	dataFile := filepath.Join(config.SwordDir, "modules", "texts", "ztext", "kjv", "ot.bzs")
	if _, err := os.Stat(dataFile); err != nil {
		t.Errorf("expected extracted data file: %v", err)
	}
}

func TestInstall_PackageNotAvailable(t *testing.T) {
	t.Parallel()

	// The index lists the module but no package exists for it.
	mirror := newTestMirror(t, map[string]ModuleInfo{"Ghost": testModule("Ghost")})
	delete(mirror.packages, "GHOST")

	installer, config := newTestInstaller(t)

	err := installer.Install(context.Background(), mirror.source, testModule("Ghost"))
	if !errors.Is(err, ErrPackageNotAvailable) {
		t.Fatalf("expected ErrPackageNotAvailable, got %v", err)
	}
	if config.IsModuleInstalled("Ghost") {
		t.Error("module must not be installed after a failed download")
	}
}

func TestInstall_TransientFailureIsNotUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	source := Source{Name: "Flaky", Type: SourceTypeHTTP, Host: u.Host, Directory: "/sword"}

	installer, _ := newTestInstaller(t)
	installer.client = newTestClient(t, ClientOptions{MaxRetries: 0})

	err := installer.Install(context.Background(), source, testModule("KJV"))
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrPackageNotAvailable) {
		t.Errorf("a 500 must not classify as unavailable: %v", err)
	}
}

func TestInstallBatch(t *testing.T) {
	t.Parallel()

	modules := map[string]ModuleInfo{
		"KJV": testModule("KJV"),
		"WEB": testModule("WEB"),
		"ESV": testModule("ESV"),
	}
	mirror := newTestMirror(t, modules)
	delete(mirror.packages, "ESV") // listed but not downloadable

	installer, config := newTestInstaller(t)

	// Pre-install WEB so SkipInstalled has something to skip.
	if err := installer.Install(context.Background(), mirror.source, testModule("WEB")); err != nil {
		t.Fatalf("pre-installing WEB: %v", err)
	}

	var callbacks int
	results := installer.InstallBatch(context.Background(), mirror.source,
		[]ModuleInfo{testModule("KJV"), testModule("WEB"), testModule("ESV")},
		BatchInstallOptions{
			Workers:       2,
			SkipInstalled: true,
			OnResult:      func(InstallResult) { callbacks++ },
		})

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if callbacks != 3 {
		t.Errorf("OnResult called %d times, want 3", callbacks)
	}

	byID := make(map[string]InstallResult)
	for _, r := range results {
		byID[r.Module.ID] = r
	}
	if byID["KJV"].Status != StatusDone {
		t.Errorf("KJV status = %q, want done (%v)", byID["KJV"].Status, byID["KJV"].Error)
	}
	if byID["WEB"].Status != StatusSkipped {
		t.Errorf("WEB status = %q, want skipped", byID["WEB"].Status)
	}
	if byID["ESV"].Status != StatusUnavailable {
		t.Errorf("ESV status = %q, want unavailable (%v)", byID["ESV"].Status, byID["ESV"].Error)
	}

	if !config.IsModuleInstalled("KJV") {
		t.Error("KJV not installed after batch")
	}
	if config.IsModuleInstalled("ESV") {
		t.Error("ESV must not be installed")
	}
}

func TestInstallBatch_Cancellation(t *testing.T) {
	t.Parallel()

	mirror := newTestMirror(t, map[string]ModuleInfo{"KJV": testModule("KJV")})
	installer, _ := newTestInstaller(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := make([]ModuleInfo, 0, 10)
	for i := 0; i < 10; i++ {
		jobs = append(jobs, testModule("KJV"))
	}
	results := installer.InstallBatch(ctx, mirror.source, jobs, BatchInstallOptions{Workers: 2})

	// Workers poll cancellation between jobs, so a cancelled context must
	// leave most of the queue unprocessed.
	if len(results) == len(jobs) {
		t.Errorf("all %d jobs ran despite cancelled context", len(jobs))
	}
}

func TestUninstall(t *testing.T) {
	t.Parallel()

	mirror := newTestMirror(t, map[string]ModuleInfo{"KJV": testModule("KJV")})
	installer, config := newTestInstaller(t)

	if err := installer.Install(context.Background(), mirror.source, testModule("KJV")); err != nil {
		t.Fatalf("installing: %v", err)
	}
	if err := installer.Uninstall("KJV"); err != nil {
		t.Fatalf("uninstalling: %v", err)
	}

	if config.IsModuleInstalled("KJV") {
		t.Error("KJV still installed after Uninstall")
	}
	dataDir := filepath.Join(config.SwordDir, "modules", "texts", "ztext", "kjv")
	if _, err := os.Stat(dataDir); !os.IsNotExist(err) {
		t.Errorf("data directory still present: %v", err)
	}

	// Uninstalling again reports the module as not installed, with the
	// sentinel callers use to distinguish it from filesystem failures.
	err := installer.Uninstall("KJV")
	if err == nil {
		t.Error("expected error for double uninstall")
	}
	if !errors.Is(err, ErrModuleNotInstalled) {
		t.Errorf("double uninstall error = %v, want ErrModuleNotInstalled", err)
	}
}

func TestValidateModule_NotInstalledSentinel(t *testing.T) {
	t.Parallel()

	installer, _ := newTestInstaller(t)

	_, err := installer.ValidateModule("Ghost")
	if !errors.Is(err, ErrModuleNotInstalled) {
		t.Errorf("ValidateModule error = %v, want ErrModuleNotInstalled", err)
	}
}

func TestUninstall_MissingDataDirTolerated(t *testing.T) {
	t.Parallel()

	installer, config := newTestInstaller(t)
	writeConf(t, config, "orphan.conf", GenerateConf(testModule("Orphan")))

	if err := installer.Uninstall("Orphan"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.IsModuleInstalled("Orphan") {
		t.Error("descriptor not removed")
	}
}

func TestCheckUpdates(t *testing.T) {
	t.Parallel()

	remote := testModule("KJV")
	remote.Version = "3.1"
	mirror := newTestMirror(t, map[string]ModuleInfo{"KJV": remote, "WEB": testModule("WEB")})

	installer, config := newTestInstaller(t)

	installed := testModule("KJV")
	installed.Version = "3.0"
	writeConf(t, config, "kjv.conf", GenerateConf(installed))

	updates, err := installer.CheckUpdates(context.Background(), mirror.source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// WEB is not installed, so only KJV reports.
	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1: %v", len(updates), updates)
	}
	u := updates[0]
	if u.Module.ID != "KJV" || u.InstalledVersion != "3.0" || u.AvailableVersion != "3.1" {
		t.Errorf("update = %+v", u)
	}
	if !u.HasUpdate() {
		t.Error("HasUpdate() = false for differing versions")
	}
}

func TestCheckUpdates_NoChange(t *testing.T) {
	t.Parallel()

	mirror := newTestMirror(t, map[string]ModuleInfo{"KJV": testModule("KJV")})
	installer, config := newTestInstaller(t)
	writeConf(t, config, "kjv.conf", GenerateConf(testModule("KJV")))

	updates, err := installer.CheckUpdates(context.Background(), mirror.source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updates) != 0 {
		t.Errorf("got %v, want no updates for identical versions", updates)
	}
}

func TestInstallConf_RemoveConf(t *testing.T) {
	t.Parallel()

	installer, config := newTestInstaller(t)

	if err := installer.InstallConf("Bare", []byte(GenerateConf(testModule("Bare")))); err != nil {
		t.Fatalf("installing conf: %v", err)
	}
	if !config.IsModuleInstalled("Bare") {
		t.Fatal("bare descriptor not visible as installed")
	}

	if err := installer.RemoveConf("Bare"); err != nil {
		t.Fatalf("removing conf: %v", err)
	}
	if config.IsModuleInstalled("Bare") {
		t.Error("descriptor still present after RemoveConf")
	}
}

func TestValidateModule(t *testing.T) {
	t.Parallel()

	installer, config := newTestInstaller(t)

	module := testModule("KJV")
	writeConf(t, config, "kjv.conf", GenerateConf(module))

	// Data directory missing: invalid, not an error.
	ok, err := installer.ValidateModule("KJV")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("valid without data directory")
	}

	// Directory with the zText payload marker: valid.
	dataDir := config.GetModuleDataPath(module.DataPath)
	os.MkdirAll(dataDir, 0o755)
	os.WriteFile(filepath.Join(dataDir, "ot.bzs"), []byte("x"), 0o644)

	ok, err = installer.ValidateModule("KJV")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("invalid with ot.bzs present")
	}

	if _, err := installer.ValidateModule("Nope"); err == nil {
		t.Error("expected error for uninstalled module")
	}
}

func TestValidateModule_Dictionary(t *testing.T) {
	t.Parallel()

	installer, config := newTestInstaller(t)

	module := testModule("StrongsGreek")
	module.Driver = "RawLD4"
	module.DataPath = "./modules/lexdict/rawld/strongsgreek/dict"
	writeConf(t, config, "strongsgreek.conf", GenerateConf(module))

	dataDir := config.GetModuleDataPath(module.DataPath)
	os.MkdirAll(dataDir, 0o755)
	os.WriteFile(filepath.Join(dataDir, "entries.dat"), []byte("x"), 0o644)

	// RawLD is not zLD: any non-empty directory passes.
	ok, err := installer.ValidateModule("StrongsGreek")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("invalid with non-empty data directory")
	}

	// zLD needs the dict index files specifically.
	module.Driver = "zLD"
	writeConf(t, config, "strongsgreek.conf", GenerateConf(module))
	ok, err = installer.ValidateModule("StrongsGreek")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("zLD valid without dict.idx/dict.zdx")
	}

	os.WriteFile(filepath.Join(dataDir, "dict.zdx"), []byte("x"), 0o644)
	ok, _ = installer.ValidateModule("StrongsGreek")
	if !ok {
		t.Error("zLD invalid with dict.zdx present")
	}
}

func TestVerifyModule(t *testing.T) {
	t.Parallel()

	installer, config := newTestInstaller(t)

	module := testModule("KJV")
	module.InstallSize = 100
	writeConf(t, config, "kjv.conf", GenerateConf(module))

	dataDir := config.GetModuleDataPath(module.DataPath)
	os.MkdirAll(dataDir, 0o755)
	os.WriteFile(filepath.Join(dataDir, "ot.bzs"), make([]byte, 100), 0o644)

	v := installer.VerifyModule("KJV")
	if !v.Installed || !v.DataExists || !v.SizeMatch {
		t.Errorf("verification = %+v", v)
	}
	if !v.IsValid() {
		t.Error("IsValid() = false for a healthy module")
	}
	if v.ActualSize != 100 {
		t.Errorf("ActualSize = %d, want 100", v.ActualSize)
	}

	// Size mismatch flips SizeMatch and IsValid.
	os.WriteFile(filepath.Join(dataDir, "extra"), make([]byte, 7), 0o644)
	v = installer.VerifyModule("KJV")
	if v.SizeMatch {
		t.Error("SizeMatch = true after adding bytes")
	}
	if v.IsValid() {
		t.Error("IsValid() = true with size mismatch")
	}
}

func TestVerifyModule_NoDeclaredSize(t *testing.T) {
	t.Parallel()

	installer, config := newTestInstaller(t)

	module := testModule("KJV") // InstallSize zero
	writeConf(t, config, "kjv.conf", GenerateConf(module))

	dataDir := config.GetModuleDataPath(module.DataPath)
	os.MkdirAll(dataDir, 0o755)
	os.WriteFile(filepath.Join(dataDir, "ot.bzs"), []byte("x"), 0o644)

	v := installer.VerifyModule("KJV")
	if !v.IsValid() {
		t.Errorf("IsValid() = false with no declared size: %+v", v)
	}
}

func TestVerifyModule_NotInstalled(t *testing.T) {
	t.Parallel()

	installer, _ := newTestInstaller(t)
	v := installer.VerifyModule("Nope")
	if v.Installed || v.IsValid() {
		t.Errorf("verification = %+v, want not installed", v)
	}
	if v.Error == "" {
		t.Error("expected an error message")
	}
}

func TestVerifyAllModules(t *testing.T) {
	t.Parallel()

	mirror := newTestMirror(t, map[string]ModuleInfo{
		"KJV": testModule("KJV"),
		"WEB": testModule("WEB"),
	})
	installer, _ := newTestInstaller(t)

	for _, id := range []string{"KJV", "WEB"} {
		if err := installer.Install(context.Background(), mirror.source, testModule(id)); err != nil {
			t.Fatalf("installing %s: %v", id, err)
		}
	}

	results, err := installer.VerifyAllModules()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, v := range results {
		if !v.IsValid() {
			t.Errorf("module %s failed verification: %+v", v.ModuleID, v)
		}
	}
}

func TestInstall_ProgressTiming(t *testing.T) {
	t.Parallel()

	mirror := newTestMirror(t, map[string]ModuleInfo{"KJV": testModule("KJV")})
	installer, _ := newTestInstaller(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var messages []string
	installer.OnProgress = func(step, total int, message string) {
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		messages = append(messages, message)
	}
	if err := installer.Install(ctx, mirror.source, testModule("KJV")); err != nil {
		t.Fatalf("installing: %v", err)
	}
	if len(messages) != 3 || !strings.Contains(messages[0], "Downloading") {
		t.Errorf("messages = %v", messages)
	}
}
