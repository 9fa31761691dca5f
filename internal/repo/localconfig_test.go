// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"os"
	"path/filepath"
	"testing"
)

// writeConf drops a descriptor into the config's mods.d directory.
func writeConf(t *testing.T, config *LocalConfig, filename, content string) {
	t.Helper()
	if err := config.EnsureDirectories(); err != nil {
		t.Fatalf("ensuring directories: %v", err)
	}
	path := filepath.Join(config.ModsDir(), filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", filename, err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	t.Parallel()

	config := NewLocalConfig(filepath.Join(t.TempDir(), "sword"))
	if err := config.EnsureDirectories(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, dir := range []string{config.SwordDir, config.ModsDir(), config.ModulesDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s: %v", dir, err)
		}
	}

	// Idempotent on an existing tree.
	if err := config.EnsureDirectories(); err != nil {
		t.Errorf("second call failed: %v", err)
	}
}

func TestLoadLocalConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := LoadLocalConfig(dir); err != nil {
		t.Errorf("unexpected error for existing directory: %v", err)
	}

	if _, err := LoadLocalConfig(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}

	file := filepath.Join(dir, "file")
	os.WriteFile(file, []byte("x"), 0o644)
	if _, err := LoadLocalConfig(file); err == nil {
		t.Error("expected error for non-directory path")
	}
}

func TestListInstalledModules(t *testing.T) {
	t.Parallel()

	config := NewLocalConfig(t.TempDir())
	writeConf(t, config, "kjv.conf", "[KJV]\nModDrv=zText\nVersion=3.1\n")
	writeConf(t, config, "web.conf", "[WEB]\nModDrv=zText\nVersion=2.1\n")
	writeConf(t, config, "broken.conf", "no header\n")
	writeConf(t, config, "install.conf", "[General]\nFTPSource=ftp.crosswire.org|/pub/sword/raw|CrossWire\n")
	writeConf(t, config, "notes.txt", "not a conf\n")

	modules, err := config.ListInstalledModules()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// broken.conf is skipped, install.conf and notes.txt are excluded.
	if len(modules) != 2 {
		t.Fatalf("got %d modules, want 2: %v", len(modules), modules)
	}
	for _, m := range modules {
		if m.ConfPath == "" {
			t.Errorf("module %s missing ConfPath", m.ID)
		}
	}
}

func TestListInstalledModules_MissingModsDir(t *testing.T) {
	t.Parallel()

	config := NewLocalConfig(filepath.Join(t.TempDir(), "never-created"))
	modules, err := config.ListInstalledModules()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(modules) != 0 {
		t.Errorf("got %v, want empty", modules)
	}
}

func TestGetInstalledModule_CaseInsensitive(t *testing.T) {
	t.Parallel()

	config := NewLocalConfig(t.TempDir())
	writeConf(t, config, "kjv.conf", "[KJV]\nModDrv=zText\n")

	for _, id := range []string{"KJV", "kjv", "Kjv"} {
		module, found := config.GetInstalledModule(id)
		if !found {
			t.Errorf("lookup %q missed", id)
			continue
		}
		// The stored ID keeps its declared casing.
		if module.ID != "KJV" {
			t.Errorf("lookup %q returned ID %q, want KJV", id, module.ID)
		}
	}

	if _, found := config.GetInstalledModule("ESV"); found {
		t.Error("expected miss for uninstalled module")
	}
	if !config.IsModuleInstalled("kjv") {
		t.Error("IsModuleInstalled(kjv) = false, want true")
	}
}

func TestGetModuleDataPath_Normalization(t *testing.T) {
	t.Parallel()

	config := NewLocalConfig("/sword")

	want := filepath.Join("/sword", "modules", "texts", "ztext", "kjv")
	for _, in := range []string{
		"./modules/texts/ztext/kjv/",
		"modules/texts/ztext/kjv/",
		"./modules/texts/ztext/kjv",
		"modules/texts/ztext/kjv",
	} {
		if got := config.GetModuleDataPath(in); got != want {
			t.Errorf("GetModuleDataPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetModuleActualSize(t *testing.T) {
	t.Parallel()

	config := NewLocalConfig(t.TempDir())
	dataDir := filepath.Join(config.SwordDir, "modules", "texts", "ztext", "kjv")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("creating data dir: %v", err)
	}
	os.WriteFile(filepath.Join(dataDir, "ot.bzs"), make([]byte, 100), 0o644)
	os.WriteFile(filepath.Join(dataDir, "nt.bzs"), make([]byte, 50), 0o644)

	size, err := config.GetModuleActualSize("./modules/texts/ztext/kjv/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != 150 {
		t.Errorf("size = %d, want 150", size)
	}
}
