// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"strings"
	"testing"
)

func TestSourceValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		source  Source
		wantErr bool
	}{
		{
			name:   "valid ftp source",
			source: Source{Name: "CrossWire", Type: SourceTypeFTP, Host: "ftp.crosswire.org", Directory: "/pub/sword/raw"},
		},
		{
			name:   "valid https source",
			source: Source{Name: "Local", Type: SourceTypeHTTPS, Host: "example.com", Directory: "/sword"},
		},
		{
			name:    "missing name",
			source:  Source{Type: SourceTypeFTP, Host: "ftp.crosswire.org", Directory: "/pub/sword/raw"},
			wantErr: true,
		},
		{
			name:    "missing host",
			source:  Source{Name: "CrossWire", Type: SourceTypeFTP, Directory: "/pub/sword/raw"},
			wantErr: true,
		},
		{
			name:    "missing directory",
			source:  Source{Name: "CrossWire", Type: SourceTypeFTP, Host: "ftp.crosswire.org"},
			wantErr: true,
		},
		{
			name:    "invalid type",
			source:  Source{Name: "CrossWire", Type: "GOPHER", Host: "ftp.crosswire.org", Directory: "/pub/sword/raw"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.source.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestModsIndexURL(t *testing.T) {
	t.Parallel()

	source := Source{Name: "CrossWire", Type: SourceTypeFTP, Host: "ftp.crosswire.org", Directory: "/pub/sword/raw"}
	got := source.ModsIndexURL()
	want := "ftp://ftp.crosswire.org/pub/sword/raw/mods.d.tar.gz"
	if got != want {
		t.Errorf("ModsIndexURL() = %q, want %q", got, want)
	}

	// A trailing slash in the directory must not double up.
	source.Directory = "/pub/sword/raw/"
	if got := source.ModsIndexURL(); got != want {
		t.Errorf("ModsIndexURL() with trailing slash = %q, want %q", got, want)
	}
}

func TestModuleDataURL_StripsDotSlash(t *testing.T) {
	t.Parallel()

	source := Source{Name: "Local", Type: SourceTypeHTTPS, Host: "example.com", Directory: "/sword"}
	got := source.ModuleDataURL("./modules/texts/ztext/kjv/")
	want := "https://example.com/sword/modules/texts/ztext/kjv/"
	if got != want {
		t.Errorf("ModuleDataURL() = %q, want %q", got, want)
	}
}

func TestModulePackageURLs_RawDirectory(t *testing.T) {
	t.Parallel()

	source := Source{Name: "CrossWire", Type: SourceTypeFTP, Host: "ftp.crosswire.org", Directory: "/pub/sword/raw"}
	urls := source.ModulePackageURLs("KJV")

	want := []string{
		"ftp://ftp.crosswire.org/pub/sword/packages/rawzip/KJV.zip",
		"ftp://ftp.crosswire.org/pub/sword/packages/KJV.zip",
		"ftp://ftp.crosswire.org/pub/sword/rawzip/KJV.zip",
	}
	if len(urls) != len(want) {
		t.Fatalf("got %d URLs, want %d: %v", len(urls), len(want), urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestModulePackageURLs_VariantRawSuffix(t *testing.T) {
	t.Parallel()

	// "betaraw" ends in "raw": the parent keeps the "beta" prefix.
	source := Source{Name: "CrossWire Beta", Type: SourceTypeFTP, Host: "ftp.crosswire.org", Directory: "/pub/sword/betaraw"}
	urls := source.ModulePackageURLs("KJV")

	if len(urls) == 0 || urls[0] != "ftp://ftp.crosswire.org/pub/sword/betapackages/rawzip/KJV.zip" {
		t.Errorf("urls[0] = %v, want betapackages/rawzip candidate first", urls)
	}
}

func TestModulePackageURLs_NonRawDirectory(t *testing.T) {
	t.Parallel()

	source := Source{Name: "eBible.org", Type: SourceTypeFTP, Host: "ftp.ebible.org", Directory: "/sword"}
	urls := source.ModulePackageURLs("engwebp")

	want := []string{
		"ftp://ftp.ebible.org/sword/zip/engwebp.zip",
		"ftp://ftp.ebible.org/sword/packages/rawzip/engwebp.zip",
	}
	if len(urls) != len(want) {
		t.Fatalf("got %d URLs, want %d: %v", len(urls), len(want), urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestDefaultSources_AllValid(t *testing.T) {
	t.Parallel()

	sources := DefaultSources()
	if len(sources) == 0 {
		t.Fatal("expected built-in sources")
	}

	seen := make(map[string]bool)
	for _, s := range sources {
		if err := s.Validate(); err != nil {
			t.Errorf("source %q: %v", s.Name, err)
		}
		if seen[s.Name] {
			t.Errorf("duplicate source name %q", s.Name)
		}
		seen[s.Name] = true
	}
}

func TestGetSource(t *testing.T) {
	t.Parallel()

	source, ok := GetSource("CrossWire")
	if !ok {
		t.Fatal("expected CrossWire in the built-in catalog")
	}
	if source.Host != "ftp.crosswire.org" {
		t.Errorf("host = %q, want ftp.crosswire.org", source.Host)
	}

	if _, ok := GetSource("NoSuchSource"); ok {
		t.Error("expected lookup miss for unknown name")
	}
}

func TestParseSourcesConf(t *testing.T) {
	t.Parallel()

	conf := strings.Join([]string{
		"[General]",
		"",
		"[CrossWire]",
		"FTPSource=ftp.crosswire.org|/pub/sword/raw|CrossWire",
		"",
		"[Mirror]",
		"HTTPSSource=example.com|/sword|Mirror",
		"",
		"# not a source line",
		"FTPSource=broken",
	}, "\n")

	sources, err := ParseSourcesConf([]byte(conf))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2: %v", len(sources), sources)
	}

	if sources[0].Name != "CrossWire" || sources[0].Type != SourceTypeFTP {
		t.Errorf("sources[0] = %+v", sources[0])
	}
	if sources[1].Name != "Mirror" || sources[1].Type != SourceTypeHTTPS || sources[1].Host != "example.com" {
		t.Errorf("sources[1] = %+v", sources[1])
	}
}

func TestParseSourcesConf_RoundTripsSaveFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	config := NewLocalConfig(dir)
	if err := config.EnsureDirectories(); err != nil {
		t.Fatalf("ensuring directories: %v", err)
	}

	want := []Source{
		{Name: "CrossWire", Type: SourceTypeFTP, Host: "ftp.crosswire.org", Directory: "/pub/sword/raw"},
		{Name: "Mirror", Type: SourceTypeHTTPS, Host: "example.com", Directory: "/sword"},
	}
	if err := config.SaveInstallConf(want); err != nil {
		t.Fatalf("saving install.conf: %v", err)
	}

	got, err := config.LoadInstallConf()
	if err != nil {
		t.Fatalf("loading install.conf: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d sources, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sources[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
