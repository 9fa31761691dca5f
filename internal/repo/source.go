// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"errors"
	"fmt"
	"strings"
)

// SourceType is the transport protocol of a remote source.
type SourceType string

const (
	// SourceTypeFTP downloads over anonymous FTP.
	SourceTypeFTP SourceType = "FTP"
	// SourceTypeHTTP downloads over plain HTTP.
	SourceTypeHTTP SourceType = "HTTP"
	// SourceTypeHTTPS downloads over HTTPS.
	SourceTypeHTTPS SourceType = "HTTPS"
)

// String returns the protocol name.
func (st SourceType) String() string {
	return string(st)
}

// Source describes one remote SWORD module repository. It is a pure value
// object: constructed from the built-in catalog or install.conf, validated
// once, never mutated afterwards.
type Source struct {
	Name      string     // Display name, also the lookup key (e.g. "CrossWire")
	Type      SourceType // FTP, HTTP, or HTTPS
	Host      string     // Hostname (e.g. "ftp.crosswire.org")
	Directory string     // Base directory path (e.g. "/pub/sword/raw")
}

// Validate reports a configuration error if any required field is empty or
// the type is not one of the enumerated protocols.
func (s *Source) Validate() error {
	if s.Name == "" {
		return errors.New("source name cannot be empty")
	}
	if s.Host == "" {
		return errors.New("source host cannot be empty")
	}
	if s.Directory == "" {
		return errors.New("source directory cannot be empty")
	}
	switch s.Type {
	case SourceTypeFTP, SourceTypeHTTP, SourceTypeHTTPS:
		return nil
	default:
		return fmt.Errorf("invalid source type: %q", s.Type)
	}
}

// BaseURL returns the scheme://host prefix for the source, without the
// directory path.
func (s *Source) BaseURL() string {
	scheme := "http"
	switch s.Type {
	case SourceTypeFTP:
		scheme = "ftp"
	case SourceTypeHTTP:
		scheme = "http"
	case SourceTypeHTTPS:
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, s.Host)
}

// ModsIndexURL returns the URL of the source's mods.d.tar.gz module index.
func (s *Source) ModsIndexURL() string {
	dir := strings.TrimSuffix(s.Directory, "/")
	return fmt.Sprintf("%s%s/mods.d.tar.gz", s.BaseURL(), dir)
}

// ModuleDataURL returns the URL of a module's raw data directory. Descriptors
// are inconsistent about a leading "./" in DataPath, so it is stripped here.
func (s *Source) ModuleDataURL(dataPath string) string {
	dataPath = strings.TrimPrefix(dataPath, "./")
	dir := strings.TrimSuffix(s.Directory, "/")
	return fmt.Sprintf("%s%s/%s", s.BaseURL(), dir, dataPath)
}

// ModulePackageURLs returns the ordered candidate URLs for a module's .zip
// package. Mirrors place packages in different sibling directories relative
// to the raw-conf directory, so callers must try the candidates in order and
// stop at the first success:
//
//   - CrossWire: /pub/sword/raw      -> /pub/sword/packages/rawzip/
//   - variants:  /pub/sword/fooraw   -> /pub/sword/foopackages/
//   - IBT:       /pub/modsword/raw   -> /pub/modsword/rawzip/
//   - eBible:    /sword              -> /sword/zip/
func (s *Source) ModulePackageURLs(moduleID string) []string {
	dir := strings.TrimSuffix(s.Directory, "/")
	base := s.BaseURL()

	var urls []string
	if strings.HasSuffix(dir, "raw") {
		parent := strings.TrimSuffix(dir, "raw")
		urls = append(urls,
			fmt.Sprintf("%s%spackages/rawzip/%s.zip", base, parent, moduleID),
			fmt.Sprintf("%s%spackages/%s.zip", base, parent, moduleID),
			fmt.Sprintf("%s%srawzip/%s.zip", base, parent, moduleID),
		)
	} else {
		urls = append(urls,
			fmt.Sprintf("%s%s/zip/%s.zip", base, dir, moduleID),
			fmt.Sprintf("%s%s/packages/rawzip/%s.zip", base, dir, moduleID),
		)
	}
	return urls
}

// DefaultSources returns the built-in catalog of remote sources, matching
// the stock source list shipped with the SWORD installmgr tool.
func DefaultSources() []Source {
	return []Source{
		{Name: "Bible.org", Type: SourceTypeFTP, Host: "ftp.crosswire.org", Directory: "/pub/bible.org/sword"},
		{Name: "CrossWire", Type: SourceTypeFTP, Host: "ftp.crosswire.org", Directory: "/pub/sword/raw"},
		{Name: "CrossWire Attic", Type: SourceTypeFTP, Host: "ftp.crosswire.org", Directory: "/pub/sword/atticraw"},
		{Name: "CrossWire Beta", Type: SourceTypeFTP, Host: "ftp.crosswire.org", Directory: "/pub/sword/betaraw"},
		{Name: "CrossWire Wycliffe", Type: SourceTypeFTP, Host: "ftp.crosswire.org", Directory: "/pub/sword/wyclifferaw"},
		{Name: "Deutsche Bibelgesellschaft", Type: SourceTypeFTP, Host: "ftp.crosswire.org", Directory: "/pub/sword/dbgraw"},
		{Name: "IBT", Type: SourceTypeFTP, Host: "ftp.ibt.org.ru", Directory: "/pub/modsword/raw"},
		{Name: "Lockman Foundation", Type: SourceTypeFTP, Host: "ftp.crosswire.org", Directory: "/pub/sword/lockmanraw"},
		{Name: "STEP Bible", Type: SourceTypeFTP, Host: "ftp.stepbible.org", Directory: "/pub/sword"},
		{Name: "Xiphos", Type: SourceTypeFTP, Host: "ftp.xiphos.org", Directory: "/pub/xiphos"},
		{Name: "eBible.org", Type: SourceTypeFTP, Host: "ftp.ebible.org", Directory: "/sword"},
	}
}

// GetSource looks up a source by name in the built-in catalog.
func GetSource(name string) (Source, bool) {
	for _, s := range DefaultSources() {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}

// ParseSourcesConf parses the install.conf source-list format. Body lines are
// FTPSource=host|directory|name (and the HTTP/HTTPS equivalents); section
// headers and anything else are ignored.
func ParseSourcesConf(data []byte) ([]Source, error) {
	var sources []Source

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)

		var typ SourceType
		var rest string
		switch {
		case strings.HasPrefix(line, "FTPSource="):
			typ, rest = SourceTypeFTP, strings.TrimPrefix(line, "FTPSource=")
		case strings.HasPrefix(line, "HTTPSource="):
			typ, rest = SourceTypeHTTP, strings.TrimPrefix(line, "HTTPSource=")
		case strings.HasPrefix(line, "HTTPSSource="):
			typ, rest = SourceTypeHTTPS, strings.TrimPrefix(line, "HTTPSSource=")
		default:
			continue
		}

		parts := strings.Split(rest, "|")
		if len(parts) != 3 {
			continue
		}
		sources = append(sources, Source{
			Name:      strings.TrimSpace(parts[2]),
			Type:      typ,
			Host:      strings.TrimSpace(parts[0]),
			Directory: strings.TrimSpace(parts[1]),
		})
	}

	return sources, nil
}
