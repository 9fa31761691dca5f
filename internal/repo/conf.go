// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ModuleType classifies a module by its payload driver.
type ModuleType string

const (
	ModuleTypeBible      ModuleType = "Bible"
	ModuleTypeCommentary ModuleType = "Commentary"
	ModuleTypeDictionary ModuleType = "Dictionary"
	ModuleTypeGenBook    ModuleType = "GenBook"
	ModuleTypeUnknown    ModuleType = "Unknown"
)

// ModuleInfo is the metadata of one SWORD module, parsed either from a remote
// index entry or from an installed .conf file. It is never mutated after
// parsing; modules are matched by ID.
type ModuleInfo struct {
	ID          string   // Module identifier (e.g. "KJV"); lookups are case-insensitive
	Description string   // Human-readable description
	Language    string   // Language code (e.g. "en")
	Version     string   // Declared version string
	DataPath    string   // Relative path to the module payload
	Driver      string   // Payload format tag (e.g. "zText", "zLD")
	SourceType  string   // Source markup type (e.g. "OSIS")
	Encoding    string   // Text encoding (e.g. "UTF-8")
	Features    []string // Feature tags, order-preserving and repeatable
	About       string   // Extended description
	Copyright   string   // Copyright notice
	License     string   // DistributionLicense free text
	ConfPath    string   // Path of the .conf file (set when loaded from disk)
	InstallSize int64    // Declared payload size in bytes; 0 means unknown
}

// Type classifies the module from its driver prefix.
func (m *ModuleInfo) Type() ModuleType {
	driver := strings.ToLower(m.Driver)
	switch {
	case strings.HasPrefix(driver, "ztext"), strings.HasPrefix(driver, "rawtext"):
		return ModuleTypeBible
	case strings.HasPrefix(driver, "zcom"), strings.HasPrefix(driver, "rawcom"):
		return ModuleTypeCommentary
	case strings.HasPrefix(driver, "zld"), strings.HasPrefix(driver, "rawld"):
		return ModuleTypeDictionary
	case strings.Contains(driver, "genbook"):
		return ModuleTypeGenBook
	default:
		return ModuleTypeUnknown
	}
}

// IsBible reports whether the module carries Bible text.
func (m *ModuleInfo) IsBible() bool {
	return m.Type() == ModuleTypeBible
}

// HasFeature reports whether the module declares the given feature tag.
func (m *ModuleInfo) HasFeature(feature string) bool {
	for _, f := range m.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// LicenseSPDX normalizes the free-text license to an SPDX identifier.
func (m *ModuleInfo) LicenseSPDX() string {
	return ToSPDXLicense(m.License)
}

// String renders "ID: Description (vVersion)".
func (m *ModuleInfo) String() string {
	return fmt.Sprintf("%s: %s (v%s)", m.ID, m.Description, m.Version)
}

// ToSPDXLicense maps a SWORD DistributionLicense string to an SPDX
// identifier via an ordered matcher cascade: exact known strings, then
// Creative-Commons variant detection (3.0 default, 4.0 when the text says
// so), then LicenseRef sentinels for "copyrighted" variants, then literal
// passthrough. Total and deterministic; never fails.
func ToSPDXLicense(license string) string {
	lower := strings.ToLower(strings.TrimSpace(license))

	switch {
	case lower == "" || lower == "-":
		return ""
	case strings.Contains(lower, "public domain"):
		return "CC-PDDC"
	case lower == "gpl":
		return "GPL-3.0-or-later"
	case lower == "unrestricted":
		return "Unlicense"

	case strings.Contains(lower, "cc0"):
		return "CC0-1.0"
	case strings.Contains(lower, "by-nc-nd") && strings.Contains(lower, "4.0"):
		return "CC-BY-NC-ND-4.0"
	case strings.Contains(lower, "by-nc-nd"):
		return "CC-BY-NC-ND-3.0"
	case strings.Contains(lower, "by-nc-sa") && strings.Contains(lower, "4.0"):
		return "CC-BY-NC-SA-4.0"
	case strings.Contains(lower, "by-nc-sa"):
		return "CC-BY-NC-SA-3.0"
	case strings.Contains(lower, "by-sa") && strings.Contains(lower, "4.0"):
		return "CC-BY-SA-4.0"
	case strings.Contains(lower, "by-sa"):
		return "CC-BY-SA-3.0"
	case strings.Contains(lower, "by-nd") && strings.Contains(lower, "4.0"):
		return "CC-BY-ND-4.0"
	case strings.Contains(lower, "by-nd"):
		return "CC-BY-ND-3.0"
	case strings.Contains(lower, "by 4.0"),
		strings.Contains(lower, "attribution") && strings.Contains(lower, "4.0"):
		return "CC-BY-4.0"
	case strings.Contains(lower, "creative commons: by"):
		return "CC-BY-3.0"

	case strings.Contains(lower, "copyrighted") && strings.Contains(lower, "free"):
		return "LicenseRef-Copyrighted-Free"
	case strings.Contains(lower, "copyrighted"):
		return "LicenseRef-Copyrighted"

	default:
		return license
	}
}

// ParseModuleConf parses the SWORD descriptor micro-format. The first
// [Section] line names the module ID; remaining non-blank, non-comment lines
// are Key=Value pairs. Unknown keys are ignored; Feature repeats; a file with
// no section header is malformed. filename is recorded as ConfPath.
func ParseModuleConf(data []byte, filename string) (ModuleInfo, error) {
	if len(data) == 0 {
		return ModuleInfo{}, errors.New("empty conf file")
	}

	lines := strings.Split(string(data), "\n")

	var moduleID string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			moduleID = strings.Trim(line, "[]")
			break
		}
	}
	if moduleID == "" {
		return ModuleInfo{}, errors.New("no section header found")
	}

	module := ModuleInfo{
		ID:       moduleID,
		ConfPath: filename,
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Description":
			module.Description = value
		case "Lang":
			module.Language = value
		case "Version":
			module.Version = value
		case "DataPath":
			module.DataPath = value
		case "ModDrv":
			module.Driver = value
		case "SourceType":
			module.SourceType = value
		case "Encoding":
			module.Encoding = value
		case "About":
			module.About = value
		case "Copyright":
			module.Copyright = value
		case "DistributionLicense":
			module.License = value
		case "Feature":
			module.Features = append(module.Features, value)
		case "InstallSize":
			if size, err := strconv.ParseInt(value, 10, 64); err == nil {
				module.InstallSize = size
			}
		}
	}

	return module, nil
}

// GenerateConf serializes a ModuleInfo back to descriptor text, emitting only
// the fields that are set.
func GenerateConf(module ModuleInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s]\n", module.ID)
	fmt.Fprintf(&sb, "DataPath=%s\n", module.DataPath)
	if module.Driver != "" {
		fmt.Fprintf(&sb, "ModDrv=%s\n", module.Driver)
	}
	if module.Language != "" {
		fmt.Fprintf(&sb, "Lang=%s\n", module.Language)
	}
	if module.Description != "" {
		fmt.Fprintf(&sb, "Description=%s\n", module.Description)
	}
	if module.Version != "" {
		fmt.Fprintf(&sb, "Version=%s\n", module.Version)
	}
	if module.SourceType != "" {
		fmt.Fprintf(&sb, "SourceType=%s\n", module.SourceType)
	}
	if module.Encoding != "" {
		fmt.Fprintf(&sb, "Encoding=%s\n", module.Encoding)
	}
	for _, feature := range module.Features {
		fmt.Fprintf(&sb, "Feature=%s\n", feature)
	}
	if module.InstallSize > 0 {
		fmt.Fprintf(&sb, "InstallSize=%d\n", module.InstallSize)
	}
	return sb.String()
}

// FilterByType returns the modules whose driver classifies as moduleType.
func FilterByType(modules []ModuleInfo, moduleType ModuleType) []ModuleInfo {
	var result []ModuleInfo
	for _, m := range modules {
		if m.Type() == moduleType {
			result = append(result, m)
		}
	}
	return result
}

// FilterByLanguage returns the modules declaring the given language code.
func FilterByLanguage(modules []ModuleInfo, lang string) []ModuleInfo {
	var result []ModuleInfo
	for _, m := range modules {
		if m.Language == lang {
			result = append(result, m)
		}
	}
	return result
}

// SearchModules returns modules whose ID or description contains keyword,
// case-insensitively.
func SearchModules(modules []ModuleInfo, keyword string) []ModuleInfo {
	keyword = strings.ToLower(keyword)
	var result []ModuleInfo
	for _, m := range modules {
		if strings.Contains(strings.ToLower(m.ID), keyword) ||
			strings.Contains(strings.ToLower(m.Description), keyword) {
			result = append(result, m)
		}
	}
	return result
}
