// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ParseModsArchive parses a mods.d.tar.gz index archive, returning one
// ModuleInfo per parseable .conf entry. Directories, non-.conf entries and
// entries that fail to read or parse are skipped, never fatal: one corrupt
// descriptor must not abort enumeration of the rest of the index.
func ParseModsArchive(data []byte) ([]ModuleInfo, error) {
	gzr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompressing index: %w", err)
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	var modules []ModuleInfo

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Truncated or corrupt tail; keep what parsed so far.
			break
		}

		if hdr.Typeflag != tar.TypeReg || !strings.HasSuffix(hdr.Name, ".conf") {
			continue
		}

		content := make([]byte, hdr.Size)
		if _, err := io.ReadFull(tr, content); err != nil {
			continue
		}

		module, err := ParseModuleConf(content, filepath.Base(hdr.Name))
		if err != nil {
			continue
		}
		modules = append(modules, module)
	}

	return modules, nil
}

// ExtractModsArchive materializes a mods.d.tar.gz under destDir. Entries
// resolving outside destDir fail the extraction.
func ExtractModsArchive(data []byte, destDir string) error {
	gzr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decompressing archive: %w", err)
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar: %w", err)
		}

		destPath, err := secureJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(destPath, 0o755); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
		case tar.TypeReg:
			if err := writeExtractedFile(destPath, tr); err != nil {
				return err
			}
		}
	}

	return nil
}

// ExtractZipArchive materializes a .zip module package under destDir. Any
// entry whose cleaned path is not a strict descendant of destDir fails the
// whole extraction before anything further is written (zip-slip protection).
func ExtractZipArchive(data []byte, destDir string) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}

	for _, f := range r.File {
		destPath, err := secureJoin(destDir, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0o755); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("opening file in zip: %w", err)
		}
		err = writeExtractedFile(destPath, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

// secureJoin joins an archive entry name onto root, rejecting entries whose
// cleaned path escapes root.
func secureJoin(root, name string) (string, error) {
	destPath := filepath.Join(root, name)
	cleanRoot := filepath.Clean(root)
	if destPath != cleanRoot && !strings.HasPrefix(filepath.Clean(destPath), cleanRoot+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid file path in archive: %s", name)
	}
	return destPath, nil
}

func writeExtractedFile(destPath string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("writing file: %w", err)
	}
	return f.Close()
}
