// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPackageNotAvailable indicates a module exists in a source's index but
// none of its candidate package URLs exist on the server. This is a
// fundamentally different condition from a transient download failure and
// callers are expected to report it distinctly.
var ErrPackageNotAvailable = errors.New("package not available for download")

// ErrModuleNotInstalled indicates an operation named a module with no
// descriptor in mods.d. Callers distinguish this from filesystem failures on
// modules that are installed.
var ErrModuleNotInstalled = errors.New("module not installed")

// HTTPError is any HTTP response with status >= 400.
type HTTPError struct {
	StatusCode int
	Status     string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %s", e.Status)
}

// IsNotFound reports whether this is a 404 response.
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsClientError reports whether the status is in the 4xx range. Client errors
// are deterministic and never retried.
func (e *HTTPError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// FTPError is a failed FTP reply.
type FTPError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *FTPError) Error() string {
	return fmt.Sprintf("FTP error %d: %s", e.Code, e.Message)
}

// IsNotFound reports whether this is a 550 (file unavailable) reply.
func (e *FTPError) IsNotFound() bool {
	return e.Code == 550
}

// IsNotFoundError classifies an error as "the file is confirmed absent on the
// server" (HTTP 404, FTP 550) as opposed to a transient failure. The
// installer's multi-URL trial depends on this split: only when every
// candidate URL is confirmed absent may it report ErrPackageNotAvailable.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.IsNotFound()
	}
	var ftpErr *FTPError
	if errors.As(err, &ftpErr) {
		return ftpErr.IsNotFound()
	}

	// Wrapped errors from the FTP library carry the reply code in the text.
	msg := err.Error()
	return strings.Contains(msg, "550") || strings.Contains(msg, "404") || strings.Contains(msg, "not found")
}

func isClientError(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.IsClientError()
	}
	return false
}
