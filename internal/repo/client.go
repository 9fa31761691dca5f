// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// downloadChunkSize is the buffer size used when streaming a body with
// progress reporting.
const downloadChunkSize = 32 * 1024

// ClientOptions tunes the download client.
type ClientOptions struct {
	Timeout    time.Duration // Per-request timeout (HTTP) / dial timeout (FTP)
	MaxRetries int           // Additional HTTP attempts after the first
	RetryDelay time.Duration // Wait between HTTP attempts
	UserAgent  string        // User-Agent header sent on HTTP requests
	Logger     *log.Logger   // Optional debug logger; nil means silent
}

// DefaultClientOptions returns the defaults used when fields are zero.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:    60 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Second,
		UserAgent:  "swordctl/1.0",
	}
}

// ProgressFunc receives (downloaded, total) byte counts after each chunk of a
// progress-reporting download. total is -1 when the server did not report a
// size.
type ProgressFunc func(downloaded, total int64)

// Client downloads module indexes and packages from HTTP, HTTPS and FTP
// sources. A Client must not be shared across goroutines that download
// concurrently; batch installation gives each worker its own Client.
type Client struct {
	httpClient *http.Client
	opts       ClientOptions
}

// NewClient creates a download client, applying defaults for zero options.
func NewClient(opts ClientOptions) (*Client, error) {
	def := DefaultClientOptions()
	if opts.Timeout == 0 {
		opts.Timeout = def.Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
	}, nil
}

// Download fetches a URL and returns its content. The scheme selects the
// transport: http/https downloads retry up to MaxRetries additional times
// (except on 4xx responses, which are deterministic); ftp downloads are a
// single best-effort attempt, since the installer's multi-URL trial sits one
// layer above. An empty or unrecognized scheme fails immediately.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL")
	}

	switch {
	case strings.HasPrefix(url, "ftp://"):
		return c.downloadFTP(ctx, url, nil)
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		// Handled below.
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s", url)
	}

	var lastErr error
	maxAttempts := c.opts.MaxRetries + 1

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			// The backoff wait itself must be cancellable so that a pending
			// sleep cannot starve cancellation.
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.opts.RetryDelay):
			}
			c.logf("retrying download", "url", url, "attempt", attempt+1)
		}

		data, err := c.downloadOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if isClientError(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) downloadOnce(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return data, nil
}

// get performs one HTTP GET, mapping any status >= 400 to an HTTPError.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp, nil
}

// DownloadWithProgress behaves like Download but streams the body in fixed
// chunks, invoking progress after each one. The total is taken from
// Content-Length (HTTP) or SIZE (FTP) when available, else -1.
func (c *Client) DownloadWithProgress(ctx context.Context, url string, progress ProgressFunc) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL")
	}

	if strings.HasPrefix(url, "ftp://") {
		return c.downloadFTP(ctx, url, progress)
	}

	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := readAllWithProgress(resp.Body, resp.ContentLength, progress)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return data, nil
}

// readAllWithProgress accumulates r, reporting running byte counts. total may
// be -1 when unknown.
func readAllWithProgress(r io.Reader, total int64, progress ProgressFunc) ([]byte, error) {
	var data []byte
	var downloaded int64
	buf := make([]byte, downloadChunkSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
			downloaded += int64(n)
			if progress != nil {
				progress(downloaded, total)
			}
		}
		if err == io.EOF {
			return data, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// downloadFTP parses an ftp:// URL, opens one connection, retrieves the path
// and closes the connection. No retry loop; FTP failures are reported to the
// caller directly.
func (c *Client) downloadFTP(ctx context.Context, url string, progress ProgressFunc) ([]byte, error) {
	host, path, err := splitFTPURL(url)
	if err != nil {
		return nil, err
	}

	ftpClient := NewFTPClient(c.opts)
	if err := ftpClient.Connect(ctx, host); err != nil {
		return nil, fmt.Errorf("connecting to FTP: %w", err)
	}
	defer ftpClient.Close()

	if progress != nil {
		return ftpClient.DownloadWithProgress(ctx, path, progress)
	}
	return ftpClient.Download(ctx, path)
}

func splitFTPURL(url string) (host, path string, err error) {
	rest := strings.TrimPrefix(url, "ftp://")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid FTP URL format: %s", url)
	}
	return parts[0], "/" + parts[1], nil
}

// DownloadToFile downloads a URL and writes the content to destPath, creating
// parent directories as needed.
func (c *Client) DownloadToFile(ctx context.Context, url, destPath string) error {
	data, err := c.Download(ctx, url)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// hrefPattern extracts link targets from an HTML directory index page.
var hrefPattern = regexp.MustCompile(`href="([^"]+)"`)

// ListDirectory fetches an HTTP directory listing page and returns the file
// names it links to, skipping parent-directory and absolute links. HTTP
// mirrors expose no listing API, so scraping the index page is the contract.
func (c *Client) ListDirectory(ctx context.Context, url string) ([]string, error) {
	data, err := c.Download(ctx, url)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, match := range hrefPattern.FindAllSubmatch(data, -1) {
		name := string(match[1])
		if name == "../" || strings.HasPrefix(name, "/") || strings.HasPrefix(name, "http") {
			continue
		}
		files = append(files, name)
	}
	return files, nil
}

func (c *Client) logf(msg string, kv ...any) {
	if c.opts.Logger != nil {
		c.opts.Logger.Debug(msg, kv...)
	}
}
