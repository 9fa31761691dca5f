// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
)

// FTPClient retrieves files from anonymous FTP mirrors. One connection per
// download; there is no pooling and no retry loop at this layer.
type FTPClient struct {
	opts ClientOptions
	conn *ftp.ServerConn
	host string
}

// NewFTPClient creates an FTP client with the given options.
func NewFTPClient(opts ClientOptions) *FTPClient {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	return &FTPClient{opts: opts}
}

// Connect dials the server (defaulting the port to 21) and logs in as
// anonymous.
func (c *FTPClient) Connect(ctx context.Context, host string) error {
	if !strings.Contains(host, ":") {
		host += ":21"
	}

	conn, err := ftp.Dial(host, ftp.DialWithContext(ctx), ftp.DialWithTimeout(c.opts.Timeout))
	if err != nil {
		return fmt.Errorf("connecting to FTP server: %w", err)
	}

	if err := conn.Login("anonymous", "anonymous@"); err != nil {
		conn.Quit()
		return fmt.Errorf("FTP login: %w", err)
	}

	c.conn = conn
	c.host = host
	return nil
}

// Close quits the connection if one is open.
func (c *FTPClient) Close() error {
	if c.conn != nil {
		return c.conn.Quit()
	}
	return nil
}

// Download retrieves a single file.
func (c *FTPClient) Download(ctx context.Context, path string) ([]byte, error) {
	if c.conn == nil {
		return nil, errors.New("not connected")
	}

	resp, err := c.conn.Retr(path)
	if err != nil {
		return nil, wrapFTPReply(err, "retrieving file")
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// DownloadWithProgress retrieves a single file, reporting running byte counts.
// When the server does not answer SIZE, the total is reported as -1.
func (c *FTPClient) DownloadWithProgress(ctx context.Context, path string, progress ProgressFunc) ([]byte, error) {
	if c.conn == nil {
		return nil, errors.New("not connected")
	}

	total := int64(-1)
	if size, err := c.conn.FileSize(path); err == nil {
		total = size
	}

	resp, err := c.conn.Retr(path)
	if err != nil {
		return nil, wrapFTPReply(err, "retrieving file")
	}
	defer resp.Close()

	data, err := readAllWithProgress(resp, total, progress)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// ListDirectory lists the entry names in a directory.
func (c *FTPClient) ListDirectory(ctx context.Context, path string) ([]string, error) {
	if c.conn == nil {
		return nil, errors.New("not connected")
	}

	entries, err := c.conn.List(path)
	if err != nil {
		return nil, wrapFTPReply(err, "listing directory")
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		files = append(files, entry.Name)
	}
	return files, nil
}

// wrapFTPReply converts a textproto reply from the FTP library into an
// FTPError so not-found classification sees the reply code.
func wrapFTPReply(err error, op string) error {
	var proto *textproto.Error
	if errors.As(err, &proto) {
		return &FTPError{Code: proto.Code, Message: proto.Msg}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// DownloadFromFTP performs the full connect/login/retrieve/close flow for a
// single file.
func DownloadFromFTP(ctx context.Context, host, path string, opts ClientOptions) ([]byte, error) {
	client := NewFTPClient(opts)
	if err := client.Connect(ctx, host); err != nil {
		return nil, err
	}
	defer client.Close()

	return client.Download(ctx, path)
}
