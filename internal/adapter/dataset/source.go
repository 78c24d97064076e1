// Package dataset fetches the city dataset document from a file, an HTTP(S)
// URL, or an S3-compatible bucket.
package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// maxDocumentSize bounds how much of a dataset response is read.
const maxDocumentSize = 64 << 20

// Options configures the source picked by Open.
type Options struct {
	Timeout time.Duration
	S3      S3Options
	Logger  *slog.Logger
}

// Source fetches the raw dataset document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	// Location describes where the document comes from, for logs.
	Location() string
}

// Open returns the Source for a location: "s3://bucket/key", an http(s)
// URL, or a filesystem path.
func Open(ctx context.Context, location string, opts Options) (Source, error) {
	u, err := url.Parse(location)
	if err == nil {
		switch strings.ToLower(u.Scheme) {
		case "s3":
			return NewS3Source(ctx, u, opts.S3)
		case "http", "https":
			return NewHTTPSource(location, opts.Timeout, opts.Logger), nil
		case "file":
			return NewFileSource(u.Path), nil
		}
	}
	return NewFileSource(location), nil
}

// FileSource reads the dataset from the local filesystem.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch reads the whole file.
func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}
	return data, nil
}

func (s *FileSource) Location() string { return s.path }

// HTTPSource downloads the dataset over HTTP(S).
type HTTPSource struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPSource creates an HTTP source with a per-request timeout.
func NewHTTPSource(rawURL string, timeout time.Duration, logger *slog.Logger) *HTTPSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPSource{
		url: rawURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch performs a single GET. Non-200 responses are errors.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataset request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dataset request: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read dataset response: %w", err)
	}
	s.logger.Debug("dataset downloaded", "url", s.url, "bytes", len(data))
	return data, nil
}

func (s *HTTPSource) Location() string { return s.url }
