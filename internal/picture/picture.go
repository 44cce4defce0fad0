// Package picture downloads and normalizes workspace and account pictures.
package picture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/image/draw"

	// decoders for source pictures
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// Size is the edge length of stored pictures
	Size = 128

	defaultTimeout = 30 * time.Second
)

// ErrBadStatus is returned when a download answers with a non-2xx status
var ErrBadStatus = errors.New("unexpected download status")

// FetchError wraps a failed download
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Service fetches pictures over HTTP and resizes them. All file access goes
// through the configured afero filesystem.
type Service struct {
	fs     afero.Fs
	client *http.Client
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		s.client = c
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.client = &http.Client{Timeout: d}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a picture service writing to fs.
func NewService(fs afero.Fs, opts ...Option) *Service {
	s := &Service{
		fs:     fs,
		client: &http.Client{Timeout: defaultTimeout},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// IsURL reports whether s is an http(s) URL with a host.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// TempDir creates a scratch directory on the service filesystem.
func (s *Service) TempDir() (string, error) {
	return afero.TempDir(s.fs, "", "juli-picture-")
}

// Download stores the body of rawURL at dest. The file only appears once
// the body has been fully received.
func (s *Service) Download(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &FetchError{URL: rawURL, Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &FetchError{URL: rawURL, Err: err}
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: ErrBadStatus}
	}

	if err := s.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	part := dest + ".part"

	f, err := s.fs.OpenFile(part, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", part, err)
	}

	n, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = s.fs.Remove(part)

		return &FetchError{URL: rawURL, Err: err}
	}

	if err := s.fs.Rename(part, dest); err != nil {
		_ = s.fs.Remove(part)

		return fmt.Errorf("failed to move %s: %w", dest, err)
	}

	s.logger.Debug("picture downloaded", "url", rawURL, "dest", dest, "bytes", n)

	return nil
}

// Resize decodes src, scales it to width x height and writes a PNG to dest.
func (s *Service) Resize(ctx context.Context, src, dest string, width, height int) error {
	img, err := s.decode(src)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	if err := s.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := s.fs.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(f, dst); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(dest)

		return fmt.Errorf("failed to encode %s: %w", dest, err)
	}

	return f.Close()
}

func (s *Service) decode(path string) (image.Image, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	s.logger.Debug("picture decoded", "path", path, "format", format, "bounds", img.Bounds().String())

	return img, nil
}
