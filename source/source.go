// Package source resolves the GRIB input handed to the decoder: a local file,
// or an HTTP(S) URL downloaded to a temporary file. Inputs compressed with
// gzip (.gz), Zstandard (.zst) or LZ4 frames (.lz4) are decompressed into a
// staged temporary file first, since the ecCodes tools only read plain GRIB.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var (
	// ErrEmpty is returned for a blank input.
	ErrEmpty = errors.New("input source cannot be empty")
	// ErrNotFound is returned when a local input does not exist.
	ErrNotFound = errors.New("GRIB file not found")
)

// Defaults for Options.
const (
	DefaultRetries        = 3
	DefaultAttemptTimeout = 30 * time.Second
)

// Options control how remote inputs are fetched and where temporary files go.
type Options struct {
	HTTPClient     *http.Client
	Retries        int
	AttemptTimeout time.Duration
	// Backoff returns the delay after the given failed attempt (1-based).
	Backoff func(attempt int) time.Duration
	// TempDir defaults to os.TempDir().
	TempDir string
}

func (o Options) withDefaults() Options {
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	if o.Retries <= 0 {
		o.Retries = DefaultRetries
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = DefaultAttemptTimeout
	}
	if o.Backoff == nil {
		o.Backoff = ExponentialBackoff
	}
	return o
}

// ExponentialBackoff waits 2^attempt seconds.
func ExponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

// Source is a resolved GRIB input ready to be passed to the decoder.
type Source struct {
	input string
	path  string

	mu    sync.Mutex
	temps []string
}

// Path returns the local path of the plain GRIB file.
func (s *Source) Path() string {
	return s.path
}

// Input returns the input the source was resolved from.
func (s *Source) Input() string {
	return s.input
}

// Close removes the temporary files created for the source. It is safe to
// call more than once.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for _, p := range s.temps {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			glog.Warningf("error cleaning up temporary file %s: %v", p, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	s.temps = nil
	return firstErr
}

// IsURL reports whether input is an http or https URL.
func IsURL(input string) bool {
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Open resolves input. Remote inputs are downloaded before Open returns.
func Open(ctx context.Context, input string, opts Options) (*Source, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmpty
	}
	opts = opts.withDefaults()
	s := &Source{input: input}

	var name string
	if IsURL(input) {
		u, _ := url.Parse(input)
		name = path.Base(u.Path)
		p, err := s.download(ctx, input, filepath.Ext(name), opts)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.path = p
	} else {
		p, err := resolveLocal(input)
		if err != nil {
			return nil, err
		}
		name = p
		s.path = p
	}

	if dec, ok := decompressors[strings.ToLower(filepath.Ext(name))]; ok {
		staged, err := s.stage(s.path, dec, opts)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.path = staged
	}
	return s, nil
}

func resolveLocal(input string) (string, error) {
	p, err := filepath.Abs(input)
	if err != nil {
		return "", errors.Wrapf(err, "cannot resolve %s", input)
	}
	fi, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(ErrNotFound, "%s", p)
		}
		return "", errors.Wrapf(err, "GRIB file not accessible")
	}
	if !fi.Mode().IsRegular() {
		return "", errors.Errorf("path exists but is not a file: %s", p)
	}
	return p, nil
}

// createTemp creates a temporary file whose name carries a fingerprint of the
// input, which makes staged files of one input easy to spot.
func (s *Source) createTemp(opts Options, suffix string) (*os.File, error) {
	pattern := fmt.Sprintf("grib-%016x-*%s", xxhash.Sum64String(s.input), suffix)
	f, err := os.CreateTemp(opts.TempDir, pattern)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create temporary file")
	}
	s.mu.Lock()
	s.temps = append(s.temps, f.Name())
	s.mu.Unlock()
	return f, nil
}

func (s *Source) download(ctx context.Context, rawURL, suffix string, opts Options) (string, error) {
	if suffix == "" {
		suffix = ".grib2"
	}
	f, err := s.createTemp(opts, suffix)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var lastErr error
	for attempt := 1; attempt <= opts.Retries; attempt++ {
		if lastErr = fetch(ctx, opts, rawURL, f); lastErr == nil {
			glog.V(1).Infof("fetched %s to %s", rawURL, f.Name())
			return f.Name(), nil
		}
		if attempt == opts.Retries {
			break
		}
		glog.Warningf("fetching %s failed (attempt %d of %d): %v", rawURL, attempt, opts.Retries, lastErr)
		select {
		case <-ctx.Done():
			return "", errors.Wrapf(ctx.Err(), "fetching %s", rawURL)
		case <-time.After(opts.Backoff(attempt)):
		}
	}
	return "", errors.Wrapf(lastErr, "failed to fetch GRIB file after %d attempts", opts.Retries)
}

func fetch(ctx context.Context, opts Options, rawURL string, dst *os.File) error {
	ctx, cancel := context.WithTimeout(ctx, opts.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := opts.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("unexpected HTTP status %s", resp.Status)
	}

	if err := dst.Truncate(0); err != nil {
		return err
	}
	if _, err := dst.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		return err
	}
	return dst.Sync()
}
