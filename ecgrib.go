// Package ecgrib extracts GRIB2 messages as structured records by running the
// ecCodes grib_dump tool and reassembling its JSON output.
//
// A Client is bound to one GRIB input (a local path or an HTTP(S) URL). Each
// query starts one grib_dump process, reads its output to completion and
// returns the decoded messages in the order grib_dump printed them. Queries
// share no mutable state and may run concurrently.
//
// ecCodes must be installed; see https://confluence.ecmwf.int/display/ECC.
package ecgrib

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/sdifrance/ecgrib/eccodes"
	"github.com/sdifrance/ecgrib/gribio"
	"github.com/sdifrance/ecgrib/source"
)

var (
	// ErrEmptySource is returned by New for a blank input.
	ErrEmptySource = source.ErrEmpty
	// ErrClosed is returned by queries on a closed Client.
	ErrClosed = errors.New("ecgrib: client is closed")
)

// DefaultTimeout bounds a single decoder invocation.
const DefaultTimeout = 30 * time.Second

var essentialKeys = []string{
	"parameterCategory",
	"parameterNumber",
	"parameterName",
	"parameterUnits",
	"shortName",
	"dataDate",
	"dataTime",
	"forecastTime",
	"maximum",
	"minimum",
	"average",
	"values",
}

var metadataKeys = []string{
	"gridType",
	"Ni",
	"Nj",
	"latitudeOfFirstGridPointInDegrees",
	"longitudeOfFirstGridPointInDegrees",
	"latitudeOfLastGridPointInDegrees",
	"longitudeOfLastGridPointInDegrees",
	"iDirectionIncrementInDegrees",
	"jDirectionIncrementInDegrees",
	"centre",
	"editionNumber",
	"typeOfGeneratingProcess",
	"generatingProcessIdentifier",
	"numberOfValues",
	"numberOfMissing",
	"getNumberOfValues",
}

// EssentialKeys returns the keys requested when a query names none.
func EssentialKeys() []string { return slices.Clone(essentialKeys) }

// MetadataKeys returns the keys requested by Metadata.
func MetadataKeys() []string { return slices.Clone(metadataKeys) }

// Client queries one GRIB input.
type Client struct {
	input            string
	runner           eccodes.Runner
	dumpCommand      string
	getCommand       string
	timeout          time.Duration
	gridFromMetadata bool
	sourceOpts       source.Options

	mu     sync.Mutex
	src    *source.Source
	closed bool
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each decoder invocation. The process is killed when the
// timeout expires and the query fails. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRunner replaces the runner used to start the ecCodes tools.
func WithRunner(r eccodes.Runner) Option {
	return func(c *Client) { c.runner = r }
}

// WithDumpCommand overrides the grib_dump executable.
func WithDumpCommand(name string) Option {
	return func(c *Client) { c.dumpCommand = name }
}

// WithGetCommand overrides the grib_get executable.
func WithGetCommand(name string) Option {
	return func(c *Client) { c.getCommand = name }
}

// WithGridFromMetadata makes coordinate enrichment use the grid described by
// each message's own grid keys when they are present, instead of the fixed
// 0.25° global grid.
func WithGridFromMetadata() Option {
	return func(c *Client) { c.gridFromMetadata = true }
}

// WithFetchRetries sets how many times a remote input is requested.
func WithFetchRetries(n int) Option {
	return func(c *Client) { c.sourceOpts.Retries = n }
}

// WithHTTPClient sets the client used to fetch remote inputs.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.sourceOpts.HTTPClient = h }
}

// WithTempDir sets where downloaded and decompressed inputs are staged.
func WithTempDir(dir string) Option {
	return func(c *Client) { c.sourceOpts.TempDir = dir }
}

// New returns a Client for input. Local inputs are checked, and decompressed
// if needed, before New returns; remote inputs are fetched on first use.
func New(input string, opts ...Option) (*Client, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptySource
	}
	c := &Client{
		input:       input,
		runner:      eccodes.ExecRunner{},
		dumpCommand: eccodes.DumpCommand,
		getCommand:  eccodes.GetCommand,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !source.IsURL(input) {
		src, err := source.Open(context.Background(), input, c.sourceOpts)
		if err != nil {
			return nil, err
		}
		c.src = src
	}
	return c, nil
}

// Close removes any temporary files staged for the input. Queries on a closed
// Client fail with ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.src == nil {
		return nil
	}
	err := c.src.Close()
	c.src = nil
	return err
}

func (c *Client) path(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return "", ErrClosed
	}
	if c.src == nil {
		src, err := source.Open(ctx, c.input, c.sourceOpts)
		if err != nil {
			return "", err
		}
		c.src = src
	}
	return c.src.Path(), nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// dump streams grib_dump output for the messages matching clause and
// rebuilds them.
func (c *Client) dump(ctx context.Context, clause string, keys []string) ([]gribio.Message, error) {
	path, err := c.path(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var msgs []gribio.Message
	err = eccodes.Stream(ctx, c.runner, c.dumpCommand, eccodes.DumpArgs(clause, keys, path), func(stdout io.Reader) error {
		var err error
		msgs, err = gribio.ReadMessages(stdout)
		return err
	})
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("%s: %d messages matched %q", c.input, len(msgs), clause)
	return msgs, nil
}

// ParametersByType returns the messages matching q.Filter with the keys in
// q.Keys, or EssentialKeys when q.Keys is empty.
func (c *Client) ParametersByType(ctx context.Context, q Query) ([]gribio.Message, error) {
	keys := q.Keys
	if len(keys) == 0 {
		keys = essentialKeys
	}
	msgs, err := c.dump(ctx, q.Filter.Clause(), keys)
	if err != nil {
		return nil, err
	}
	if q.AddLatLon {
		c.addLatLon(msgs)
	}
	return msgs, nil
}

// Metadata returns the grid and origin keys of every message.
func (c *Client) Metadata(ctx context.Context) ([]gribio.Message, error) {
	return c.dump(ctx, "", metadataKeys)
}

// ReadAll returns every key of every message. The whole grib_dump document is
// buffered before it is decoded.
func (c *Client) ReadAll(ctx context.Context, addLatLon bool) ([]gribio.Message, error) {
	path, err := c.path(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out, err := eccodes.Output(ctx, c.runner, c.dumpCommand, eccodes.DumpAllArgs(path))
	if err != nil {
		return nil, err
	}
	msgs, err := gribio.DecodeAll(out)
	if err != nil {
		return nil, err
	}
	if addLatLon {
		c.addLatLon(msgs)
	}
	return msgs, nil
}

// Keys returns the grib_get listing of keys, one line per message.
func (c *Client) Keys(ctx context.Context, keys ...string) (string, error) {
	if len(keys) == 0 {
		return "", errors.New("at least one key must be specified")
	}
	path, err := c.path(ctx)
	if err != nil {
		return "", err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out, err := eccodes.Output(ctx, c.runner, c.getCommand, eccodes.GetArgs(keys, path))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
