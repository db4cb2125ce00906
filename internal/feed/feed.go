package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/instance"
	"github.com/tochemey/goakt/v3/log"
)

// ErrNoInstances is returned when a source answers with an empty list; a flock needs at least one boid.
var ErrNoInstances = errors.New("no instances returned")

var ErrNoSource = errors.New("no instance source: set a feed url or file, or use the demo data")

// Source produces the instance list the flock is built from.
type Source interface {
	Instances(ctx context.Context) ([]instance.Instance, error)
}

// Client fetches the instance list from the dashboard endpoint.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	logger     log.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http client (10s timeout).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends token in the X-Auth-Token header.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithLogger sets the logger, log.DefaultLogger otherwise.
func WithLogger(l log.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for endpoint, the page serving the instance list when asked with ?json=true.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Instances performs one GET on the endpoint and decodes the answer.
func (c *Client) Instances(ctx context.Context) ([]instance.Instance, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid feed url %q: %w", c.endpoint, err)
	}
	q := u.Query()
	q.Set("json", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	// the dashboard only answers with JSON to ajax requests
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch instances: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed returned %s: %s", resp.Status, body)
	}

	list, err := instance.Decode(resp.Body)
	if err != nil {
		return nil, err
	}
	c.logger.Infof("fetched %d instances from %s in %s", len(list), u.Host, time.Since(start))
	if len(list) == 0 {
		return nil, ErrNoInstances
	}
	return list, nil
}

// File reads the instance list from a JSON dump on disk.
type File string

func (f File) Instances(_ context.Context) ([]instance.Instance, error) {
	fh, err := os.Open(string(f))
	if err != nil {
		return nil, fmt.Errorf("failed to open instances file: %w", err)
	}
	defer fh.Close()

	list, err := instance.Decode(fh)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNoInstances
	}
	return list, nil
}

// Sample serves the embedded demo instances.
type Sample struct{}

func (Sample) Instances(_ context.Context) ([]instance.Instance, error) {
	return instance.Sample(), nil
}

// Select picks the source to build the flock from: the embedded sample when demo is
// set, else the file, else the dashboard url.
func Select(demo bool, file, endpoint, token string, logger log.Logger) (Source, error) {
	switch {
	case demo:
		return Sample{}, nil
	case file != "":
		return File(file), nil
	case endpoint != "":
		return NewClient(endpoint, WithToken(token), WithLogger(logger)), nil
	default:
		return nil, ErrNoSource
	}
}
