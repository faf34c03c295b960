// Package ops builds the HTTP operations the harness times against the
// target service. The measurement core never sees HTTP; it only sees the
// Operation closures built here.
package ops

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/FairForge/gauntlet/internal/bench"
)

// Client issues the timed requests. Targets are selected round-robin by
// operation index, which the executor keeps deterministic per (run,
// position), so the request distribution is reproducible across runs.
type Client struct {
	http    *http.Client
	targets []string
}

// NewClient builds an operation client for a fixed set of target base URLs.
func NewClient(httpClient *http.Client, targets []string) (*Client, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("ops: at least one target required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient, targets: targets}, nil
}

func (c *Client) target(index int) string {
	return c.targets[index%len(c.targets)]
}

// HealthCheck times a GET /health round trip.
func (c *Client) HealthCheck() bench.Operation {
	return bench.Timed(func(ctx context.Context, index int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.target(index)+"/health", nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		return c.do(req)
	})
}

// ObjectWrite times a small-object PUT. Object names embed the operation
// index, so each invocation writes its own key.
func (c *Client) ObjectWrite(payload []byte) bench.Operation {
	return bench.Timed(func(ctx context.Context, index int) error {
		url := fmt.Sprintf("%s/objects/bench-%d", c.target(index), index)
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, url,
			bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		return c.do(req)
	})
}

// ObjectRead times a GET of an object previously written by ObjectWrite at
// the same index.
func (c *Client) ObjectRead() bench.Operation {
	return bench.Timed(func(ctx context.Context, index int) error {
		url := fmt.Sprintf("%s/objects/bench-%d", c.target(index), index)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		return c.do(req)
	})
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s returned %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return nil
}
