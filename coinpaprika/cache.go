package coinpaprika

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// diskCache is an http.RoundTripper that keeps successful GET responses on
// disk, and serves them while they are younger than ttl.
type diskCache struct {
	base http.RoundTripper
	dir  string
	ttl  time.Duration
	log  *zerolog.Logger
	now  func() time.Time // nil is time.Now
}

func (c *diskCache) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// RoundTrip implements the http.RoundTripper interface.
func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.base.RoundTrip(req)
	}
	key := fmt.Sprintf("coinpaprika-%x", sha1.Sum([]byte(req.Method+" "+req.URL.String())))

	if resp, err := c.get(key, req); err == nil {
		c.log.Debug().Str("url", req.URL.Path).Msg("cache hit")
		return resp, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		c.log.Warn().Err(err).Msg("cache write failed (ignored)")
	}
	return resp, nil
}

// get returns the cached response for key, if fresh.
func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	file := filepath.Join(c.dir, key)
	info, err := os.Stat(file)
	if err != nil {
		return nil, err
	}
	if c.clock().Sub(info.ModTime()) >= c.ttl {
		return nil, fmt.Errorf("cache entry %q expired", key)
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores resp under key. The response body stays readable.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o644)
}
