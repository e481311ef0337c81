package marketdata

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/4p00rv/kite-stock-analysis/date"
)

// diskCache implements a simple disk cache for HTTP responses.
type diskCache struct {
	base http.RoundTripper
	log  zerolog.Logger
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	// the key embeds the current day, so cached quotes expire overnight
	key := fmt.Sprintf("%s %s %s", date.Today(), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	if cached, err := c.get(key, req); err == nil {
		return cached, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("host", req.URL.Host).Str("path", req.URL.Path).Str("status", resp.Status).Msg("quote fetch")
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		c.log.Warn().Err(err).Msg("quote cache write failed (ignored)")
	}
	return resp, nil
}

// get retrieves a cached response from disk.
func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(os.TempDir(), key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to the disk cache.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(os.TempDir(), key), content, 0644)
}
