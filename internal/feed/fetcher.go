package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

const (
	DefaultConnectTimeout = 15 * time.Second
	DefaultReadTimeout    = 10 * time.Second
)

var errReadTimeout = errors.New("read timeout")

// Fetcher retrieves the raw body of a feed.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// HTTPFetcher issues a single GET per call. It never retries.
type HTTPFetcher struct {
	client      *http.Client
	readTimeout time.Duration
}

// NewHTTPFetcher returns a fetcher that gives up connecting after
// connectTimeout and gives up reading after readTimeout without data.
func NewHTTPFetcher(connectTimeout, readTimeout time.Duration) *HTTPFetcher {
	dialer := &net.Dialer{Timeout: connectTimeout}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: readTimeout,
		MaxIdleConns:          4,
		IdleConnTimeout:       90 * time.Second,
	}
	return &HTTPFetcher{
		client:      &http.Client{Transport: transport},
		readTimeout: readTimeout,
	}
}

// Fetch returns the response body of a 200 reply as text.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := validateURL(rawURL); err != nil {
		return "", err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &InvalidURLError{URL: rawURL, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little so the connection can go back to the pool.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return "", &StatusError{URL: rawURL, Code: resp.StatusCode}
	}

	var body io.Reader = resp.Body
	if f.readTimeout > 0 {
		idle := newIdleTimeoutReader(resp.Body, f.readTimeout, cancel)
		defer idle.stop()
		body = idle
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", &TransportError{URL: rawURL, Err: err}
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}

func validateURL(rawURL string) error {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return &InvalidURLError{URL: rawURL, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &InvalidURLError{URL: rawURL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return &InvalidURLError{URL: rawURL, Err: errors.New("missing host")}
	}
	return nil
}

// idleTimeoutReader cancels the request when no Read returns within timeout.
type idleTimeoutReader struct {
	r       io.Reader
	timeout time.Duration
	timer   *time.Timer
	expired atomic.Bool
}

func newIdleTimeoutReader(r io.Reader, timeout time.Duration, onExpire func()) *idleTimeoutReader {
	ir := &idleTimeoutReader{r: r, timeout: timeout}
	ir.timer = time.AfterFunc(timeout, func() {
		ir.expired.Store(true)
		onExpire()
	})
	return ir
}

func (r *idleTimeoutReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && r.expired.Load() {
		return n, fmt.Errorf("%w: no data for %s: %w", errReadTimeout, r.timeout, err)
	}
	r.timer.Reset(r.timeout)
	return n, err
}

func (r *idleTimeoutReader) stop() { r.timer.Stop() }
