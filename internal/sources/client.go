package sources

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/jobrank/internal/aggregator"
	"github.com/spigell/jobrank/internal/utils"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	userAgent       = "spigell/jobrank (+https://github.com/spigell/jobrank)"
	maxBodyBytes    = 8 << 20
)

// Options are shared by every provider constructor.
type Options struct {
	HTTPClient *http.Client
	UserAgent  string
	Logger     *zap.Logger
	// BaseURL overrides the origin endpoint, mostly for tests.
	BaseURL string
	// Limiter overrides the provider's default request rate.
	Limiter *rate.Limiter
}

// client performs HTTP calls for one provider and maps failures onto
// aggregator error kinds.
type client struct {
	name       string
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func newClient(name string, opts Options, limit rate.Limit, burst int) *client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = userAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(limit, burst)
	}

	return &client{
		name:       name,
		httpClient: httpClient,
		userAgent:  ua,
		limiter:    limiter,
		logger:     logger.With(zap.String("provider", name)),
	}
}

func (c *client) getJSON(ctx context.Context, endpoint string, q url.Values, headers map[string]string, target any) error {
	body, err := c.get(ctx, endpoint, q, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return aggregator.Malformed(c.name, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *client) postJSON(ctx context.Context, endpoint string, payload any, headers map[string]string, target any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return aggregator.Unavailable(c.name, err)
	}
	req = c.setHeaders(req, headers)
	req.Header.Set("Content-Type", contentType)

	body, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return aggregator.Malformed(c.name, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// get returns the raw response body of a GET request.
func (c *client) get(ctx context.Context, endpoint string, q url.Values, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, aggregator.Unavailable(c.name, err)
	}
	req = c.setHeaders(req, headers)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	return c.do(ctx, req)
}

func (c *client) do(ctx context.Context, req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.transportError(fmt.Errorf("rate limit wait: %w", err))
	}

	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, aggregator.Malformed(c.name, fmt.Errorf("gzip: %w", err))
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes))
	if err != nil {
		return nil, c.transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("unexpected response",
			zap.Int("status", resp.StatusCode),
			zap.String("body", utils.TruncateForLog(string(data), 200)),
		)
		return nil, aggregator.Unavailable(c.name, fmt.Errorf("bad status: %s", resp.Status))
	}

	return data, nil
}

func (c *client) transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return aggregator.Timeout(c.name, err)
	}
	return aggregator.Unavailable(c.name, err)
}

func (c *client) setHeaders(req *http.Request, headers map[string]string) *http.Request {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}
