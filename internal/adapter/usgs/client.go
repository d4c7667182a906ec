package usgs

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/couchcryptid/quake-feed-service/internal/observability"
)

const (
	// DefaultConnectTimeout bounds TCP connection setup.
	DefaultConnectTimeout = 15 * time.Second
	// DefaultReadTimeout bounds the wait for the response.
	DefaultReadTimeout = 10 * time.Second
)

// Client fetches the USGS earthquake feed. It implements loader.Source.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feed client for baseURL. connectTimeout limits dialing;
// readTimeout limits the wait for response headers. The whole request,
// including the body, may take at most their sum.
func NewClient(baseURL string, connectTimeout, readTimeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: newHTTPClient(connectTimeout, readTimeout),
		metrics:    metrics,
		logger:     logger,
	}
}

func newHTTPClient(connectTimeout, readTimeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: readTimeout,
		MaxIdleConns:          4,
		IdleConnTimeout:       90 * time.Second,
		// Compression is negotiated by Fetch so gzip bodies go through klauspost.
		DisableCompression: true,
	}
	return &http.Client{Timeout: connectTimeout + readTimeout, Transport: tr}
}

// QueryURL builds the request URL for cfg against the client's base URL,
// unless cfg names its own base.
func (c *Client) QueryURL(cfg domain.LoadConfiguration) string {
	base := cfg.BaseURL
	if base == "" {
		base = c.baseURL
	}
	return BuildQueryURL(base, cfg)
}

// Fetch performs a GET on rawURL and returns the body with line breaks
// removed. Any failure returns an empty body and a *domain.FetchError.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", c.fail(&domain.FetchError{Kind: domain.InvalidURL, URL: rawURL, Cause: err})
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", c.fail(&domain.FetchError{Kind: domain.InvalidURL, URL: rawURL, Cause: errors.New("absolute http(s) URL required")})
	}

	start := time.Now()
	defer func() {
		c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", c.fail(&domain.FetchError{Kind: domain.InvalidURL, URL: rawURL, Cause: err})
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.fail(&domain.FetchError{Kind: domain.Transport, URL: rawURL, Cause: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", c.fail(&domain.FetchError{Kind: domain.BadStatus, URL: rawURL, Code: resp.StatusCode})
	}

	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", c.fail(&domain.FetchError{Kind: domain.Transport, URL: rawURL, Cause: err})
		}
		defer gz.Close()
		body = gz
	}

	out, err := readLines(body)
	if err != nil {
		return "", c.fail(&domain.FetchError{Kind: domain.Transport, URL: rawURL, Cause: err})
	}
	return out, nil
}

func (c *Client) fail(err *domain.FetchError) error {
	c.metrics.FetchErrors.WithLabelValues(err.Kind.String()).Inc()
	c.logger.Debug("feed request failed",
		"url", err.URL,
		"kind", err.Kind.String(),
		"status", err.Code,
		"error", err,
	)
	return err
}

// maxLineSize caps a single feed line; GeoJSON responses are often one line.
const maxLineSize = 16 << 20

// readLines concatenates every line of r, dropping the line terminators.
// "\n", "\r\n", and a lone "\r" each end a line.
func readLines(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	sc.Split(scanLines)

	var sb strings.Builder
	for sc.Scan() {
		sb.Write(sc.Bytes())
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// scanLines is a bufio.SplitFunc that also treats a lone "\r" as a line end.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// Need the next byte to tell "\r" from "\r\n".
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
