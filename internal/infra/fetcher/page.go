package fetcher

import (
	"bufio"
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/html/charset"

	"webwatch/internal/usecase/crawl"
)

// Request and Page are the crawl pipeline's fetch types; PageFetcher
// implements crawl.PageFetcher. Zero Timeout, MaxRedirects or UserAgent in
// a Request fall back to the fetcher's Config.
type (
	Request = crawl.FetchRequest
	Page    = crawl.Page
)

var _ crawl.PageFetcher = (*PageFetcher)(nil)

// PageFetcher performs single GET requests with per-request limits.
// It is safe for concurrent use.
type PageFetcher struct {
	cfg       Config
	transport http.RoundTripper
	robots    *RobotsChecker
	logger    *slog.Logger
}

// NewPageFetcher creates a fetcher with its own pooled transport.
// Compression is negotiated and decoded here (gzip, deflate, br), so the
// transport's transparent gzip is disabled.
func NewPageFetcher(cfg Config, logger *slog.Logger) *PageFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
	}
	f := &PageFetcher{
		cfg:       cfg,
		transport: transport,
		logger:    logger.With("component", "page_fetcher"),
	}
	f.robots = NewRobotsChecker(&http.Client{Transport: transport, Timeout: 10 * time.Second}, cfg.RobotsCacheTTL, f.logger)
	return f
}

// Fetch downloads req.URL. Errors wrap the package sentinels
// (ErrInvalidURL, ErrPrivateIP, ErrDisallowedByRobots, ErrTooManyRedirects,
// ErrTimeout, ErrBodyTooLarge) or a *StatusError.
func (f *PageFetcher) Fetch(ctx context.Context, req Request) (*Page, error) {
	start := time.Now()
	page, err := f.fetch(ctx, req)
	size := 0
	if page != nil {
		size = len(page.Body)
	}
	recordFetch(err, time.Since(start), size)
	return page, err
}

func (f *PageFetcher) fetch(ctx context.Context, req Request) (*Page, error) {
	if err := validateURL(ctx, req.URL, f.cfg.DenyPrivateIPs); err != nil {
		return nil, err
	}

	ua := req.UserAgent
	if ua == "" {
		ua = f.cfg.UserAgent
	}
	if req.RespectRobots {
		allowed, err := f.robots.Allowed(ctx, req.URL, ua)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowedByRobots, req.URL)
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = f.cfg.Timeout
	}
	maxRedirects := req.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = f.cfg.MaxRedirects
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	httpReq.Header.Set("User-Agent", ua)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	client := &http.Client{
		Transport:     f.transport,
		CheckRedirect: f.checkRedirect(maxRedirects),
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s exceeded %v", ErrTimeout, req.URL, timeout)
		}
		return nil, fmt.Errorf("fetch %s: %w", req.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: req.URL}
	}

	body, err := f.readBody(resp)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s exceeded %v", ErrTimeout, req.URL, timeout)
		}
		return nil, err
	}

	return &Page{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// checkRedirect caps the redirect chain and re-validates every hop.
func (f *PageFetcher) checkRedirect(maxRedirects int) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, len(via))
		}
		if err := validateURL(req.Context(), req.URL.String(), f.cfg.DenyPrivateIPs); err != nil {
			return fmt.Errorf("redirect target rejected: %w", err)
		}
		return nil
	}
}

// readBody decompresses, enforces MaxBodySize on the decoded stream and
// converts the declared or sniffed charset to UTF-8.
func (f *PageFetcher) readBody(resp *http.Response) ([]byte, error) {
	decoded, err := decodeContent(resp)
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(io.LimitReader(decoded, f.cfg.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(raw)) > f.cfg.MaxBodySize {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, f.cfg.MaxBodySize)
	}

	utf8Reader, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		f.logger.Debug("charset detection failed, keeping raw bytes", slog.Any("error", err))
		return raw, nil
	}
	body, err := io.ReadAll(utf8Reader)
	if err != nil {
		return raw, nil
	}
	return body, nil
}

func decodeContent(resp *http.Response) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
		return resp.Body, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		return zr, nil
	case "deflate":
		return deflateReader(resp.Body)
	case "br":
		return brotli.NewReader(resp.Body), nil
	default:
		return resp.Body, nil
	}
}

// deflateReader decodes an HTTP "deflate" body. RFC 9110 defines it as a
// zlib stream, but some servers send raw DEFLATE, so the zlib header is
// checked first.
func deflateReader(body io.Reader) (io.Reader, error) {
	br := bufio.NewReader(body)
	hdr, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("deflate decode: %w", err)
	}
	if len(hdr) == 2 && isZlibHeader(hdr[0], hdr[1]) {
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("deflate decode: %w", err)
		}
		return zr, nil
	}
	return flate.NewReader(br), nil
}

// isZlibHeader reports whether cmf/flg form a valid zlib header: method 8
// (deflate), a window of at most 32K and a check value divisible by 31.
func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && cmf>>4 <= 7 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}
