package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/newsdigest/internal/cache"
)

// ErrFetch is wrapped by every error Get returns: transport failures,
// timeouts, non-2xx statuses and non-HTML responses.
var ErrFetch = errors.New("fetch failed")

// DefaultTimeout bounds a single request when PerRequestTimeout is zero.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a page is read into memory.
const maxBodyBytes = 8 << 20

// Client wraps http.Client with the headers news sites expect, a
// per-request timeout and an optional conditional-GET cache.
// A request is attempted exactly once.
type Client struct {
	HTTPClient     *http.Client
	UserAgent      string
	AcceptLanguage string
	// PerRequestTimeout bounds each request. Zero means DefaultTimeout.
	PerRequestTimeout time.Duration
	// Optional on-disk cache for HTTP GET bodies and validators.
	Cache *cache.HTTPCache
	// If true, skip conditional headers but still store the fresh response.
	BypassCache bool
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirectFunc()}
}

func (c *Client) timeout() time.Duration {
	if c.PerRequestTimeout > 0 {
		return c.PerRequestTimeout
	}
	return DefaultTimeout
}

// Get issues a GET and returns the body and content type.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}

	res, err := c.do(ctx, rawURL, etag, lastMod)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrFetch, rawURL, err)
	}
	if res.status == http.StatusNotModified && c.Cache != nil {
		if cached, err := c.Cache.LoadBody(ctx, rawURL); err == nil {
			return cached, res.contentType, nil
		}
		return nil, "", fmt.Errorf("%w: %s: not modified but cache body missing", ErrFetch, rawURL)
	}
	if c.Cache != nil && res.status == http.StatusOK {
		if err := c.Cache.Save(ctx, rawURL, res.contentType, res.etag, res.lastModified, res.body); err != nil {
			log.Warn().Err(err).Str("url", rawURL).Msg("http cache write failed")
		}
	}
	return res.body, res.contentType, nil
}

type response struct {
	body         []byte
	contentType  string
	etag         string
	lastModified string
	status       int
}

func (c *Client) do(ctx context.Context, rawURL, etag, lastMod string) (response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("new request: %w", err)
	}
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return response{}, fmt.Errorf("unsupported URL scheme: %q", rawURL)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", c.AcceptLanguage)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	out := response{
		contentType:  resp.Header.Get("Content-Type"),
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
		status:       resp.StatusCode,
	}
	if resp.StatusCode == http.StatusNotModified {
		return out, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if !isAllowedHTMLContentType(out.contentType) {
		return response{}, fmt.Errorf("unsupported content type: %s", out.contentType)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return response{}, fmt.Errorf("read body: %w", err)
	}
	out.body = b
	return out, nil
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		// Carry our headers across hops; net/http only copies some of them.
		if len(via) > 0 {
			for _, h := range []string{"User-Agent", "Accept-Language"} {
				if v := via[0].Header.Get(h); v != "" {
					req.Header.Set(h, v)
				}
			}
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// isAllowedHTMLContentType accepts HTML and XHTML. An absent header is
// allowed because some sites omit it on article pages.
func isAllowedHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" {
		return true
	}
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}
