package douyin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dyscraper/pkg/config"
	errs "dyscraper/pkg/errors"
	"dyscraper/pkg/logger"
)

// HeaderProvider supplies per-request credentials such as the session
// cookie. The client treats the values as opaque.
type HeaderProvider interface {
	Headers(ctx context.Context) (map[string]string, error)
}

// StaticHeaders is a HeaderProvider that always returns the same headers
type StaticHeaders map[string]string

func (s StaticHeaders) Headers(ctx context.Context) (map[string]string, error) {
	return s, nil
}

// Client fetches creator post listings from Douyin. It performs no retries.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	provider   HeaderProvider
	baseURL    string
	pageSize   int
	logger     logger.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithHeaderProvider injects session credentials
func WithHeaderProvider(p HeaderProvider) Option {
	return func(c *Client) {
		c.provider = p
	}
}

// NewClient creates a new Douyin API client
func NewClient(cfg *config.DouyinConfig, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	acceptLanguage := cfg.AcceptLanguage
	if acceptLanguage == "" {
		acceptLanguage = "vi"
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"Accept":             "application/json, text/plain, */*",
			"Accept-Language":    acceptLanguage,
			"Sec-Ch-Ua":          `"Not?A_Brand";v="8", "Chromium";v="118", "Microsoft Edge";v="118"`,
			"Sec-Ch-Ua-Mobile":   "?0",
			"Sec-Ch-Ua-Platform": `"Windows"`,
			"Sec-Fetch-Dest":     "empty",
			"Sec-Fetch-Mode":     "cors",
			"Sec-Fetch-Site":     "same-origin",
			"User-Agent":         cfg.UserAgent,
		},
		baseURL:  baseURL,
		pageSize: cfg.PageSize,
		logger:   log,
	}
	if cfg.Cookie != "" {
		c.headers["Cookie"] = cfg.Cookie
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPage requests one page of secUserID's posts starting at cursor
func (c *Client) FetchPage(ctx context.Context, secUserID, cursor string) (*Page, error) {
	url := GetPostListURL(c.baseURL, secUserID, cursor, c.pageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, 0, err, "failed to create request")
	}
	if err := c.applyHeaders(ctx, req, secUserID); err != nil {
		return nil, err
	}

	var page Page
	if err := c.getJSON(req, &page); err != nil {
		return nil, err
	}

	if page.Items == nil {
		c.logger.WarnWithFields("response has no aweme_list, treating as last page", map[string]interface{}{
			"sec_user_id": secUserID,
			"cursor":      cursor,
			"status_code": page.StatusCode,
		})
		page.HasMore = false
	}

	c.logger.DebugWithFields("fetched post page", map[string]interface{}{
		"sec_user_id": secUserID,
		"cursor":      cursor,
		"items":       len(page.Items),
		"has_more":    bool(page.HasMore),
		"next_cursor": page.MaxCursor.String(),
	})
	return &page, nil
}

func (c *Client) applyHeaders(ctx context.Context, req *http.Request, secUserID string) error {
	for key, value := range c.headers {
		if value != "" {
			req.Header.Set(key, value)
		}
	}
	req.Header.Set("Referer", GetProfileURL(c.baseURL, secUserID))

	if c.provider == nil {
		return nil
	}
	extra, err := c.provider.Headers(ctx)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeUnknown, 0, err, "failed to resolve credentials")
	}
	for key, value := range extra {
		if value != "" {
			req.Header.Set(key, value)
		}
	}
	return nil
}

// getJSON performs req and decodes a 2xx JSON body into target
func (c *Client) getJSON(req *http.Request, target interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.WithError(err).DebugWithFields("HTTP request failed", map[string]interface{}{
			"url":      req.URL.String(),
			"duration": duration,
		})
		return errs.Wrap(errs.ErrorTypeNetwork, 0, err, "request failed")
	}
	defer resp.Body.Close()

	logger.LogRequest(c.logger, req.Method, req.URL.Path, resp.StatusCode, duration)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return errs.New(errs.TypeForStatusCode(resp.StatusCode), resp.StatusCode,
			fmt.Sprintf("HTTP Error: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeNetwork, resp.StatusCode, err, "failed to read response body")
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.WithError(err).WarnWithFields("failed to parse JSON response", map[string]interface{}{
			"status":       resp.StatusCode,
			"body_preview": bodyPreview,
		})
		return errs.Wrap(errs.ErrorTypeParsing, resp.StatusCode, err, "failed to parse JSON")
	}

	return nil
}
