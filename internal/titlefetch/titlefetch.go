// Package titlefetch resolves the <title> of a page on a best-effort basis.
// Every failure collapses into an absent title; nothing is returned as an error.
package titlefetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/sundayezeilo/readit/internal/metrics"
)

const (
	DefaultTimeout  = 5 * time.Second
	DefaultMaxBytes = 1 << 20
)

// First <title> element only; a permissive match rather than a parse.
var titlePattern = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)

// Resolver fetches a URL once and extracts its title.
type Resolver struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	maxBytes  int64
	logger    *slog.Logger
}

// Config holds configuration for the resolver.
type Config struct {
	Client   *http.Client
	SiteURL  string // advertised in the User-Agent
	Timeout  time.Duration
	MaxBytes int64
	Logger   *slog.Logger
}

// New creates a Resolver. Zero values fall back to the package defaults.
func New(cfg Config) *Resolver {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		client:    client,
		userAgent: fmt.Sprintf("Mozilla/5.0 (compatible; Readit/0.1; +%s)", cfg.SiteURL),
		timeout:   timeout,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// Resolve returns the trimmed page title and true, or "" and false when the
// page is unreachable, answers non-2xx, or has no usable title.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return r.fail(ctx, rawURL, "build request", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return r.fail(ctx, rawURL, "fetch", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.logger.DebugContext(ctx, "title fetch non-success status",
			"url", rawURL,
			"status", resp.StatusCode,
		)
		metrics.TitleResolutionsTotal.WithLabelValues("miss").Inc()
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes))
	if err != nil {
		return r.fail(ctx, rawURL, "read body", err)
	}

	body = decode(body, resp.Header.Get("Content-Type"))

	title, ok := Extract(body)
	if !ok {
		metrics.TitleResolutionsTotal.WithLabelValues("miss").Inc()
		return "", false
	}

	metrics.TitleResolutionsTotal.WithLabelValues("ok").Inc()
	return title, true
}

func (r *Resolver) fail(ctx context.Context, rawURL, stage string, err error) (string, bool) {
	r.logger.WarnContext(ctx, "title fetch failed",
		"url", rawURL,
		"stage", stage,
		"error", err.Error(),
	)
	metrics.TitleResolutionsTotal.WithLabelValues("error").Inc()
	return "", false
}

// decode converts body to UTF-8 using the Content-Type charset, a <meta>
// declaration, or a windows-1252 fallback for bytes that are not UTF-8.
func decode(body []byte, contentType string) []byte {
	enc, _, _ := charset.DetermineEncoding(body, contentType)
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return out
}

// Extract returns the trimmed text of the first <title> element in body.
// Entities are left as they appear. The result is always valid UTF-8 with no
// NUL bytes; undecodable bytes become U+FFFD.
func Extract(body []byte) (string, bool) {
	m := titlePattern.FindSubmatch(body)
	if m == nil {
		return "", false
	}
	title := strings.ToValidUTF8(string(m[1]), "\uFFFD")
	title = strings.ReplaceAll(title, "\x00", "")
	title = strings.TrimSpace(title)
	if title == "" {
		return "", false
	}
	return title, true
}
