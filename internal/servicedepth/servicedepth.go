// Package servicedepth crawls a lead's website to measure service
// depth: which high-ticket procedures have dedicated pages, which are
// only mentioned in copy, and which intake and trust signals the site
// carries. Everything it measures lands on the lead's raw signal bag;
// it never interprets, that is the decision layer's job.
package servicedepth

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/diagnosis-cli/internal/config"
	"github.com/sells-group/diagnosis-cli/internal/model"
)

// Crawler fetches a bounded set of pages from one practice website.
type Crawler struct {
	http    *http.Client
	limiter *rate.Limiter
	cfg     config.CrawlConfig
}

// New creates a Crawler with a sensible default HTTP client and a
// polite per-host rate limit.
func New(cfg config.CrawlConfig) *Crawler {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 6
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 2
	}
	if cfg.TimeoutSecs <= 0 {
		cfg.TimeoutSecs = 30
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 2 << 20
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "diagnosis-cli/1.0"
	}
	return &Crawler{
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		cfg:     cfg,
	}
}

// Enrich crawls the lead's website and fills the website-derived raw
// signals in place. An unreachable or missing site is a measured
// negative, not an error; Enrich fails only on inputs it cannot act
// on at all.
func (c *Crawler) Enrich(ctx context.Context, lead *model.Lead) error {
	if lead == nil {
		return eris.New("servicedepth: nil lead")
	}
	if lead.Website == "" {
		lead.HasWebsite = boolPtr(false)
		return nil
	}

	homepage, err := normalizeURL(lead.Website)
	if err != nil {
		return eris.Wrapf(err, "servicedepth: parse website %q", lead.Website)
	}
	base, err := url.Parse(homepage)
	if err != nil {
		return eris.Wrap(err, "servicedepth: parse base url")
	}

	lead.HasWebsite = boolPtr(true)

	home, err := c.fetchWithRetry(ctx, homepage)
	if err != nil {
		zap.L().Debug("servicedepth: homepage unreachable",
			zap.String("url", homepage), zap.Error(err))
		lead.WebsiteAccessible = boolPtr(false)
		return nil
	}
	lead.WebsiteAccessible = boolPtr(true)

	pages := []*page{home}
	for _, link := range serviceLinks(home, base, c.cfg.MaxPages-1) {
		p, err := c.fetchWithRetry(ctx, link)
		if err != nil {
			zap.L().Debug("servicedepth: page fetch failed",
				zap.String("url", link), zap.Error(err))
			continue
		}
		pages = append(pages, p)
	}

	analyze(lead, pages)

	zap.L().Debug("servicedepth: crawl complete",
		zap.String("lead", lead.Name),
		zap.Int("pages", lead.PagesCrawled),
		zap.Int("procedures", len(lead.ProcedureMentions)),
	)
	return nil
}

// statusError is a non-200 fetch result, kept typed so the retry
// logic can tell a transient upstream failure from a hard miss.
type statusError int

func (e statusError) Error() string {
	return "status " + strconv.Itoa(int(e))
}

func transientFetch(err error) bool {
	var se statusError
	if errors.As(err, &se) {
		return int(se) >= 500 || int(se) == http.StatusTooManyRequests
	}
	// network-level failures are worth one more try
	return true
}

// fetchWithRetry retries transient failures with doubling backoff when
// the crawl is configured for it.
func (c *Crawler) fetchWithRetry(ctx context.Context, pageURL string) (*page, error) {
	if !c.cfg.RetryOnFailure {
		return c.fetch(ctx, pageURL)
	}

	const attempts = 3
	backoff := 250 * time.Millisecond

	var p *page
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		p, err = c.fetch(ctx, pageURL)
		if err == nil || ctx.Err() != nil || !transientFetch(err) {
			return p, err
		}
		if attempt == attempts-1 {
			break
		}
		zap.L().Debug("servicedepth: retrying fetch",
			zap.String("url", pageURL),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, err
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil, err
}

// page is one fetched and minimally parsed HTML document.
type page struct {
	url   *url.URL
	title string
	h1    string
	body  string // folded lowercase text of the raw HTML
	raw   string
}

func (c *Crawler) fetch(ctx context.Context, pageURL string) (*page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Wrapf(statusError(resp.StatusCode), "fetch %s", pageURL)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "read body")
	}

	html := string(raw)
	return &page{
		url:   resp.Request.URL,
		title: extractTag(html, "title"),
		h1:    extractTag(html, "h1"),
		body:  fold(html),
		raw:   html,
	}, nil
}

// serviceLinks extracts same-host links from the homepage that look
// like service pages, capped at limit.
func serviceLinks(home *page, base *url.URL, limit int) []string {
	if limit <= 0 {
		return nil
	}
	var out []string
	seen := map[string]bool{home.url.String(): true}
	for _, link := range parseLinks(home.raw, base) {
		if len(out) >= limit {
			break
		}
		if seen[link] {
			continue
		}
		seen[link] = true
		u, err := url.Parse(link)
		if err != nil {
			continue
		}
		if serviceLikePath(u.Path) {
			out = append(out, link)
		}
	}
	return out
}

// parseLinks does a simple extraction of href attributes from HTML,
// keeping same-host absolute URLs with fragments stripped.
func parseLinks(html string, base *url.URL) []string {
	var links []string
	seen := make(map[string]bool)

	idx := 0
	for {
		pos := strings.Index(html[idx:], "href=\"")
		if pos == -1 {
			break
		}
		idx += pos + 6

		end := strings.Index(html[idx:], "\"")
		if end == -1 {
			break
		}

		href := html[idx : idx+end]
		idx += end + 1

		if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
			continue
		}

		resolved, err := url.Parse(href)
		if err != nil {
			continue
		}
		absolute := base.ResolveReference(resolved)
		if absolute.Host != base.Host {
			continue
		}

		absolute.Fragment = ""
		normalized := absolute.String()
		if !seen[normalized] {
			seen[normalized] = true
			links = append(links, normalized)
		}
	}

	return links
}

// extractTag returns the inner text of the first occurrence of the
// given tag, with nested markup stripped.
func extractTag(html, tag string) string {
	lower := strings.ToLower(html)
	open := strings.Index(lower, "<"+tag)
	if open == -1 {
		return ""
	}
	start := strings.Index(lower[open:], ">")
	if start == -1 {
		return ""
	}
	start += open + 1
	end := strings.Index(lower[start:], "</"+tag+">")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(stripTags(html[start : start+end]))
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeURL(raw string) (string, error) {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", eris.Errorf("no host in %q", raw)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

func boolPtr(b bool) *bool { return &b }
