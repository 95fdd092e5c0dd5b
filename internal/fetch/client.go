package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"elexmd/internal/config"
)

// ResultFile is one downloadable raw results file discovered on a
// state results index page.
type ResultFile struct {
	Name string
	URL  string
}

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *rateLimiter
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.FetchTimeoutMs) * time.Millisecond},
		limiter:    newRateLimiter(cfg.FetchRateLimitRPS),
	}
}

// DiscoverResultFiles scrapes the index page for links to CSV result
// files, resolving relative hrefs against the page URL.
func (c *Client) DiscoverResultFiles(ctx context.Context, indexURL string) ([]ResultFile, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, fmt.Errorf("bad index url %q: %w", indexURL, err)
	}

	body, err := c.get(ctx, indexURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var files []ResultFile
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.HasSuffix(strings.ToLower(href), ".csv") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref).String()
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		files = append(files, ResultFile{Name: path.Base(ref.Path), URL: resolved})
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Download fetches one result file into destDir and returns the local
// path. Requests are rate limited to stay polite to the source.
func (c *Client) Download(ctx context.Context, file ResultFile, destDir string) (string, error) {
	body, err := c.get(ctx, file.URL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(destDir, file.Name)
	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, body); err != nil {
		_ = out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dest, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	c.limiter.waitTurn()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %d", rawURL, resp.StatusCode)
	}
	return resp.Body, nil
}

// rateLimiter spaces requests at a fixed interval.
type rateLimiter struct {
	mu            sync.Mutex
	nextAllowedAt time.Time
	interval      time.Duration
}

func newRateLimiter(requestsPerSecond int) *rateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &rateLimiter{interval: time.Second / time.Duration(requestsPerSecond)}
}

func (r *rateLimiter) waitTurn() {
	r.mu.Lock()
	now := time.Now()
	scheduled := now
	if r.nextAllowedAt.After(now) {
		scheduled = r.nextAllowedAt
	}
	r.nextAllowedAt = scheduled.Add(r.interval)
	r.mu.Unlock()

	if sleep := time.Until(scheduled); sleep > 0 {
		time.Sleep(sleep)
	}
}
