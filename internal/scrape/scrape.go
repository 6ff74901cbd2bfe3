// Package scrape fetches a URL and extracts its readable text. It
// tries a paragraph-level extractor first; when that yields too little
// content it falls back to whole-body text, and errors only when both
// layers come up empty. Fetched pages are cached briefly so repeated
// reads of the same URL skip the network.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Page is a fetched, normalized document.
type Page struct {
	URL   string
	Title string
	Text  string
}

// ErrNoContent is returned when neither extraction layer produced any
// text for the URL.
var ErrNoContent = errors.New("no extractable content")

// Config for the fetcher.
type Config struct {
	Timeout time.Duration

	// MinContent is the sufficiency floor in runes; a primary
	// extraction below it triggers the secondary extractor.
	MinContent int

	// CacheTTL bounds how long a fetched page is reused.
	CacheTTL time.Duration
}

// Fetcher retrieves and extracts pages.
type Fetcher struct {
	client *http.Client
	cache  *ristretto.Cache
	cfg    Config
	log    *zap.Logger
}

const maxBodyBytes = 4 << 20 // pages larger than this are truncated

// NewFetcher builds a fetcher with its page cache.
func NewFetcher(cfg Config, log *zap.Logger) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MinContent == 0 {
		cfg.MinContent = 200
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 12,
		MaxCost:     32 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create page cache: %w", err)
	}
	return &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
		cfg:    cfg,
		log:    log.Named("scrape"),
	}, nil
}

// Fetch downloads url and extracts its text.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	if cached, ok := f.cache.Get(url); ok {
		if page, ok := cached.(*Page); ok {
			f.log.Debug("cache hit", zap.String("url", url))
			return page, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; dobby/1.0)")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	page, err := f.extract(doc, url)
	if err != nil {
		return nil, err
	}

	f.cache.SetWithTTL(url, page, int64(len(page.Text)), f.cfg.CacheTTL)
	return page, nil
}

// extract runs the two extraction layers over a parsed document.
func (f *Fetcher) extract(doc *html.Node, url string) (*Page, error) {
	title := findTitle(doc)

	text := paragraphText(doc)
	if runeLen(text) < f.cfg.MinContent {
		f.log.Debug("primary extraction insufficient, falling back",
			zap.String("url", url),
			zap.Int("got", runeLen(text)),
			zap.Int("want", f.cfg.MinContent))
		text = bodyText(doc)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoContent, url)
	}

	return &Page{URL: url, Title: title, Text: text}, nil
}

// paragraphText is the primary extractor: the joined text of all <p>
// elements, which skips navigation chrome on most article pages.
func paragraphText(doc *html.Node) string {
	var parts []string
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "p" {
			if t := strings.TrimSpace(nodeText(n)); t != "" {
				parts = append(parts, t)
			}
			return false // don't descend into nested content again
		}
		return true
	})
	return strings.Join(parts, "\n\n")
}

// bodyText is the secondary extractor: all text under <body>, scripts
// and styles excluded.
func bodyText(doc *html.Node) string {
	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}
	return strings.Join(strings.Fields(nodeText(body)), " ")
}

func findTitle(doc *html.Node) string {
	if n := findElement(doc, "title"); n != nil {
		return strings.TrimSpace(nodeText(n))
	}
	return ""
}

func findElement(n *html.Node, name string) *html.Node {
	var found *html.Node
	walk(n, func(node *html.Node) bool {
		if found != nil {
			return false
		}
		if node.Type == html.ElementNode && node.Data == name {
			found = node
			return false
		}
		return true
	})
	return found
}

// nodeText concatenates all text under n, skipping non-content tags.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(node *html.Node) bool {
		if node.Type == html.ElementNode {
			switch node.Data {
			case "script", "style", "noscript", "iframe":
				return false
			}
		}
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		return true
	})
	return sb.String()
}

// walk visits n and its children depth-first; fn returning false
// prunes the subtree.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func runeLen(s string) int {
	return len([]rune(s))
}
