package enrich

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// PageFetcher scrapes a page's title and meta description.
type PageFetcher struct {
	client *http.Client
	logger *zap.Logger
}

// NewPageFetcher wires an HTTP client; a zero timeout falls back to 10s.
func NewPageFetcher(timeout time.Duration, logger *zap.Logger) *PageFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageFetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch returns the page's title/description, or ok=false on any failure.
// Enrichment absence is never fatal to a run.
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) (Partial, bool) {
	partial, err := f.fetch(ctx, pageURL)
	if err != nil {
		f.logger.Debug("page metadata unavailable",
			zap.String("url", pageURL),
			zap.Error(err),
		)
		return Partial{}, false
	}
	if partial.IsZero() {
		return Partial{}, false
	}
	return partial, true
}

func (f *PageFetcher) fetch(ctx context.Context, pageURL string) (Partial, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Partial{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "curator/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return Partial{}, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Partial{}, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Partial{}, fmt.Errorf("parse document: %w", err)
	}

	partial := Partial{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		partial.Summary = strings.TrimSpace(desc)
	}
	if partial.Summary == "" {
		if desc, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
			partial.Summary = strings.TrimSpace(desc)
		}
	}
	return partial, nil
}
