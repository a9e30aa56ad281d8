package feed

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

// Entries older than this relative to fetch time are discarded before
// scoring; the periodic cycle is short enough that anything older has
// already been seen or is stale.
const intakeWindow = 10 * time.Hour

const summaryMaxLen = 300

type Fetcher struct {
	httpClient   *http.Client
	gofeedParser *gofeed.Parser
	userAgent    string
	timeout      time.Duration
}

func NewFetcher(httpClient *http.Client, userAgent string, timeout time.Duration) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Fetcher{
		httpClient:   httpClient,
		gofeedParser: gofeed.NewParser(),
		userAgent:    userAgent,
		timeout:      timeout,
	}
}

// Run fetches one source and returns its entries normalized into Items.
// Entries outside the intake window are dropped here, before scoring.
func (f *Fetcher) Run(ctx context.Context, source Source) ([]Item, error) {
	data, err := f.fetch(ctx, source.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	parsed, err := f.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	now := time.Now()
	items := make([]Item, 0, len(parsed.Items))

	for _, entry := range parsed.Items {
		published := now
		if entry.PublishedParsed != nil {
			published = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			published = *entry.UpdatedParsed
		}

		if now.Sub(published) > intakeWindow {
			continue
		}

		summary := stripHTML(entry.Description)
		if summary == "" && entry.Content != "" {
			summary = stripHTML(entry.Content)
		}
		if summary == "" {
			summary = f.extractPageSummary(ctx, entry.Link)
		}

		item := Item{
			Title:       entry.Title,
			Link:        entry.Link,
			Summary:     truncate(summary, summaryMaxLen),
			Source:      source.Name,
			PublishedAt: published,
		}
		item.ContentHash = ContentHash(item.Title, item.Link)

		items = append(items, item)
	}

	slog.Debug("Feed fetched", "source", source.Name, "total", len(parsed.Items), "within_window", len(items))

	return items, nil
}

func (f *Fetcher) fetch(ctx context.Context, feedURL string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// extractPageSummary fetches the linked article and takes a readable
// excerpt. Backup path for feeds that publish entries without summaries;
// failures degrade to an empty summary rather than failing the entry.
func (f *Fetcher) extractPageSummary(ctx context.Context, link string) string {
	if link == "" {
		return ""
	}

	pageURL, err := url.Parse(link)
	if err != nil {
		return ""
	}

	data, err := f.fetch(ctx, link)
	if err != nil {
		slog.Debug("Page fetch for summary extraction failed", "link", link, "error", err)
		return ""
	}

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		slog.Debug("Summary extraction failed", "link", link, "error", err)
		return ""
	}

	return strings.Join(strings.Fields(article.TextContent), " ")
}

// ContentHash derives the deduplication key from an item's title and link.
func ContentHash(title, link string) string {
	content := fmt.Sprintf("%s|%s", title, link)

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

func stripHTML(input string) string {
	if input == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return strings.TrimSpace(input)
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
