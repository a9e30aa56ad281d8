package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func rssFeed(items string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Test Feed</title>
<link>https://example.com</link>
<description>Test feed</description>
` + items + `
</channel>
</rss>`
}

func rssItem(title, link, description string, published time.Time) string {
	return fmt.Sprintf(`<item>
<title>%s</title>
<link>%s</link>
<description>%s</description>
<pubDate>%s</pubDate>
</item>`, title, link, description, published.Format(time.RFC1123Z))
}

func TestFetcher_Run(t *testing.T) {
	now := time.Now()
	feedXML := rssFeed(
		rssItem("Fresh Item", "https://example.com/fresh", "<p>Fresh   description</p>", now.Add(-1*time.Hour)) +
			rssItem("Recent Item", "https://example.com/recent", "Recent description", now.Add(-9*time.Hour)) +
			rssItem("Stale Item", "https://example.com/stale", "Stale description", now.Add(-24*time.Hour)),
	)

	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feedXML)
	}))
	defer server.Close()

	fetcher := NewFetcher(nil, "Test Agent/1.0", 5*time.Second)

	items, err := fetcher.Run(context.Background(), Source{Name: "Test Source", URL: server.URL})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if gotUserAgent != "Test Agent/1.0" {
		t.Errorf("Expected User-Agent 'Test Agent/1.0', got %q", gotUserAgent)
	}

	// The 24-hour-old entry falls outside the intake window
	if len(items) != 2 {
		t.Fatalf("Expected 2 items within the intake window, got %d", len(items))
	}

	first := items[0]
	if first.Title != "Fresh Item" {
		t.Errorf("Expected title 'Fresh Item', got %q", first.Title)
	}
	if first.Link != "https://example.com/fresh" {
		t.Errorf("Unexpected link: %q", first.Link)
	}
	if first.Source != "Test Source" {
		t.Errorf("Expected source 'Test Source', got %q", first.Source)
	}
	if first.Summary != "Fresh description" {
		t.Errorf("Expected HTML-stripped summary 'Fresh description', got %q", first.Summary)
	}
	if first.ContentHash != ContentHash("Fresh Item", "https://example.com/fresh") {
		t.Errorf("Content hash does not match title and link")
	}
}

func TestFetcher_Run_MissingPublishedDate(t *testing.T) {
	feedXML := rssFeed(`<item>
<title>Undated Item</title>
<link>https://example.com/undated</link>
<description>No date here</description>
</item>`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedXML)
	}))
	defer server.Close()

	fetcher := NewFetcher(nil, "Test Agent/1.0", 5*time.Second)

	items, err := fetcher.Run(context.Background(), Source{Name: "Test Source", URL: server.URL})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// An undated entry defaults to fetch time and stays within the window
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if time.Since(items[0].PublishedAt) > time.Minute {
		t.Errorf("Expected published date to default to fetch time, got %v", items[0].PublishedAt)
	}
}

func TestFetcher_Run_SummaryTruncation(t *testing.T) {
	longDescription := strings.Repeat("word ", 200)
	feedXML := rssFeed(rssItem("Long Item", "https://example.com/long", longDescription, time.Now()))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedXML)
	}))
	defer server.Close()

	fetcher := NewFetcher(nil, "Test Agent/1.0", 5*time.Second)

	items, err := fetcher.Run(context.Background(), Source{Name: "Test Source", URL: server.URL})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}

	summary := items[0].Summary
	if len([]rune(summary)) != summaryMaxLen+3 {
		t.Errorf("Expected summary truncated to %d runes plus ellipsis, got %d", summaryMaxLen, len([]rune(summary)))
	}
	if !strings.HasSuffix(summary, "...") {
		t.Errorf("Expected truncated summary to end with ellipsis, got %q", summary[len(summary)-10:])
	}
}

func TestFetcher_Run_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewFetcher(nil, "Test Agent/1.0", 5*time.Second)

	_, err := fetcher.Run(context.Background(), Source{Name: "Test Source", URL: server.URL})
	if err == nil {
		t.Error("Expected error for HTTP 500 response")
	}
}

func TestFetcher_Run_InvalidXML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not a feed")
	}))
	defer server.Close()

	fetcher := NewFetcher(nil, "Test Agent/1.0", 5*time.Second)

	_, err := fetcher.Run(context.Background(), Source{Name: "Test Source", URL: server.URL})
	if err == nil {
		t.Error("Expected error for unparseable feed")
	}
}

func TestFetcher_Run_PageSummaryFallback(t *testing.T) {
	paragraph := strings.Repeat("This sentence pads the article body so the extractor treats it as real content. ", 10)
	articleHTML := fmt.Sprintf(`<html><head><title>Article</title></head>
<body><article><h1>Article</h1><p>%s</p><p>%s</p></article></body></html>`, paragraph, paragraph)

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeed(fmt.Sprintf(`<item>
<title>No Summary Item</title>
<link>%s/article</link>
<pubDate>%s</pubDate>
</item>`, server.URL, time.Now().Format(time.RFC1123Z))))
	})
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articleHTML)
	})

	fetcher := NewFetcher(nil, "Test Agent/1.0", 5*time.Second)

	items, err := fetcher.Run(context.Background(), Source{Name: "Test Source", URL: server.URL + "/feed"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}

	if items[0].Summary == "" {
		t.Error("Expected summary extracted from the linked page for an entry without one")
	}
	if !strings.Contains(items[0].Summary, "pads the article body") {
		t.Errorf("Expected summary from article text, got %q", items[0].Summary)
	}
}

func TestContentHash(t *testing.T) {
	hash1 := ContentHash("Title", "https://example.com/a")
	hash2 := ContentHash("Title", "https://example.com/a")
	hash3 := ContentHash("Title", "https://example.com/b")
	hash4 := ContentHash("Other Title", "https://example.com/a")

	if hash1 != hash2 {
		t.Error("Expected identical input to produce identical hashes")
	}
	if hash1 == hash3 {
		t.Error("Expected different links to produce different hashes")
	}
	if hash1 == hash4 {
		t.Error("Expected different titles to produce different hashes")
	}
	if len(hash1) != 64 {
		t.Errorf("Expected 64-character hex hash, got %d characters", len(hash1))
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "just text", "just text"},
		{"tags removed", "<p>Hello <b>world</b></p>", "Hello world"},
		{"whitespace collapsed", "  too \n\n  many   spaces  ", "too many spaces"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripHTML(tt.input); got != tt.expected {
				t.Errorf("stripHTML(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
