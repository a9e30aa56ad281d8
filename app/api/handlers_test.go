package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lysyi3m/news-digest/app/database"
)

type mockItemReader struct {
	stats    *database.Statistics
	statsErr error
	recent   []database.Item
}

func (m *mockItemReader) GetStatistics() (*database.Statistics, error) {
	return m.stats, m.statsErr
}

func (m *mockItemReader) GetRecentItems(limit int) ([]database.Item, error) {
	if limit < len(m.recent) {
		return m.recent[:limit], nil
	}
	return m.recent, nil
}

type mockDeliveryLogReader struct {
	entries []database.DeliveryLogEntry
}

func (m *mockDeliveryLogReader) RecentEntries(limit int) ([]database.DeliveryLogEntry, error) {
	return m.entries, nil
}

func TestHandler_GetHealth(t *testing.T) {
	handler := NewHandler(&mockItemReader{}, &mockDeliveryLogReader{}, "1.2.3")
	server := NewServer(handler)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status 'ok', got %q", body["status"])
	}
	if body["version"] != "1.2.3" {
		t.Errorf("Expected version '1.2.3', got %q", body["version"])
	}
}

func TestHandler_GetStats(t *testing.T) {
	lastSend := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	items := &mockItemReader{
		stats: &database.Statistics{
			TotalItems:           5,
			UnsentItems:          2,
			SentItems:            3,
			LastSuccessfulSendAt: &lastSend,
			ItemsBySource:        map[string]int{"Test Source": 5},
		},
		recent: []database.Item{
			{ID: 1, Title: "Recent item", Link: "https://example.com/1", Source: "Test Source", PublishedAt: lastSend, Sent: true},
		},
	}
	deliveries := &mockDeliveryLogReader{
		entries: []database.DeliveryLogEntry{
			{ID: 1, LoggedAt: lastSend, ItemCount: 3, Success: true},
		},
	}

	server := NewServer(NewHandler(items, deliveries, "1.2.3"))

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body struct {
		TotalItems    int            `json:"total_items"`
		UnsentItems   int            `json:"unsent_items"`
		SentItems     int            `json:"sent_items"`
		LastSend      string         `json:"last_send"`
		ItemsBySource map[string]int `json:"items_by_source"`
		RecentItems   []struct {
			Title string `json:"title"`
			Sent  bool   `json:"sent"`
		} `json:"recent_items"`
		RecentDeliveries []struct {
			ItemCount int  `json:"item_count"`
			Success   bool `json:"success"`
		} `json:"recent_deliveries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if body.TotalItems != 5 || body.UnsentItems != 2 || body.SentItems != 3 {
		t.Errorf("Unexpected counts: %+v", body)
	}
	if body.LastSend != "2025-06-01T12:00:00Z" {
		t.Errorf("Unexpected last send time: %q", body.LastSend)
	}
	if body.ItemsBySource["Test Source"] != 5 {
		t.Errorf("Unexpected per-source counts: %v", body.ItemsBySource)
	}
	if len(body.RecentItems) != 1 || body.RecentItems[0].Title != "Recent item" || !body.RecentItems[0].Sent {
		t.Errorf("Unexpected recent items: %+v", body.RecentItems)
	}
	if len(body.RecentDeliveries) != 1 || body.RecentDeliveries[0].ItemCount != 3 {
		t.Errorf("Unexpected recent deliveries: %+v", body.RecentDeliveries)
	}
}

func TestHandler_GetStats_DatabaseError(t *testing.T) {
	items := &mockItemReader{statsErr: errors.New("database locked")}
	server := NewServer(NewHandler(items, &mockDeliveryLogReader{}, "1.2.3"))

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}
