package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/news-digest/app/database"
)

// ItemReader is the read-only slice of the item store the API exposes.
type ItemReader interface {
	GetStatistics() (*database.Statistics, error)
	GetRecentItems(limit int) ([]database.Item, error)
}

// DeliveryLogReader exposes recent delivery history.
type DeliveryLogReader interface {
	RecentEntries(limit int) ([]database.DeliveryLogEntry, error)
}

type Handler struct {
	items       ItemReader
	deliveryLog DeliveryLogReader
	version     string
}

func NewHandler(items ItemReader, deliveryLog DeliveryLogReader, version string) *Handler {
	return &Handler{
		items:       items,
		deliveryLog: deliveryLog,
		version:     version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.items.GetStatistics()
	if err != nil {
		slog.Error("Database error", "operation", "get_statistics", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	recent, err := h.items.GetRecentItems(20)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_items", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	deliveries, err := h.deliveryLog.RecentEntries(10)
	if err != nil {
		slog.Error("Database error", "operation", "get_delivery_log", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	recentItems := make([]gin.H, 0, len(recent))
	for _, item := range recent {
		recentItems = append(recentItems, gin.H{
			"title":        item.Title,
			"link":         item.Link,
			"source":       item.Source,
			"published_at": item.PublishedAt.Format(time.RFC3339),
			"sent":         item.Sent,
		})
	}

	recentDeliveries := make([]gin.H, 0, len(deliveries))
	for _, entry := range deliveries {
		recentDeliveries = append(recentDeliveries, gin.H{
			"logged_at":  entry.LoggedAt.Format(time.RFC3339),
			"item_count": entry.ItemCount,
			"success":    entry.Success,
			"error":      entry.ErrorMessage,
		})
	}

	var lastSend string
	if stats.LastSuccessfulSendAt != nil {
		lastSend = stats.LastSuccessfulSendAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, gin.H{
		"total_items":       stats.TotalItems,
		"unsent_items":      stats.UnsentItems,
		"sent_items":        stats.SentItems,
		"last_send":         lastSend,
		"items_by_source":   stats.ItemsBySource,
		"recent_items":      recentItems,
		"recent_deliveries": recentDeliveries,
	})
}
