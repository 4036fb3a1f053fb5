package handlers

import (
	"context"
	"net/http"
	"strconv"

	"storefront/internal/events"
	"storefront/internal/logger"
	"storefront/internal/models"

	"github.com/gin-gonic/gin"
)

// SnapshotSyncer copies catalog categories into the database.
type SnapshotSyncer interface {
	SyncCategory(ctx context.Context, category models.Category) (*models.SyncRun, error)
	Snapshot(ctx context.Context, category models.Category) ([]models.Product, error)
	Runs(ctx context.Context, category models.Category, limit int) ([]models.SyncRun, error)
}

type SyncHandler struct {
	syncer    SnapshotSyncer
	publisher events.Publisher
	topic     string
	logger    *logger.Logger
}

func NewSyncHandler(syncer SnapshotSyncer, publisher events.Publisher, topic string, logger *logger.Logger) *SyncHandler {
	return &SyncHandler{
		syncer:    syncer,
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}
}

// Sync runs a snapshot sync inline, or queues it for the worker with ?async=true.
func (h *SyncHandler) Sync(c *gin.Context) {
	category, err := models.ParseCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	async, _ := strconv.ParseBool(c.DefaultQuery("async", "false"))
	if async {
		event := events.Event{Type: events.TypeCatalogSyncRequest, Category: category}
		if err := h.publisher.Publish(c.Request.Context(), h.topic, event); err != nil {
			h.logger.Error("Failed to queue sync for %s: %v", category, err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to queue sync"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "Sync queued", "category": category})
		return
	}

	run, err := h.syncer.SyncCategory(c.Request.Context(), category)
	if err != nil {
		h.logger.Error("Failed to sync %s: %v", category, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "data": run})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sync completed",
		"data":    run,
	})
}

func (h *SyncHandler) Snapshot(c *gin.Context) {
	category, err := models.ParseCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, err := h.syncer.Snapshot(c.Request.Context(), category)
	if err != nil {
		h.logger.Error("Failed to load snapshot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load snapshot"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  products,
		"total": len(products),
	})
}

func (h *SyncHandler) Runs(c *gin.Context) {
	var category models.Category
	if v := c.Query("category"); v != "" {
		parsed, err := models.ParseCategory(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		category = parsed
	}

	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runs, err := h.syncer.Runs(c.Request.Context(), category, limit)
	if err != nil {
		h.logger.Error("Failed to load sync runs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load sync runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": runs})
}
