package handlers

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/api/middleware"
	"storefront/internal/cart"
	"storefront/internal/events"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/services/scayle"

	"github.com/gin-gonic/gin"
)

const defaultPublishTimeout = 2 * time.Second

type CartHandler struct {
	carts          *cart.Registry
	catalog        *scayle.Catalog
	publisher      events.Publisher
	topic          string
	publishTimeout time.Duration
	logger         *logger.Logger
}

func NewCartHandler(carts *cart.Registry, c *scayle.Catalog, publisher events.Publisher, topic string, publishTimeout time.Duration, logger *logger.Logger) *CartHandler {
	if publishTimeout <= 0 {
		publishTimeout = defaultPublishTimeout
	}
	return &CartHandler{
		carts:          carts,
		catalog:        c,
		publisher:      publisher,
		topic:          topic,
		publishTimeout: publishTimeout,
		logger:         logger,
	}
}

// Get never creates a cart; a session without one sees an empty state.
func (h *CartHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.snapshot(c)})
}

// AddItem resolves the product from the catalog API so the cart carries the
// current price, then adds it to the session's cart.
func (h *CartHandler) AddItem(c *gin.Context) {
	var request struct {
		ProductID string `json:"product_id" binding:"required"`
		Category  string `json:"category" binding:"required"`
		Quantity  int    `json:"quantity"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := models.ParseCategory(request.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adapter, ok := h.catalog.Adapter(category)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	product, err := adapter.FetchByID(c.Request.Context(), request.ProductID)
	if err != nil {
		respondUpstreamError(c, h.logger, err)
		return
	}

	quantity := max(request.Quantity, 1)
	store := h.store(c)
	store.Add(product, quantity)

	h.publish(c, events.Event{
		Type:      events.TypeCartItemAdded,
		ProductID: product.ID,
		Category:  product.Category,
		Quantity:  quantity,
	})

	c.JSON(http.StatusOK, gin.H{"data": store.Snapshot()})
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	var request struct {
		Quantity *int `json:"quantity" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	productID := c.Param("id")
	if store, ok := h.existing(c); ok {
		store.UpdateQuantity(productID, *request.Quantity)
	}

	h.publish(c, events.Event{
		Type:      events.TypeCartQuantityUpdated,
		ProductID: productID,
		Quantity:  *request.Quantity,
	})

	c.JSON(http.StatusOK, gin.H{"data": h.snapshot(c)})
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID := c.Param("id")
	if store, ok := h.existing(c); ok {
		store.Remove(productID)
	}

	h.publish(c, events.Event{Type: events.TypeCartItemRemoved, ProductID: productID})

	c.JSON(http.StatusOK, gin.H{"data": h.snapshot(c)})
}

func (h *CartHandler) Clear(c *gin.Context) {
	if store, ok := h.existing(c); ok {
		store.Clear()
	}

	h.publish(c, events.Event{Type: events.TypeCartCleared})

	c.JSON(http.StatusOK, gin.H{"data": h.snapshot(c)})
}

func (h *CartHandler) Toggle(c *gin.Context) {
	store := h.store(c)
	store.ToggleVisibility()

	c.JSON(http.StatusOK, gin.H{"data": store.Snapshot()})
}

// store returns the session's cart, creating it. Only Add and Toggle call it.
func (h *CartHandler) store(c *gin.Context) *cart.Store {
	return h.carts.Get(middleware.SessionID(c))
}

func (h *CartHandler) existing(c *gin.Context) (*cart.Store, bool) {
	return h.carts.Lookup(middleware.SessionID(c))
}

func (h *CartHandler) snapshot(c *gin.Context) cart.State {
	if store, ok := h.existing(c); ok {
		return store.Snapshot()
	}
	return cart.State{Items: []cart.LineItem{}}
}

// publish never fails the request; cart activity events are best effort.
func (h *CartHandler) publish(c *gin.Context, event events.Event) {
	event.SessionID = middleware.SessionID(c).String()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), h.publishTimeout)
	defer cancel()

	if err := h.publisher.Publish(ctx, h.topic, event); err != nil {
		h.logger.Warn("Failed to publish %s: %v", event.Type, err)
	}
}
