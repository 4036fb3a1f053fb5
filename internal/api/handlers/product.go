package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/services/scayle"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	catalog  *scayle.Catalog
	pipeline *catalog.Pipeline
	logger   *logger.Logger
}

func NewProductHandler(c *scayle.Catalog, pipeline *catalog.Pipeline, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		catalog:  c,
		pipeline: pipeline,
		logger:   logger,
	}
}

// ListAll serves the home page mix of glasses, sunglasses and accessories.
func (h *ProductHandler) ListAll(c *gin.Context) {
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.catalog.FetchAll(c.Request.Context(), limit))
}

// List fetches one category and runs it through search and the filter pipeline.
func (h *ProductHandler) List(c *gin.Context) {
	adapter, ok := h.adapter(c)
	if !ok {
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, err := adapter.Fetch(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result := h.pipeline.Apply(catalog.Search(products, c.Query("q")), filter)

	c.JSON(http.StatusOK, gin.H{
		"data":   result,
		"brands": catalog.Brands(products),
		"total":  len(result),
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	adapter, ok := h.adapter(c)
	if !ok {
		return
	}

	product, err := adapter.FetchByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (h *ProductHandler) Brands(c *gin.Context) {
	adapter, ok := h.adapter(c)
	if !ok {
		return
	}

	brands, err := adapter.Brands(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": brands})
}

func (h *ProductHandler) adapter(c *gin.Context) (*scayle.Adapter, bool) {
	category, err := models.ParseCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	adapter, ok := h.catalog.Adapter(category)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return nil, false
	}
	return adapter, true
}

func (h *ProductHandler) respondError(c *gin.Context, err error) {
	respondUpstreamError(c, h.logger, err)
}

// respondUpstreamError maps catalog API failures onto HTTP statuses.
func respondUpstreamError(c *gin.Context, logger *logger.Logger, err error) {
	if errors.Is(err, scayle.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	logger.Error("Catalog request failed: %v", err)
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

// parseFilter reads the filter query parameters on top of the page defaults.
func parseFilter(c *gin.Context) (catalog.FilterState, error) {
	filter := catalog.DefaultFilter()

	if v := c.Query("min_price"); v != "" {
		minPrice, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, fmt.Errorf("%w: min_price %q", catalog.ErrInvalidFilter, v)
		}
		filter.PriceRange.Min = minPrice
	}

	if v := c.Query("max_price"); v != "" {
		maxPrice, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, fmt.Errorf("%w: max_price %q", catalog.ErrInvalidFilter, v)
		}
		filter.PriceRange.Max = maxPrice
	}

	for _, brand := range c.QueryArray("brand") {
		if brand = strings.TrimSpace(brand); brand != "" {
			filter.Brands = append(filter.Brands, brand)
		}
	}

	if v := c.Query("in_stock"); v != "" {
		inStock, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("%w: in_stock %q", catalog.ErrInvalidFilter, v)
		}
		filter.InStock = &inStock
	}

	if v := c.Query("sort"); v != "" {
		filter.SortBy = catalog.SortKey(v)
	}

	return filter, filter.Validate()
}

func queryInt(c *gin.Context, key string, defaultValue int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}
