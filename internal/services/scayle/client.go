package scayle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront/internal/logger"
)

var (
	// ErrInvalidResponse is returned when the list response carries no entities array.
	ErrInvalidResponse = errors.New("invalid API response structure")
	ErrProductNotFound = errors.New("product not found")
)

// APIError reports a non-2xx answer from the catalog API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// ProductQuery describes one page of a category listing.
type ProductQuery struct {
	Page       int
	PerPage    int
	CategoryID int
	With       []string
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	page := q.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	if q.PerPage > 0 {
		v.Set("perPage", strconv.Itoa(q.PerPage))
	}
	if q.CategoryID > 0 {
		v.Set("filters[category]", strconv.Itoa(q.CategoryID))
	}
	if len(q.With) > 0 {
		v.Set("with", strings.Join(q.With, ","))
	}
	return v
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ListProducts fetches one page of products. Entities are returned undecoded so a
// malformed record can be recovered individually by the transformer.
func (c *Client) ListProducts(ctx context.Context, query ProductQuery) (*ProductsResponse, error) {
	endpoint := c.baseURL + "/products?" + query.values().Encode()
	c.logger.Debug("Fetching products from %s", endpoint)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Pagination Pagination      `json:"pagination"`
		Entities   json.RawMessage `json:"entities"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	entities := bytes.TrimSpace(envelope.Entities)
	if len(entities) == 0 || entities[0] != '[' {
		return nil, ErrInvalidResponse
	}

	resp := &ProductsResponse{Pagination: envelope.Pagination}
	if err := json.Unmarshal(entities, &resp.Entities); err != nil {
		return nil, ErrInvalidResponse
	}

	c.logger.Debug("API response received: %d total products, %d on page", resp.Pagination.Total, len(resp.Entities))
	return resp, nil
}

// GetProduct fetches a single product by id, returning ErrProductNotFound on 404.
func (c *Client) GetProduct(ctx context.Context, productID string, with []string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/products/%s", c.baseURL, url.PathEscape(productID))
	if len(with) > 0 {
		endpoint += "?" + url.Values{"with": {strings.Join(with, ",")}}.Encode()
	}

	body, err := c.get(ctx, endpoint)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	return json.RawMessage(body), nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("API response error: %d %s", resp.StatusCode, string(body))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
