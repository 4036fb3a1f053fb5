package scayle_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/services/scayle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entity(id int, name string, withTax int64, qty int) string {
	return fmt.Sprintf(`{
		"id": %d,
		"isSoldOut": %t,
		"attributes": {
			"name": {"values": {"label": %q}},
			"brand": {"values": {"label": "Fielmann"}}
		},
		"images": [{"hash": "images/%d.png"}],
		"variants": [{"id": %d, "price": {"withTax": %d}, "stock": {"quantity": %d}}]
	}`, id, qty == 0, name, id, id*10, withTax, qty)
}

func listBody(entities ...string) string {
	return fmt.Sprintf(`{"pagination": {"total": %d}, "entities": [%s]}`, len(entities), strings.Join(entities, ","))
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		UpstreamBaseURL:   baseURL,
		CDNBaseURL:        cdn,
		UpstreamTimeout:   5 * time.Second,
		UpstreamPageSize:  50,
		ContactsFlatPrice: 29.99,
	}
}

func TestClient_ListProducts(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/products", r.URL.Path)
		q := r.URL.Query()
		gotQuery = map[string]string{
			"page":              q.Get("page"),
			"perPage":           q.Get("perPage"),
			"filters[category]": q.Get("filters[category]"),
			"with":              q.Get("with"),
		}
		fmt.Fprint(w, listBody(entity(1, "A", 100, 1)))
	}))
	defer srv.Close()

	client := scayle.NewClient(srv.URL+"/v1/", time.Second, logger.NewNop())
	resp, err := client.ListProducts(context.Background(), scayle.ProductQuery{
		PerPage:    25,
		CategoryID: 4,
		With:       []string{"attributes", "variants"},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"page":              "1",
		"perPage":           "25",
		"filters[category]": "4",
		"with":              "attributes,variants",
	}, gotQuery)
	assert.Equal(t, 1, resp.Pagination.Total)
	assert.Len(t, resp.Entities, 1)
}

func TestClient_ListProductsErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "non_2xx",
			status: http.StatusServiceUnavailable,
			body:   `{"message": "down"}`,
			check: func(t *testing.T, err error) {
				var apiErr *scayle.APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
				assert.Equal(t, "API request failed: 503 Service Unavailable", apiErr.Error())
			},
		},
		{
			name:   "missing_entities",
			status: http.StatusOK,
			body:   `{"pagination": {"total": 0}}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, scayle.ErrInvalidResponse)
			},
		},
		{
			name:   "entities_not_an_array",
			status: http.StatusOK,
			body:   `{"entities": {"id": 1}}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, scayle.ErrInvalidResponse)
			},
		},
		{
			name:   "not_json",
			status: http.StatusOK,
			body:   `<html>`,
			check: func(t *testing.T, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			client := scayle.NewClient(srv.URL, time.Second, logger.NewNop())
			_, err := client.ListProducts(context.Background(), scayle.ProductQuery{CategoryID: 4})
			tt.check(t, err)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no retry")
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := scayle.NewClient(srv.URL, time.Second, logger.NewNop())
	_, err := client.ListProducts(context.Background(), scayle.ProductQuery{CategoryID: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to make request")
}

func TestClient_GetProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/products/404" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "attributes,variants", r.URL.Query().Get("with"))
		fmt.Fprint(w, entity(7, "Seven", 700, 1))
	}))
	defer srv.Close()

	client := scayle.NewClient(srv.URL, time.Second, logger.NewNop())

	raw, err := client.GetProduct(context.Background(), "7", []string{"attributes", "variants"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Seven"`)

	_, err = client.GetProduct(context.Background(), "404", nil)
	assert.ErrorIs(t, err, scayle.ErrProductNotFound)
}

func TestAdapter_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("filters[category]") {
		case "4":
			fmt.Fprint(w, listBody(
				entity(1, "Frame A", 10000, 4),
				entity(2, "Frame B", 19999, 2),
				entity(3, "Frame C", 5000, 0),
				`{"id": 4, "attributes": []}`,
			))
		case "8":
			assert.Equal(t, "attributes", r.URL.Query().Get("with"))
			fmt.Fprint(w, listBody(`{"id": 80, "isSoldOut": false, "attributes": {}}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	cat := scayle.NewCatalog(testConfig(srv.URL), logger.NewNop())

	t.Run("glasses", func(t *testing.T) {
		adapter, ok := cat.Adapter(models.CategoryGlasses)
		require.True(t, ok)

		products, err := adapter.Fetch(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, products, 4)

		assert.Equal(t, 100.0, products[0].Price)
		assert.True(t, products[0].InStock)
		assert.Equal(t, 199.99, products[1].Price)
		assert.False(t, products[2].InStock)
		assert.Equal(t, cdn+"/images/1.png", products[0].Image)
		assert.Equal(t, "Unknown Product", products[3].Name)
		assert.Zero(t, products[3].Price)
	})

	t.Run("contacts", func(t *testing.T) {
		adapter, _ := cat.Adapter(models.CategoryContacts)
		products, err := adapter.Fetch(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, 29.99, products[0].Price)
		assert.True(t, products[0].InStock)
	})

	t.Run("error_is_wrapped", func(t *testing.T) {
		adapter, _ := cat.Adapter(models.CategorySunglasses)
		_, err := adapter.Fetch(context.Background(), 0)

		var fetchErr *scayle.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, models.CategorySunglasses, fetchErr.Category)
		assert.Equal(t, "failed to fetch sunglasses: API request failed: 500 Internal Server Error", err.Error())

		var apiErr *scayle.APIError
		assert.True(t, errors.As(err, &apiErr))
	})

	t.Run("brands", func(t *testing.T) {
		adapter, _ := cat.Adapter(models.CategoryGlasses)
		brands, err := adapter.Brands(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"Fielmann", "Unknown Brand"}, brands)
	})
}

func TestCatalog_FetchAll(t *testing.T) {
	var glassesPerPage atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("filters[category]") {
		case "4":
			glassesPerPage.Store(r.URL.Query().Get("perPage"))
			fmt.Fprint(w, listBody(entity(1, "Glasses 1", 100, 1), entity(2, "Glasses 2", 200, 1)))
		case "7":
			w.WriteHeader(http.StatusBadGateway)
		case "9":
			fmt.Fprint(w, listBody(`{"id": 9, "attributes": {"brand": {"values": {"label": "Care"}}}}`))
		default:
			t.Errorf("unexpected category %s", r.URL.Query().Get("filters[category]"))
		}
	}))
	defer srv.Close()

	cat := scayle.NewCatalog(testConfig(srv.URL), logger.NewNop())
	cat.Shuffle = func(n int, swap func(i, j int)) {}

	all := cat.FetchAll(context.Background(), 5)

	assert.Equal(t, "2", glassesPerPage.Load())
	assert.Equal(t, []string{"1", "2", "9"}, []string{all.Products[0].ID, all.Products[1].ID, all.Products[2].ID})
	assert.Equal(t, []string{"Care", "Fielmann"}, all.Brands)

	t.Run("limit_cuts_the_listing", func(t *testing.T) {
		all := cat.FetchAll(context.Background(), 2)
		assert.Len(t, all.Products, 2)
		assert.Equal(t, []string{"Care", "Fielmann"}, all.Brands)
	})
}
