package scayle

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/models"
)

const contactsPlaceholderHash = "images/154f929e6dc5bf7e5625feeb26c64f06.jpeg"

// FetchError is what adapters return; callers surface it rather than retry.
type FetchError struct {
	Category models.Category
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", strings.ToLower(e.Category.Label()), e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Adapter fetches one storefront category from the catalog API.
type Adapter struct {
	client      *Client
	transformer *Transformer
	profile     Profile
	pageSize    int
	logger      *logger.Logger
}

func NewAdapter(client *Client, transformer *Transformer, profile Profile, pageSize int, logger *logger.Logger) *Adapter {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &Adapter{
		client:      client,
		transformer: transformer,
		profile:     profile,
		pageSize:    pageSize,
		logger:      logger,
	}
}

func (a *Adapter) Category() models.Category {
	return a.profile.Category
}

// Fetch requests the first page of the category and normalizes every entity.
func (a *Adapter) Fetch(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = a.pageSize
	}

	resp, err := a.client.ListProducts(ctx, ProductQuery{
		Page:       1,
		PerPage:    limit,
		CategoryID: a.profile.Category.UpstreamID(),
		With:       a.profile.With,
	})
	if err != nil {
		return nil, &FetchError{Category: a.profile.Category, Err: err}
	}

	products := a.transformer.TransformBatch(resp.Entities, a.profile)
	a.logger.Debug("Found %d %s products from API", len(products), a.profile.Category)
	return products, nil
}

func (a *Adapter) FetchByID(ctx context.Context, id string) (models.Product, error) {
	raw, err := a.client.GetProduct(ctx, id, a.profile.With)
	if err != nil {
		return models.Product{}, &FetchError{Category: a.profile.Category, Err: err}
	}

	product, err := a.transformer.TransformRaw(raw, a.profile)
	if err != nil {
		return models.Product{}, &FetchError{Category: a.profile.Category, Err: err}
	}
	return product, nil
}

// Brands returns the unique, sorted brands of a category listing.
func (a *Adapter) Brands(ctx context.Context) ([]string, error) {
	products, err := a.Fetch(ctx, 100)
	if err != nil {
		return nil, err
	}
	return catalog.Brands(products), nil
}

// Profiles returns the normalization rules of each category.
func Profiles(cfg *config.Config) map[models.Category]Profile {
	flat := cfg.ContactsFlatPrice
	withVariants := []string{"attributes", "variants"}

	return map[models.Category]Profile{
		models.CategoryGlasses: {
			Category:    models.CategoryGlasses,
			Placeholder: "/placeholder-glasses.jpg",
			With:        withVariants,
		},
		models.CategorySunglasses: {
			Category:    models.CategorySunglasses,
			Placeholder: "/placeholder-sunglasses.jpg",
			With:        withVariants,
		},
		// Contact lenses are listed without variants: flat price, stock from the sold-out flag.
		models.CategoryContacts: {
			Category:         models.CategoryContacts,
			Placeholder:      strings.TrimRight(cfg.CDNBaseURL, "/") + "/" + contactsPlaceholderHash,
			FlatPrice:        &flat,
			StockFromSoldOut: true,
			With:             []string{"attributes"},
		},
		models.CategoryAccessories: {
			Category:    models.CategoryAccessories,
			Placeholder: "/placeholder-accessories.jpg",
			With:        withVariants,
		},
	}
}

// AllProducts is the combined listing of the home page.
type AllProducts struct {
	Products []models.Product `json:"data"`
	Brands   []string         `json:"brands"`
}

// Catalog groups the category adapters behind one upstream client.
type Catalog struct {
	adapters map[models.Category]*Adapter
	logger   *logger.Logger

	// Shuffle mixes the combined listing. Tests replace it.
	Shuffle func(n int, swap func(i, j int))
}

func NewCatalog(cfg *config.Config, logger *logger.Logger) *Catalog {
	client := NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, logger.Named("scayle.client"))
	transformer := NewTransformer(cfg.CDNBaseURL, logger.Named("scayle.transformer"))

	adapters := make(map[models.Category]*Adapter, len(models.Categories))
	for category, profile := range Profiles(cfg) {
		adapters[category] = NewAdapter(client, transformer, profile, cfg.UpstreamPageSize, logger.Named("scayle."+string(category)))
	}

	return &Catalog{
		adapters: adapters,
		logger:   logger,
		Shuffle:  rand.Shuffle,
	}
}

func (c *Catalog) Adapter(category models.Category) (*Adapter, bool) {
	a, ok := c.adapters[category]
	return a, ok
}

// FetchAll loads glasses, sunglasses and accessories concurrently. A failing
// category contributes nothing instead of failing the whole listing.
func (c *Catalog) FetchAll(ctx context.Context, limit int) AllProducts {
	if limit <= 0 {
		limit = 20
	}
	perCategory := (limit + 2) / 3

	categories := []models.Category{
		models.CategoryGlasses,
		models.CategorySunglasses,
		models.CategoryAccessories,
	}
	results := make([][]models.Product, len(categories))

	var wg sync.WaitGroup
	for i, category := range categories {
		adapter, ok := c.adapters[category]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(i int, adapter *Adapter) {
			defer wg.Done()
			products, err := adapter.Fetch(ctx, perCategory)
			if err != nil {
				c.logger.Warn("Skipping %s in combined listing: %v", adapter.Category(), err)
				return
			}
			results[i] = products
		}(i, adapter)
	}
	wg.Wait()

	var all []models.Product
	for _, products := range results {
		all = append(all, products...)
	}

	brands := catalog.Brands(all)

	if c.Shuffle != nil {
		c.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	}
	if len(all) > limit {
		all = all[:limit]
	}
	if all == nil {
		all = []models.Product{}
	}

	return AllProducts{Products: all, Brands: brands}
}

// Fetch dispatches to the category's adapter.
func (c *Catalog) Fetch(ctx context.Context, category models.Category, limit int) ([]models.Product, error) {
	adapter, ok := c.adapters[category]
	if !ok {
		return nil, fmt.Errorf("no adapter for category %q", category)
	}
	return adapter.Fetch(ctx, limit)
}
