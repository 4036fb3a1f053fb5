// Package catalog holds the storefront's filter and sort pipeline over normalized products.
package catalog

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"storefront/internal/models"
)

var ErrInvalidFilter = errors.New("invalid filter")

type SortKey string

const (
	SortName   SortKey = "name"
	SortPrice  SortKey = "price"
	SortNewest SortKey = "newest"
	// SortRating has no backing field; it shuffles.
	SortRating SortKey = "rating"
)

func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(s); key {
	case SortName, SortPrice, SortNewest, SortRating:
		return key, nil
	}
	return "", fmt.Errorf("%w: unknown sort key %q", ErrInvalidFilter, s)
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type FilterState struct {
	PriceRange PriceRange `json:"priceRange"`
	Brands     []string   `json:"brands"`
	// InStock nil means availability is not filtered.
	InStock *bool   `json:"inStock"`
	SortBy  SortKey `json:"sortBy"`
}

// DefaultFilter matches the reset state of the category pages.
func DefaultFilter() FilterState {
	return FilterState{
		PriceRange: PriceRange{Min: 0, Max: 500},
		Brands:     []string{},
		SortBy:     SortName,
	}
}

func (f FilterState) Validate() error {
	if f.PriceRange.Min < 0 {
		return fmt.Errorf("%w: negative min price", ErrInvalidFilter)
	}
	if f.PriceRange.Min > f.PriceRange.Max {
		return fmt.Errorf("%w: min price %.2f exceeds max price %.2f", ErrInvalidFilter, f.PriceRange.Min, f.PriceRange.Max)
	}
	if _, err := ParseSortKey(string(f.SortBy)); err != nil {
		return err
	}
	return nil
}

// Matches reports whether p passes the price, brand and stock predicates.
func (f FilterState) Matches(p models.Product) bool {
	if p.Price < f.PriceRange.Min || p.Price > f.PriceRange.Max {
		return false
	}
	if len(f.Brands) > 0 && !slices.Contains(f.Brands, p.Brand) {
		return false
	}
	if f.InStock != nil && p.InStock != *f.InStock {
		return false
	}
	return true
}

type Pipeline struct {
	shuffle func(n int, swap func(i, j int))
}

func NewPipeline() *Pipeline {
	return &Pipeline{shuffle: rand.Shuffle}
}

// NewPipelineWithShuffle replaces the shuffle used by the rating order.
func NewPipelineWithShuffle(shuffle func(n int, swap func(i, j int))) *Pipeline {
	return &Pipeline{shuffle: shuffle}
}

var defaultPipeline = NewPipeline()

// Apply filters and orders products with the default pipeline.
func Apply(products []models.Product, f FilterState) []models.Product {
	return defaultPipeline.Apply(products, f)
}

// Apply returns a new slice; products is never modified.
func (pl *Pipeline) Apply(products []models.Product, f FilterState) []models.Product {
	result := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			result = append(result, p)
		}
	}

	switch f.SortBy {
	case SortName:
		slices.SortStableFunc(result, func(a, b models.Product) int {
			return strings.Compare(a.Name, b.Name)
		})
	case SortPrice:
		slices.SortStableFunc(result, func(a, b models.Product) int {
			return cmp.Compare(a.Price, b.Price)
		})
	case SortNewest:
		slices.SortStableFunc(result, func(a, b models.Product) int {
			return compareIDs(b.ID, a.ID)
		})
	case SortRating:
		if pl.shuffle != nil {
			pl.shuffle(len(result), func(i, j int) { result[i], result[j] = result[j], result[i] })
		}
	}

	return result
}

// compareIDs orders numeric ids by value and other ids lexicographically. Every
// numeric id ranks above every non-numeric one, which keeps the order total.
func compareIDs(a, b string) int {
	ai, errA := strconv.ParseInt(a, 10, 64)
	bi, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(ai, bi)
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	}
	return strings.Compare(a, b)
}

// Brands returns the distinct non-empty brands, sorted.
func Brands(products []models.Product) []string {
	seen := make(map[string]struct{}, len(products))
	brands := make([]string, 0)
	for _, p := range products {
		if p.Brand == "" {
			continue
		}
		if _, ok := seen[p.Brand]; ok {
			continue
		}
		seen[p.Brand] = struct{}{}
		brands = append(brands, p.Brand)
	}
	slices.Sort(brands)
	return brands
}

// Search keeps products whose name, brand or description contains query, ignoring case.
func Search(products []models.Product, query string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	result := make([]models.Product, 0, len(products))
	for _, p := range products {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Brand), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			result = append(result, p)
		}
	}
	return result
}
