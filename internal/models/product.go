package models

import "fmt"

// Product is the normalized shape every storefront page works with.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Image       string   `json:"image"`
	Category    Category `json:"category"`
	CategoryID  int      `json:"categoryId"`
	InStock     bool     `json:"inStock"`
}

type Category string

const (
	CategoryGlasses     Category = "glasses"
	CategorySunglasses  Category = "sunglasses"
	CategoryContacts    Category = "contacts"
	CategoryAccessories Category = "accessories"
)

// Categories lists the closed set of storefront categories in display order.
var Categories = []Category{
	CategoryGlasses,
	CategorySunglasses,
	CategoryContacts,
	CategoryAccessories,
}

// upstream catalog category ids
var categoryIDs = map[Category]int{
	CategoryGlasses:     4,
	CategorySunglasses:  7,
	CategoryContacts:    8,
	CategoryAccessories: 9,
}

var categoryLabels = map[Category]string{
	CategoryGlasses:     "Glasses",
	CategorySunglasses:  "Sunglasses",
	CategoryContacts:    "Contact Lenses",
	CategoryAccessories: "Accessories",
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categoryIDs[c]; !ok {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

func (c Category) Valid() bool {
	_, ok := categoryIDs[c]
	return ok
}

// UpstreamID is the numeric category filter used by the catalog API.
func (c Category) UpstreamID() int {
	return categoryIDs[c]
}

func (c Category) Label() string {
	return categoryLabels[c]
}
