package scayle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/logger"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

const (
	UnknownProduct     = "Unknown Product"
	UnknownBrand       = "Unknown Brand"
	UnavailableDetails = "Product details unavailable"
)

// Profile carries the per-category rules the normalizer applies.
type Profile struct {
	Category    models.Category
	Placeholder string
	// FlatPrice replaces variant pricing for categories fetched without variants.
	FlatPrice *float64
	// StockFromSoldOut derives availability from the top-level sold-out flag.
	StockFromSoldOut bool
	With             []string
}

type Transformer struct {
	cdnBaseURL string
	logger     *logger.Logger
}

func NewTransformer(cdnBaseURL string, logger *logger.Logger) *Transformer {
	return &Transformer{
		cdnBaseURL: strings.TrimRight(cdnBaseURL, "/"),
		logger:     logger,
	}
}

// TransformProduct converts an upstream entity to the storefront product shape.
func (t *Transformer) TransformProduct(p *Product, profile Profile) (models.Product, error) {
	if p == nil {
		return models.Product{}, errors.New("nil product")
	}
	if p.ID == "" {
		return models.Product{}, errors.New("product has no id")
	}

	attrs := p.Attributes

	name := AttributeValue(attrs, "name")
	if name == "" {
		name = AttributeValue(attrs, "productNameLong")
	}
	if name == "" {
		name = UnknownProduct
	}

	brand := AttributeValue(attrs, "brand")
	if brand == "" {
		brand = UnknownBrand
	}

	description := AttributeValue(attrs, "description")
	if description == "" {
		if modelName := AttributeValue(attrs, "modelName"); modelName != "" {
			description = fmt.Sprintf("%s %s", brand, modelName)
		} else {
			description = fmt.Sprintf("%s %s", brand, profile.Category.Label())
		}
	}

	image := profile.Placeholder
	if len(p.Images) > 0 && p.Images[0].Hash != "" {
		image = t.ImageURL(p.Images[0].Hash)
	}

	var variant *Variant
	if len(p.Variants) > 0 {
		variant = &p.Variants[0]
	}

	price := 0.0
	switch {
	case profile.FlatPrice != nil:
		price = *profile.FlatPrice
	case variant != nil && variant.Price != nil:
		if variant.Price.WithTax < 0 {
			return models.Product{}, fmt.Errorf("negative price %d for product %s", variant.Price.WithTax, p.ID)
		}
		price = decimal.New(variant.Price.WithTax, -2).InexactFloat64()
	}

	inStock := false
	if profile.StockFromSoldOut {
		inStock = !p.IsSoldOut
	} else if variant != nil && variant.Stock != nil {
		inStock = variant.Stock.Quantity > 0
	}

	return models.Product{
		ID:          string(p.ID),
		Name:        name,
		Brand:       brand,
		Description: description,
		Price:       price,
		Image:       image,
		Category:    profile.Category,
		CategoryID:  profile.Category.UpstreamID(),
		InStock:     inStock,
	}, nil
}

// TransformRaw decodes and transforms one raw entity.
func (t *Transformer) TransformRaw(raw json.RawMessage, profile Profile) (models.Product, error) {
	var p Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.Product{}, fmt.Errorf("failed to decode product: %w", err)
	}
	return t.TransformProduct(&p, profile)
}

// TransformBatch never fails: a record that cannot be transformed is replaced by a
// sentinel so the result always has the same length as the input.
func (t *Transformer) TransformBatch(raw []json.RawMessage, profile Profile) []models.Product {
	products := make([]models.Product, len(raw))
	for i, entity := range raw {
		product, err := t.TransformRaw(entity, profile)
		if err != nil {
			id := recoverID(entity)
			if id == "" {
				id = fmt.Sprintf("invalid-%d", i)
			}
			t.logger.Error("Failed to transform %s product %s: %v", profile.Category, id, err)
			product = t.Sentinel(id, profile)
		}
		products[i] = product
	}
	return products
}

// Sentinel is the safe placeholder substituted for a record that failed to normalize.
func (t *Transformer) Sentinel(id string, profile Profile) models.Product {
	return models.Product{
		ID:          id,
		Name:        UnknownProduct,
		Brand:       UnknownBrand,
		Description: UnavailableDetails,
		Price:       0,
		Image:       profile.Placeholder,
		Category:    profile.Category,
		CategoryID:  profile.Category.UpstreamID(),
		InStock:     false,
	}
}

func (t *Transformer) ImageURL(hash string) string {
	return t.cdnBaseURL + "/" + strings.TrimLeft(hash, "/")
}

// AttributeValue joins list labels with ", ", returns the label of a single value,
// and "" when the attribute is absent.
func AttributeValue(attrs map[string]Attribute, key string) string {
	attr, ok := attrs[key]
	if !ok {
		return ""
	}

	if attr.Values.List {
		labels := make([]string, len(attr.Values.Items))
		for i, v := range attr.Values.Items {
			labels[i] = v.Label
		}
		return strings.Join(labels, ", ")
	}

	if len(attr.Values.Items) == 0 {
		return ""
	}
	return attr.Values.Items[0].Label
}

func recoverID(raw json.RawMessage) string {
	var probe struct {
		ID EntityID `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return string(probe.ID)
}
