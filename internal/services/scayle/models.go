package scayle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ProductsResponse is the list envelope of the storefront products endpoint.
type ProductsResponse struct {
	Pagination Pagination        `json:"pagination"`
	Entities   []json.RawMessage `json:"entities"`
}

type Pagination struct {
	Total int `json:"total"`
}

// Product is an upstream catalog entity. Only the fields the storefront reads are mapped.
type Product struct {
	ID         EntityID             `json:"id"`
	IsActive   bool                 `json:"isActive"`
	IsSoldOut  bool                 `json:"isSoldOut"`
	IsNew      bool                 `json:"isNew"`
	Attributes map[string]Attribute `json:"attributes"`
	Images     []Image              `json:"images"`
	Variants   []Variant            `json:"variants"`
}

// EntityID accepts both numeric and string ids.
type EntityID string

func (id *EntityID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = EntityID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid entity id %s", string(data))
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("invalid entity id %s", n.String())
	}
	*id = EntityID(n.String())
	return nil
}

type Attribute struct {
	ID          int             `json:"id"`
	Key         string          `json:"key"`
	Label       string          `json:"label"`
	Type        string          `json:"type"`
	MultiSelect bool            `json:"multiSelect"`
	Values      AttributeValues `json:"values"`
}

type AttributeOption struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// AttributeValues holds either a single value or a list, as the API sends both.
type AttributeValues struct {
	Items []AttributeOption
	List  bool
}

func (v *AttributeValues) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = AttributeValues{}
		return nil
	case data[0] == '[':
		var items []AttributeOption
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*v = AttributeValues{Items: items, List: true}
		return nil
	default:
		var item AttributeOption
		if err := json.Unmarshal(data, &item); err != nil {
			return err
		}
		*v = AttributeValues{Items: []AttributeOption{item}}
		return nil
	}
}

func (v AttributeValues) MarshalJSON() ([]byte, error) {
	if v.List {
		if v.Items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Items)
	}
	if len(v.Items) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(v.Items[0])
}

// Image is a content-hash reference resolved against the CDN.
type Image struct {
	Hash string `json:"hash"`
}

type Variant struct {
	ID    int64  `json:"id"`
	Stock *Stock `json:"stock"`
	Price *Price `json:"price"`
}

type Stock struct {
	Quantity               int  `json:"quantity"`
	IsSellableWithoutStock bool `json:"isSellableWithoutStock"`
}

// Price amounts are integer minor units.
type Price struct {
	CurrencyCode string `json:"currencyCode"`
	WithTax      int64  `json:"withTax"`
	WithoutTax   int64  `json:"withoutTax"`
}
