// Package cart implements the in-memory shopping cart of a browsing session.
package cart

import (
	"sync"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

type LineItem struct {
	models.Product
	Quantity int `json:"quantity"`
}

// State is a point-in-time copy of a cart.
type State struct {
	Items     []LineItem `json:"items"`
	Total     float64    `json:"total"`
	IsOpen    bool       `json:"isOpen"`
	ItemCount int        `json:"itemCount"`
}

// Store is a flat state machine: every operation is accepted in every state and
// leaves total equal to the sum of price times quantity, rounded to cents.
type Store struct {
	mu     sync.RWMutex
	items  []LineItem
	total  decimal.Decimal
	isOpen bool
}

func NewStore() *Store {
	return &Store{items: []LineItem{}}
}

// Add increments the line of product.ID or appends a new one. A quantity below
// one is treated as one.
func (s *Store) Add(product models.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(product.ID); i >= 0 {
		s.items[i].Quantity += quantity
	} else {
		s.items = append(s.items, LineItem{Product: product, Quantity: quantity})
	}
	s.recompute()
}

// Remove deletes the line of productID. Unknown ids are ignored.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(productID)
}

// UpdateQuantity sets the quantity exactly; zero or less removes the line.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.remove(productID)
		return
	}
	if i := s.indexOf(productID); i >= 0 {
		s.items[i].Quantity = quantity
	}
	s.recompute()
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []LineItem{}
	s.total = decimal.Zero
}

// ToggleVisibility flips the open flag only.
func (s *Store) ToggleVisibility() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isOpen = !s.isOpen
	return s.isOpen
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]LineItem, len(s.items))
	copy(items, s.items)

	count := 0
	for _, item := range items {
		count += item.Quantity
	}

	return State{
		Items:     items,
		Total:     s.total.InexactFloat64(),
		IsOpen:    s.isOpen,
		ItemCount: count,
	}
}

func (s *Store) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total.InexactFloat64()
}

func (s *Store) remove(productID string) {
	if i := s.indexOf(productID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.recompute()
}

func (s *Store) indexOf(productID string) int {
	for i, item := range s.items {
		if item.ID == productID {
			return i
		}
	}
	return -1
}

// callers hold mu
func (s *Store) recompute() {
	total := decimal.Zero
	for _, item := range s.items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	s.total = total.Round(2)
}
