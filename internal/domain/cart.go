package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCart is returned when a decoded cart breaks id uniqueness or
// holds a negative quantity.
var ErrInvalidCart = errors.New("invalid cart")

// Product describes an item that can be put in the cart.
type Product struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
}

// LineItem is one product entry in the cart.
type LineItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Cart is the ordered list of line items, in first-add order.
//
// All methods are copy-on-write: the receiver's backing array is never
// written, so a Cart handed out as a snapshot stays valid after later
// mutations.
type Cart []LineItem

// IndexOf returns the index of the item with id, or -1.
func (c Cart) IndexOf(id string) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// Add appends p with quantity 1. A product already in the cart is
// incremented instead; its stored title, image and price are kept.
func (c Cart) Add(p Product) Cart {
	if c.IndexOf(p.ID) >= 0 {
		return c.Increment(p.ID)
	}

	next := make(Cart, len(c), len(c)+1)
	copy(next, c)
	return append(next, LineItem{
		ID:       p.ID,
		Title:    p.Title,
		ImageURL: p.ImageURL,
		Price:    p.Price,
		Quantity: 1,
	})
}

// Increment raises the quantity of the item with id by one. A quantity at
// math.MaxInt stays there.
func (c Cart) Increment(id string) Cart {
	i := c.IndexOf(id)
	if i < 0 || c[i].Quantity == math.MaxInt {
		return c
	}
	next := c.Clone()
	next[i].Quantity++
	return next
}

// Decrement lowers the quantity of the item with id by one, stopping at zero.
// Items are never removed.
func (c Cart) Decrement(id string) Cart {
	i := c.IndexOf(id)
	if i < 0 || c[i].Quantity <= 0 {
		return c
	}
	next := c.Clone()
	next[i].Quantity--
	return next
}

// Clone returns a copy with its own backing array. The clone of an empty
// cart is an empty, non-nil cart.
func (c Cart) Clone() Cart {
	next := make(Cart, len(c))
	copy(next, c)
	return next
}

// ItemCount returns the sum of all quantities, capped at math.MaxInt.
func (c Cart) ItemCount() int {
	var n int
	for _, item := range c {
		if item.Quantity > math.MaxInt-n {
			return math.MaxInt
		}
		n += item.Quantity
	}
	return n
}

// Validate checks id presence, id uniqueness and non-negative quantities.
func (c Cart) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for i, item := range c {
		if item.ID == "" {
			return fmt.Errorf("%w: item %d has an empty id", ErrInvalidCart, i)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidCart, item.ID)
		}
		seen[item.ID] = struct{}{}
		if item.Quantity < 0 {
			return fmt.Errorf("%w: item %q has negative quantity %d", ErrInvalidCart, item.ID, item.Quantity)
		}
	}
	return nil
}

// Encode renders the cart in its persisted form, a JSON array of line items.
// An empty cart encodes as [].
func Encode(c Cart) ([]byte, error) {
	if c == nil {
		c = Cart{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	return data, nil
}

// Decode parses a persisted cart and validates it. A JSON null decodes to an
// empty cart.
func Decode(data []byte) (Cart, error) {
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if c == nil {
		c = Cart{}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
