package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CartItem is one product line with an aggregated quantity. Product attributes
// are copied when the line is first added and are not refreshed from the catalog.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal returns price multiplied by quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the ordered line-item collection. Order is the insertion order of the
// first add for each product id, and each product id appears at most once.
//
// Mutating methods never touch the receiver's backing array, so a Cart handed
// to an observer stays valid after later mutations.
type Cart []CartItem

// IndexOf returns the position of productID or -1.
func (c Cart) IndexOf(productID int64) int {
	for i := range c {
		if c[i].ID == productID {
			return i
		}
	}
	return -1
}

// Clone returns an independent copy.
func (c Cart) Clone() Cart {
	if c == nil {
		return Cart{}
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Add increments the existing line for product in place or appends a new line
// with quantity 1.
func (c Cart) Add(product Product) Cart {
	out := c.Clone()
	if idx := out.IndexOf(product.ID); idx >= 0 {
		out[idx].Quantity++
		return out
	}
	return append(out, CartItem{Product: product, Quantity: 1})
}

// Remove drops the line for productID. Unknown ids leave the cart as is.
func (c Cart) Remove(productID int64) Cart {
	out := make(Cart, 0, len(c))
	for _, item := range c {
		if item.ID != productID {
			out = append(out, item)
		}
	}
	return out
}

// SetQuantity overwrites the quantity of productID. The second result is false
// when the id is not in the cart.
func (c Cart) SetQuantity(productID int64, quantity int) (Cart, bool) {
	idx := c.IndexOf(productID)
	if idx < 0 {
		return c.Clone(), false
	}
	out := c.Clone()
	out[idx].Quantity = quantity
	return out, true
}

// Total sums the line subtotals.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Count sums the line quantities.
func (c Cart) Count() int {
	var n int
	for _, item := range c {
		n += item.Quantity
	}
	return n
}

// Validate reports the first line that breaks the cart invariants: one line
// per product id and a quantity of at least 1.
func (c Cart) Validate() error {
	seen := make(map[int64]struct{}, len(c))
	for i, item := range c {
		if item.Quantity < 1 {
			return fmt.Errorf("line %d: product %d has quantity %d", i, item.ID, item.Quantity)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("line %d: product %d appears more than once", i, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}
