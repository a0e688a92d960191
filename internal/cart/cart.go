// Package cart is the in-memory sales cart: an ordered set of requested
// quantities, at most one line per product, every mutation bounded by the
// stock observed at that moment. The bound is a soft guarantee; checkout
// re-validates against a fresh catalog before committing.
package cart

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/misagal/retail-pos/internal/catalog"
)

// ErrLineNotFound is returned when incrementing or decrementing a product
// that has no line in the cart.
var ErrLineNotFound = errors.New("cart line not found")

// InsufficientStockError rejects a mutation or checkout that would exceed the
// available stock. It carries enough detail for the user to correct the cart.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	if e.Available <= 0 {
		return fmt.Sprintf("%s is out of stock", e.Name)
	}
	return fmt.Sprintf("%s only has %d in stock (requested %d)", e.Name, e.Available, e.Requested)
}

// Line is one product's requested quantity. Name, Price, and Stock are
// snapshots of the product as observed at the last successful mutation; they
// exist for display and pre-checkout bounds only and are never trusted at
// commit time.
type Line struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Stock     int
}

// Subtotal returns Price * Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart accumulates lines for one sales session. It has no persisted form and
// is not safe for concurrent use; the owning session serializes access.
type Cart struct {
	lines []Line
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{}
}

func (c *Cart) find(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddOrIncrement creates a line at quantity 1 for p, or increments the
// existing line by 1. A new line for an out-of-stock product, or an increment
// past the observed stock, is rejected and the cart is left unchanged.
func (c *Cart) AddOrIncrement(p catalog.Product) error {
	if i := c.find(p.ID); i >= 0 {
		return c.bump(i, p)
	}

	if p.Stock <= 0 {
		return &InsufficientStockError{
			ProductID: p.ID,
			Name:      p.Name,
			Requested: 1,
			Available: p.Stock,
		}
	}

	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  1,
		Stock:     p.Stock,
	})
	return nil
}

// Increment raises the quantity of an existing line by 1 under the same
// stock bound as AddOrIncrement.
func (c *Cart) Increment(p catalog.Product) error {
	i := c.find(p.ID)
	if i < 0 {
		return ErrLineNotFound
	}
	return c.bump(i, p)
}

// bump increments line i against the product's current stock and refreshes
// the line's observation snapshot on success.
func (c *Cart) bump(i int, p catalog.Product) error {
	line := &c.lines[i]
	if line.Quantity+1 > p.Stock {
		return &InsufficientStockError{
			ProductID: p.ID,
			Name:      p.Name,
			Requested: line.Quantity + 1,
			Available: p.Stock,
		}
	}
	line.Quantity++
	line.Name = p.Name
	line.Price = p.Price
	line.Stock = p.Stock
	return nil
}

// Decrement lowers a line's quantity by 1. A line reaching 0 is removed
// entirely; quantity never rests at 0.
func (c *Cart) Decrement(productID string) error {
	i := c.find(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	if c.lines[i].Quantity > 1 {
		c.lines[i].Quantity--
		return nil
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.lines = nil
}

// Total sums Price * Quantity over all lines. Pure, no side effect.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Lines returns a copy of the cart's lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of lines.
func (c *Cart) Len() int { return len(c.lines) }

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool { return len(c.lines) == 0 }
