// Package cart holds the cart state container: an ordered list of configured
// line items whose total is folded fresh on every read.
package cart

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"ramdom/internal/domain"
)

// LineItem is one configured product in the cart.
type LineItem struct {
	ID       string
	Product  domain.Product
	Quantity int
	Size     domain.Size
	Color    domain.Color
}

// Subtotal is price × quantity.
func (it LineItem) Subtotal() decimal.Decimal {
	return it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func (it LineItem) sameConfig(p domain.Product, c domain.Color, s domain.Size) bool {
	return it.Product.ID == p.ID && it.Color.Hex == c.Hex && it.Size == s
}

// Cart is a value: every mutation returns a new Cart and never touches the
// receiver's backing array, so snapshots handed out stay stable.
type Cart struct {
	items []LineItem
	merge bool
}

// New returns an empty cart. With merge set, adding an identical
// product/color/size bumps the existing line instead of appending.
func New(merge bool) Cart { return Cart{merge: merge} }

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a fresh line identifier.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Add appends a line (or merges under the merge profile) and returns it.
func (c Cart) Add(p domain.Product, quantity int, color domain.Color, size domain.Size) (Cart, LineItem) {
	quantity = clamp(quantity)
	if c.merge {
		for i, it := range c.items {
			if it.sameConfig(p, color, size) {
				next := c.clone()
				next.items[i].Quantity += quantity
				return next, next.items[i]
			}
		}
	}
	item := LineItem{ID: NewID(), Product: p, Quantity: quantity, Size: size, Color: color}
	next := c.clone()
	next.items = append(next.items, item)
	return next, item
}

// UpdateQuantity sets a line's quantity, clamped to at least 1. Unknown ids are a no-op.
func (c Cart) UpdateQuantity(id string, quantity int) Cart {
	i := c.index(id)
	if i < 0 {
		return c
	}
	next := c.clone()
	next.items[i].Quantity = clamp(quantity)
	return next
}

// Remove drops a line. Unknown ids are a no-op.
func (c Cart) Remove(id string) Cart {
	i := c.index(id)
	if i < 0 {
		return c
	}
	next := Cart{merge: c.merge, items: make([]LineItem, 0, len(c.items)-1)}
	next.items = append(next.items, c.items[:i]...)
	next.items = append(next.items, c.items[i+1:]...)
	return next
}

func (c Cart) Clear() Cart { return Cart{merge: c.merge} }

// Items returns a copy of the lines in insertion order.
func (c Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c Cart) Get(id string) (LineItem, bool) {
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	return LineItem{}, false
}

func (c Cart) Len() int { return len(c.items) }

func (c Cart) Empty() bool { return len(c.items) == 0 }

// Total folds price × quantity over the current lines.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Count is the number of garments, for the header badge.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c Cart) index(id string) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	items := make([]LineItem, len(c.items), len(c.items)+1)
	copy(items, c.items)
	return Cart{items: items, merge: c.merge}
}

func clamp(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
