package cart

import "github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/catalog"

type LineItem struct {
	catalog.Item
	Quantity int `json:"quantity"`
}

// LineTotal is the monthly price of the line.
func (li LineItem) LineTotal() int64 {
	return li.Price * int64(li.Quantity)
}

// Cart holds at most one LineItem per catalog.Key, in insertion order.
// The zero value is an empty cart ready to use.
type Cart struct {
	items []LineItem
}

func New() *Cart {
	return &Cart{}
}

// Add increments the quantity of an existing line or appends a new line with quantity 1.
func (c *Cart) Add(item catalog.Item) LineItem {
	if i := c.index(item.Key()); i >= 0 {
		c.items[i].Quantity++
		return c.items[i]
	}
	li := LineItem{Item: item, Quantity: 1}
	c.items = append(c.items, li)
	return li
}

// Remove deletes the line for key. Removing an absent key is a no-op.
func (c *Cart) Remove(key catalog.Key) {
	i := c.index(key)
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
}

// UpdateQuantity sets the quantity for key; q < 1 removes the line.
// It reports whether a line for key existed.
func (c *Cart) UpdateQuantity(key catalog.Key, q int) bool {
	i := c.index(key)
	if i < 0 {
		return false
	}
	if q < 1 {
		c.Remove(key)
		return true
	}
	c.items[i].Quantity = q
	return true
}

func (c *Cart) Increment(key catalog.Key) bool {
	li, ok := c.Line(key)
	if !ok {
		return false
	}
	return c.UpdateQuantity(key, li.Quantity+1)
}

func (c *Cart) Decrement(key catalog.Key) bool {
	li, ok := c.Line(key)
	if !ok {
		return false
	}
	return c.UpdateQuantity(key, li.Quantity-1)
}

func (c *Cart) Line(key catalog.Key) (LineItem, bool) {
	i := c.index(key)
	if i < 0 {
		return LineItem{}, false
	}
	return c.items[i], true
}

// Subtotal is the monthly total, Σ(price × quantity).
func (c *Cart) Subtotal() int64 {
	return Subtotal(c.items)
}

// Count is the number of units in the cart, Σ quantity.
func (c *Cart) Count() int {
	n := 0
	for _, li := range c.items {
		n += li.Quantity
	}
	return n
}

func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) index(key catalog.Key) int {
	for i := range c.items {
		if c.items[i].Key() == key {
			return i
		}
	}
	return -1
}

// Subtotal sums price × quantity over items.
func Subtotal(items []LineItem) int64 {
	var total int64
	for _, li := range items {
		total += li.LineTotal()
	}
	return total
}
