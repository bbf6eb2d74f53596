// README: Patient cart; all mutations go through Add, UpdateQuantity and Remove.
package cart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"pharmago/internal/types"
)

var (
	ErrPharmacyConflict = types.Validation("cart already holds medicines from another pharmacy")
	ErrInvalidItem      = types.Validation("medicine name, price and pharmacy are required")
	ErrItemNotFound     = fmt.Errorf("%w: medicine is not in the cart", types.ErrNotFound)
)

type Item struct {
	MedicineID   types.ID        `json:"medicine_id,omitempty"`
	MedicineName string          `json:"medicine_name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	PharmacyID   types.ID        `json:"pharmacy_id"`
	PharmacyName string          `json:"pharmacy_name"`
}

// LineTotal is price × quantity.
func (it Item) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Cart holds items from a single pharmacy. The zero value is an empty cart.
type Cart struct {
	items []Item
}

// Add puts a medicine in the cart with quantity 1. Adding a medicine that is
// already present leaves the cart unchanged.
func (c *Cart) Add(it Item) error {
	if it.MedicineName == "" || it.PharmacyID == "" || it.Price.IsNegative() {
		return ErrInvalidItem
	}
	if len(c.items) > 0 && c.items[0].PharmacyID != it.PharmacyID {
		return ErrPharmacyConflict
	}
	if c.indexOf(it.MedicineName) >= 0 {
		return nil
	}
	it.Quantity = 1
	c.items = append(c.items, it)
	return nil
}

// MaxQuantity caps a single line of the cart.
const MaxQuantity = 999

// UpdateQuantity adds delta to the item's quantity, clamped to [1, MaxQuantity].
func (c *Cart) UpdateQuantity(name string, delta int) error {
	i := c.indexOf(name)
	if i < 0 {
		return ErrItemNotFound
	}
	q := c.items[i].Quantity
	switch {
	case delta >= MaxQuantity-q:
		q = MaxQuantity
	case delta <= 1-q:
		q = 1
	default:
		q += delta
	}
	c.items[i].Quantity = q
	return nil
}

func (c *Cart) Remove(name string) error {
	i := c.indexOf(name)
	if i < 0 {
		return ErrItemNotFound
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	return nil
}

func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the cart contents in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// PharmacyID is the pharmacy every item belongs to; empty for an empty cart.
func (c *Cart) PharmacyID() types.ID {
	if len(c.items) == 0 {
		return ""
	}
	return c.items[0].PharmacyID
}

func (c *Cart) PharmacyName() string {
	if len(c.items) == 0 {
		return ""
	}
	return c.items[0].PharmacyName
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

func (c *Cart) indexOf(name string) int {
	for i, it := range c.items {
		if it.MedicineName == name {
			return i
		}
	}
	return -1
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	items := c.items
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(items)
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	c.items = items
	return nil
}
