package cart

import (
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/medibridge/internal/modules/inventory"
)

// Item is one line of a shopping cart.
type Item struct {
	ID       inventory.MedicineID `json:"id"`
	Name     string               `json:"name"`
	Price    decimal.Decimal      `json:"price"`
	Image    string               `json:"image,omitempty"`
	Quantity int                  `json:"quantity"`
}

// Subtotal is price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the ordered list of items held for one session.
type Cart struct {
	Session string `json:"session"`
	Items   []Item `json:"items"`
}

// Total is the sum of every item subtotal.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// ItemCount is the sum of quantities.
func (c Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c Cart) index(id inventory.MedicineID) int {
	for i, it := range c.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// View is the JSON shape returned to clients.
type View struct {
	Cart
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

func (c Cart) View() View {
	if c.Items == nil {
		c.Items = []Item{}
	}
	return View{Cart: c, Total: c.Total(), ItemCount: c.ItemCount()}
}
