package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the single mutable cart owned by a user.
// Version guards concurrent read-modify-write cycles.
type Cart struct {
	ID        string
	UserID    string
	Items     []CartItem
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartItem struct {
	ProductID string
	Quantity  int
	// Product is populated when the cart is loaded with live catalog data.
	Product *Post
}

// Find returns the index of the line for productID, or -1.
func (c *Cart) Find(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Remove drops the line for productID if present.
func (c *Cart) Remove(productID string) {
	out := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	c.Items = out
}

func (c *Cart) IsEmpty() bool { return c == nil || len(c.Items) == 0 }

// LineTotal is effective unit price times quantity, rounded to cents.
func LineTotal(unitPrice float64, quantity int) float64 {
	return decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity))).Round(2).InexactFloat64()
}
