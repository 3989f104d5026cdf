package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderConfirmed OrderStatus = "Confirmed"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered},
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentOnline PaymentMethod = "ONLINE"
)

func (m PaymentMethod) Valid() bool { return m == PaymentCOD || m == PaymentOnline }

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "Unpaid"
	PaymentPaid   PaymentStatus = "Paid"
	PaymentFailed PaymentStatus = "Failed"
	// PaymentRefundDue marks money captured for an order that was already cancelled.
	PaymentRefundDue PaymentStatus = "RefundDue"
)

// ShippingAddress is copied onto the order at placement.
type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// MissingFields lists required fields that are blank.
func (a ShippingAddress) MissingFields(requireFullName bool) []string {
	var missing []string
	if requireFullName && a.FullName == "" {
		missing = append(missing, "fullName")
	}
	if a.Address == "" {
		missing = append(missing, "address")
	}
	if a.City == "" {
		missing = append(missing, "city")
	}
	if a.Country == "" {
		missing = append(missing, "country")
	}
	if a.Phone == "" {
		missing = append(missing, "phone")
	}
	return missing
}

// Order is an immutable priced snapshot of a cart.
type Order struct {
	ID               string
	UserID           string
	ShippingAddress  ShippingAddress
	PaymentMethod    PaymentMethod
	Status           OrderStatus
	PaymentStatus    PaymentStatus
	TotalAmount      float64
	Items            []OrderItem
	PaymentSessionID string
	CheckoutURL      string
	IdempotencyKey   string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderItem keeps its own unit price; it is never refreshed from the catalog.
type OrderItem struct {
	ProductID string
	Quantity  int
	UnitPrice float64
	// Product carries live display metadata on retrieval; nil if deleted.
	Product *Post
}

// ItemsFromCart snapshots the cart lines and returns the order total.
func ItemsFromCart(c *Cart) ([]OrderItem, float64) {
	total := decimal.Zero
	items := make([]OrderItem, 0, len(c.Items))
	for _, line := range c.Items {
		var unit float64
		if line.Product != nil {
			unit = line.Product.EffectivePrice()
		}
		total = total.Add(decimal.NewFromFloat(unit).Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, OrderItem{ProductID: line.ProductID, Quantity: line.Quantity, UnitPrice: unit})
	}
	return items, total.Round(2).InexactFloat64()
}

// MinorUnits converts an amount to integer minor currency units, rounding half-up.
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
