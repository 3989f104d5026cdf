package entity

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrDiscountPercentRange = errors.New("discount percentage must be between 0 and 100")

// Post is a product listed by a user.
type Post struct {
	ID            string
	UserID        string
	Title         string
	Description   string
	Price         float64
	DiscountPrice float64
	Category      string
	Stock         int
	InStock       bool
	ImageURL      string
	ImageMediaID  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EffectivePrice is the discount price when set and nonzero, else the base price.
func (p *Post) EffectivePrice() float64 {
	return EffectiveUnitPrice(p.Price, p.DiscountPrice)
}

// ApplyDiscount sets DiscountPrice from a percentage of Price.
func (p *Post) ApplyDiscount(percent float64) error {
	dp, err := ComputeDiscountedPrice(p.Price, percent)
	if err != nil {
		return err
	}
	if dp >= p.Price {
		dp = p.Price
	}
	p.DiscountPrice = dp
	return nil
}

// Reprice sets Price and scales an existing discount by the same factor, so a
// post discounted from 100 to 75 and repriced to 200 is discounted to 150.
func (p *Post) Reprice(price float64) {
	switch {
	case p.DiscountPrice == 0 || price == p.Price:
	case p.Price <= 0:
		p.DiscountPrice = 0
	default:
		ratio := decimal.NewFromFloat(p.DiscountPrice).Div(decimal.NewFromFloat(p.Price))
		p.DiscountPrice = decimal.NewFromFloat(price).Mul(ratio).Round(2).InexactFloat64()
	}
	p.Price = price
}

// EffectiveUnitPrice picks discount over price when discount is nonzero.
func EffectiveUnitPrice(price, discountPrice float64) float64 {
	if discountPrice != 0 {
		return discountPrice
	}
	return price
}

// ComputeDiscountedPrice returns price reduced by discountPercent, rounded
// half-up to two decimals. It returns the discounted absolute price, not the
// discount amount.
func ComputeDiscountedPrice(price, discountPercent float64) (float64, error) {
	if discountPercent < 0 || discountPercent > 100 {
		return 0, ErrDiscountPercentRange
	}
	if discountPercent == 0 {
		return price, nil
	}
	p := decimal.NewFromFloat(price)
	cut := p.Mul(decimal.NewFromFloat(discountPercent)).Div(decimal.NewFromInt(100))
	return p.Sub(cut).Round(2).InexactFloat64(), nil
}
