// Package catalog holds the product value types and the pure filter/sort
// engine applied to query results before display.
package catalog

import (
	"github.com/shopspring/decimal"
)

// Product is a catalog item as received from the remote source. Products are
// immutable value data; the cart snapshots what it needs at add-time rather
// than holding references.
type Product struct {
	ID                 int             `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description,omitempty"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage,omitempty"`
	Rating             decimal.Decimal `json:"rating"`
	Stock              int             `json:"stock,omitempty"`
	Brand              string          `json:"brand,omitempty"`
	Category           string          `json:"category"`
	Thumbnail          string          `json:"thumbnail"`
}

// DiscountedPrice returns the effective unit price after the catalog discount
// percentage, rounded to 2 decimal places. A zero discount leaves the price
// unchanged.
func (p Product) DiscountedPrice() decimal.Decimal {
	if p.DiscountPercentage.IsZero() {
		return p.Price
	}
	factor := decimal.NewFromInt(1).Sub(p.DiscountPercentage.Div(decimal.NewFromInt(100)))
	return p.Price.Mul(factor).Round(2)
}

// StockStatus classifies a stock level for display purposes.
type StockStatus string

const (
	StockOut StockStatus = "out-of-stock"
	StockLow StockStatus = "low-stock"
	StockIn  StockStatus = "in-stock"
)

// Status returns the stock classification: zero is out of stock, five or
// fewer is low.
func (p Product) Status() StockStatus {
	switch {
	case p.Stock == 0:
		return StockOut
	case p.Stock <= 5:
		return StockLow
	default:
		return StockIn
	}
}
