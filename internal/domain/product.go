package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Sizes       []string
	Colors      []string
}

// OffersSize reports whether the product can be bought in the given size.
// A product without an explicit size list offers every catalog size.
func (p Product) OffersSize(size string) bool {
	if len(p.Sizes) == 0 {
		return ValidSizeCode(size)
	}
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// RequiresColor reports whether a color must be chosen before adding the
// product to a cart.
func (p Product) RequiresColor() bool {
	return len(p.Colors) > 0
}

func (p Product) OffersColor(color string) bool {
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}
