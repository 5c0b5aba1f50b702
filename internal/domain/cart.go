package domain

import "github.com/shopspring/decimal"

func init() {
	// The storefront wire contract carries prices and totals as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	MinQuantity = 1
	MaxQuantity = 10
)

var sizeCodes = map[string]struct{}{
	"XS": {}, "S": {}, "M": {}, "L": {}, "XL": {}, "XXL": {},
}

func ValidSizeCode(size string) bool {
	_, ok := sizeCodes[size]
	return ok
}

// LineKey identifies one purchasable configuration of a product. Two lines
// with the same key never coexist in a cart. Color is empty for products
// without color options.
type LineKey struct {
	ProductID int64  `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color,omitempty"`
}

type CartLine struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Size      string          `json:"size"`
	Color     string          `json:"color,omitempty"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"image_url,omitempty"`
}

func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSnapshot is the ordered line list plus the total derived from it.
// The total is always recomputed from the lines, never read back from
// storage as-is.
type CartSnapshot struct {
	Lines []CartLine      `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

func (s CartSnapshot) Empty() bool {
	return len(s.Lines) == 0
}

// RecomputeTotal sums unit price times quantity over all lines.
func RecomputeTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ClampQuantity forces a quantity into the allowed range instead of
// rejecting the write.
func ClampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}
