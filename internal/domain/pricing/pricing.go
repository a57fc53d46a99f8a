// Package pricing computes order totals from cart lines.
//
// Cart lines fall into two classes: tiered items (the discount-eligible
// kottu variants) and flat items (everything else). The combined tiered
// quantity N drives both the tiered subtotal and the delivery fee; flat
// items are always priced at unit price times quantity and never affect
// the fee.
package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidCart is returned when a line carries a negative quantity or a
// negative unit price. These are programmer errors, not user input errors.
var ErrInvalidCart = errors.New("invalid cart")

var (
	twoUnitPrice = decimal.NewFromInt(20) // tiered subtotal at N == 2
	extraUnit    = decimal.NewFromInt(10) // each tiered unit beyond the second
	oneUnitFee   = decimal.NewFromInt(4)  // delivery fee at N == 1
	twoUnitFee   = decimal.NewFromInt(5)  // delivery fee at N == 2
	extraUnitFee = decimal.NewFromInt(2)  // fee per tiered unit beyond the second
)

// Line is a cart line as seen by the pricing engine. Name and UnitPrice are
// denormalized from the catalog at order-creation time.
type Line struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quote is the priced result for a cart. Total is always Subtotal plus
// DeliveryFee; all three are rounded to 2 decimal places.
type Quote struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

// Policy designates which product ids belong to the tiered class.
type Policy struct {
	tiered map[string]struct{}
}

// NewPolicy builds a Policy from the given tiered product ids.
func NewPolicy(tieredIDs ...string) Policy {
	m := make(map[string]struct{}, len(tieredIDs))
	for _, id := range tieredIDs {
		m[id] = struct{}{}
	}
	return Policy{tiered: m}
}

// DefaultPolicy returns the production tier policy: both kottu variants
// share the tier table.
func DefaultPolicy() Policy {
	return NewPolicy("kottu", "veggie-kottu")
}

// Tiered reports whether the product id belongs to the tiered class.
func (p Policy) Tiered(productID string) bool {
	_, ok := p.tiered[productID]
	return ok
}

// Quote prices a cart. It is pure and total for non-negative input: an empty
// cart yields an all-zero quote so the function can serve previews; cart
// emptiness is enforced at the order-creation boundary instead.
func (p Policy) Quote(lines []Line, deliveryEnabled bool) (Quote, error) {
	if err := validateLines(lines); err != nil {
		return Quote{}, err
	}

	tieredQty := 0
	tieredSingles := decimal.Zero // sum of own-price lines, used only at N == 1
	flatSubtotal := decimal.Zero

	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		if p.Tiered(line.ProductID) {
			tieredQty += line.Quantity
			tieredSingles = tieredSingles.Add(line.UnitPrice.Mul(qty))
			continue
		}
		flatSubtotal = flatSubtotal.Add(line.UnitPrice.Mul(qty))
	}

	subtotal := flatSubtotal.Add(tieredSubtotal(tieredQty, tieredSingles))

	fee := decimal.Zero
	if deliveryEnabled {
		fee = deliveryFee(tieredQty)
	}

	subtotal = subtotal.Round(2)
	fee = fee.Round(2)

	return Quote{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal.Add(fee),
	}, nil
}

// tieredSubtotal applies the quantity tier table. At N == 1 each variant
// keeps its own unit price; from N == 2 on, individual prices are ignored.
func tieredSubtotal(n int, singles decimal.Decimal) decimal.Decimal {
	switch {
	case n <= 0:
		return decimal.Zero
	case n == 1:
		return singles
	case n == 2:
		return twoUnitPrice
	default:
		extra := decimal.NewFromInt(int64(n - 2))
		return twoUnitPrice.Add(extra.Mul(extraUnit))
	}
}

// deliveryFee applies the fee tier table, driven by the tiered quantity N
// alone. Flat items never change the fee.
func deliveryFee(n int) decimal.Decimal {
	switch {
	case n <= 0:
		return decimal.Zero
	case n == 1:
		return oneUnitFee
	case n == 2:
		return twoUnitFee
	default:
		extra := decimal.NewFromInt(int64(n - 2))
		return twoUnitFee.Add(extra.Mul(extraUnitFee))
	}
}

func validateLines(lines []Line) error {
	for _, line := range lines {
		if line.Quantity < 0 {
			return errors.Wrapf(ErrInvalidCart, "negative quantity for product %s", line.ProductID)
		}
		if line.UnitPrice.IsNegative() {
			return errors.Wrapf(ErrInvalidCart, "negative unit price for product %s", line.ProductID)
		}
	}
	return nil
}
