// Package totals derives invoice money figures from line items and a fee configuration.
package totals

import (
	"invoicer/internal/model"

	"github.com/shopspring/decimal"
)

// Totals is the calculator output. Values carry full float64 precision;
// rounding happens only in Format.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	Surcharge      float64 `json:"surcharge"`
	ConvenienceFee float64 `json:"convenience_fee"`
	Tax            float64 `json:"tax"`
	Total          float64 `json:"total"`
}

// Compute is pure: identical inputs always give identical output.
//
// Surcharge and the convenience fee are part of the taxable base, so tax is
// levied on subtotal + surcharge + convenience fee.
func Compute(items []model.LineItem, fees model.FeeConfiguration) Totals {
	var subtotal float64
	for _, it := range items {
		subtotal += it.Amount
	}

	var surcharge float64
	if fees.HasSurcharge {
		surcharge = subtotal * (fees.SurchargePercent / 100)
	}

	var convenienceFee float64
	if fees.HasConvenienceFee {
		convenienceFee = fees.ConvenienceFeeAmount
	}

	var tax float64
	if !fees.IsTaxFree {
		tax = (subtotal + surcharge + convenienceFee) * (fees.TaxRatePercent / 100)
	}

	return Totals{
		Subtotal:       subtotal,
		Surcharge:      surcharge,
		ConvenienceFee: convenienceFee,
		Tax:            tax,
		Total:          subtotal + surcharge + convenienceFee + tax,
	}
}

// Apply writes the totals onto the invoice
func (t Totals) Apply(inv *model.Invoice) {
	inv.Subtotal = t.Subtotal
	inv.Surcharge = t.Surcharge
	inv.ConvenienceFee = t.ConvenienceFee
	inv.Tax = t.Tax
	inv.Total = t.Total
}

// FromInvoice reads the stored totals back without recomputing them
func FromInvoice(inv model.Invoice) Totals {
	return Totals{
		Subtotal:       inv.Subtotal,
		Surcharge:      inv.Surcharge,
		ConvenienceFee: inv.ConvenienceFee,
		Tax:            inv.Tax,
		Total:          inv.Total,
	}
}

// Format renders a money value with two decimals regardless of currency
func Format(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
