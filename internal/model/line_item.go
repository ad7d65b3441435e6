package model

// LineItem is one billable row of an invoice.
// Amount is always Quantity * Rate; callers never set it directly.
type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// FeeConfiguration holds the per-invoice toggles that feed the calculator
type FeeConfiguration struct {
	IsTaxFree            bool    `gorm:"not null;default:false" json:"is_tax_free"`
	TaxRatePercent       float64 `gorm:"not null;default:0" json:"tax_rate_percent"`
	HasConvenienceFee    bool    `gorm:"not null;default:false" json:"has_convenience_fee"`
	ConvenienceFeeAmount float64 `gorm:"not null;default:0" json:"convenience_fee_amount"`
	HasSurcharge         bool    `gorm:"not null;default:false" json:"has_surcharge"`
	SurchargePercent     float64 `gorm:"not null;default:0" json:"surcharge_percent"`
}
