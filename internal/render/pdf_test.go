package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"invoicer/internal/config"
	"invoicer/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvoice() *model.Invoice {
	return &model.Invoice{
		InvoiceNumber:  "INV-0042",
		Status:         model.StatusOpen,
		IssueDate:      "2024-03-01",
		DueDate:        "2024-03-31",
		Currency:       "EUR",
		Customer:       model.PartySnapshot{Name: "Zoë Café", Address: "1 Main St", City: "Springfield", State: "Illinois", Email: "zoe@example.com"},
		Company:        model.PartySnapshot{Name: "Acme LLC", Email: "billing@acme.test"},
		LineItems:      []model.LineItem{
			{ID: "a", Description: "Design work", Quantity: 2.5, Rate: 80, Amount: 200},
			{ID: "b", Description: "Hosting", Quantity: 1, Rate: 15, Amount: 15},
		},
		Fees:           model.FeeConfiguration{TaxRatePercent: 8.25, HasSurcharge: true, SurchargePercent: 3, HasConvenienceFee: true, ConvenienceFeeAmount: 2},
		Subtotal:       215,
		Surcharge:      6.45,
		ConvenienceFee: 2,
		Tax:            18.4,
		Total:          241.85,
		Notes:          "Net 30.\nThank you.",
		InvoiceTitle:   "Invoice",
		FooterMessage:  model.DefaultFooterMessage,
	}
}

func pngLogo(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestRender(t *testing.T) {
	r := NewRenderer(config.RenderConfig{})

	t.Run("plain invoice", func(t *testing.T) {
		out, err := r.Render(sampleInvoice())
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	})

	t.Run("with logo", func(t *testing.T) {
		inv := sampleInvoice()
		inv.Company.Logo = pngLogo(t)
		out, err := r.Render(inv)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	})

	t.Run("broken logo is skipped", func(t *testing.T) {
		inv := sampleInvoice()
		inv.Company.Logo = "data:image/png;base64,not-base64!!"
		out, err := r.Render(inv)
		require.NoError(t, err)
		assert.NotEmpty(t, out)
	})

	t.Run("empty invoice", func(t *testing.T) {
		out, err := r.Render(&model.Invoice{InvoiceNumber: "X", Fees: model.FeeConfiguration{IsTaxFree: true}})
		require.NoError(t, err)
		assert.NotEmpty(t, out)
	})
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "invoice-INV-0042.pdf", FileName(sampleInvoice()))
	assert.Equal(t, "8.25", trimPercent(8.25))
	assert.Equal(t, "10", trimPercent(10))
	assert.Equal(t, "Springfield, 62701", joinNonEmpty(", ", "Springfield", "", "62701"))
}
