package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMinorUnits(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{8500, "85.00"},
		{18500, "185.00"},
		{5, "0.05"},
		{50, "0.50"},
		{0, "0.00"},
		{99, "0.99"},
		{100, "1.00"},
		{-1250, "-12.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMinorUnits(tt.amount))
	}
}

func TestRenderConfirmation(t *testing.T) {
	html, err := RenderConfirmation(Confirmation{
		OrderNumber: "cs_test_42",
		Lines: []ConfirmationLine{
			{Name: "Cuban Link Chain", ImageURL: "https://img.example/chain.jpg", SelectedLength: "20in", Amount: 8500},
			{Name: "Iced Watch", SelectedSize: "42mm", Amount: 18500},
		},
		TotalAmount:        27000,
		PromoCode:          "ICED10",
		DiscountPercentage: 10,
	})
	require.NoError(t, err)

	assert.Contains(t, html, "cs_test_42")
	assert.Contains(t, html, "Cuban Link Chain")
	assert.Contains(t, html, "Iced Watch")
	assert.Contains(t, html, "Length: 20in")
	assert.Contains(t, html, "Size: 42mm")
	assert.Contains(t, html, "$85.00")
	assert.Contains(t, html, "$185.00")
	assert.Contains(t, html, "$270.00")
	assert.Contains(t, html, "Promo ICED10 (10% off) applied")
}

func TestRenderConfirmation_NoPromo(t *testing.T) {
	html, err := RenderConfirmation(Confirmation{
		OrderNumber: "cs_test_43",
		Lines:       []ConfirmationLine{{Name: "Grillz", Amount: 12000}},
		TotalAmount: 12000,
	})
	require.NoError(t, err)

	assert.NotContains(t, html, "Promo")
	assert.NotContains(t, html, "<img")
}

func TestRenderConfirmation_EscapesProductNames(t *testing.T) {
	html, err := RenderConfirmation(Confirmation{
		OrderNumber: "cs_test_44",
		Lines:       []ConfirmationLine{{Name: `<script>alert("x")</script>`, Amount: 100}},
		TotalAmount: 100,
	})
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
}
