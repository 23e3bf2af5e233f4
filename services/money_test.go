package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/storefront-app/models"
)

func TestCalculate_CouponScenario(t *testing.T) {
	items := []models.OrderLineItem{
		{Name: "Veg Biryani", UnitPrice: dec("200"), Quantity: 2},
		{Name: "Lassi", UnitPrice: dec("100"), Quantity: 1},
	}

	subtotal, err := Subtotal(items)
	require.NoError(t, err)
	assert.True(t, subtotal.Equal(dec("500")))

	discount := PercentageDiscount(subtotal, dec("10"))
	assert.True(t, discount.Equal(dec("50")))

	breakdown, err := Calculate(BreakdownInput{Items: items, Discount: discount, DiscountCode: "FEST50"})
	require.NoError(t, err)
	assert.Equal(t, "450", breakdown.GrandTotal.String())
	assert.Equal(t, "FEST50", breakdown.DiscountCode)
}

func TestCalculate_AllComponents(t *testing.T) {
	items := []models.OrderLineItem{{Name: "Thali", UnitPrice: dec("249.50"), Quantity: 2}}

	breakdown, err := Calculate(BreakdownInput{
		Items:       items,
		Discount:    dec("49.90"),
		DeliveryFee: decimal.NewNullDecimal(dec("35")),
		PlatformFee: PlatformFeePolicy{Kind: PlatformFeePercentage, Value: dec("2")},
		Tax:         TaxPolicy{Rate: dec("5")},
		Donation:    dec("3"),
	})
	require.NoError(t, err)

	// subtotal 499, tax 5% dari 449.10 = 22.455, platform 2% dari 499 = 9.98
	assert.True(t, breakdown.Subtotal.Equal(dec("499")))
	assert.True(t, breakdown.Tax.Equal(dec("22.455")))
	assert.True(t, breakdown.PlatformFee.Equal(dec("9.98")))
	// 499 - 49.90 + 35 + 9.98 + 22.455 + 3 = 519.535 -> 519.54
	assert.Equal(t, "519.54", breakdown.GrandTotal.StringFixed(2))
}

func TestCalculate_FixedPlatformFeeAndNoDelivery(t *testing.T) {
	breakdown, err := Calculate(BreakdownInput{
		Items:       []models.OrderLineItem{{Name: "Dosa", UnitPrice: dec("80"), Quantity: 1}},
		PlatformFee: PlatformFeePolicy{Kind: PlatformFeeFixed, Value: dec("5")},
	})
	require.NoError(t, err)
	assert.False(t, breakdown.DeliveryFee.Valid)
	assert.True(t, breakdown.GrandTotal.Equal(dec("85")))
}

func TestCalculate_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input BreakdownInput
	}{
		{
			name:  "negative donation",
			input: BreakdownInput{Items: []models.OrderLineItem{{Name: "a", UnitPrice: dec("1"), Quantity: 1}}, Donation: dec("-1")},
		},
		{
			name:  "zero quantity",
			input: BreakdownInput{Items: []models.OrderLineItem{{Name: "a", UnitPrice: dec("1"), Quantity: 0}}},
		},
		{
			name:  "negative price",
			input: BreakdownInput{Items: []models.OrderLineItem{{Name: "a", UnitPrice: dec("-1"), Quantity: 1}}},
		},
		{
			name: "unknown platform fee",
			input: BreakdownInput{
				Items:       []models.OrderLineItem{{Name: "a", UnitPrice: dec("1"), Quantity: 1}},
				PlatformFee: PlatformFeePolicy{Kind: "tiered", Value: dec("1")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.input)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}
}

func TestCalculate_DiscountClampedToSubtotal(t *testing.T) {
	breakdown, err := Calculate(BreakdownInput{
		Items:    []models.OrderLineItem{{Name: "Chai", UnitPrice: dec("20"), Quantity: 1}},
		Discount: dec("500"),
		Tax:      TaxPolicy{Rate: dec("18")},
	})
	require.NoError(t, err)
	assert.True(t, breakdown.Discount.Equal(dec("20")))
	assert.True(t, breakdown.Tax.IsZero())
	assert.True(t, breakdown.GrandTotal.IsZero())
}

func TestCalculate_Deterministic(t *testing.T) {
	in := BreakdownInput{
		Items:       []models.OrderLineItem{{Name: "Samosa", UnitPrice: dec("17.33"), Quantity: 7}},
		PlatformFee: PlatformFeePolicy{Kind: PlatformFeePercentage, Value: dec("1.5")},
		Tax:         TaxPolicy{Rate: dec("5")},
	}
	first, err := Calculate(in)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Calculate(in)
		require.NoError(t, err)
		assert.True(t, first.GrandTotal.Equal(again.GrandTotal))
	}
}

func TestPercentageDiscount_Properties(t *testing.T) {
	percentages := []string{"0", "1", "7.5", "10", "33", "50", "99.99", "100", "150"}
	for cents := int64(0); cents <= 100000; cents += 1337 {
		subtotal := FromMinorUnits(cents)
		for _, p := range percentages {
			pct := dec(p)
			t.Run(fmt.Sprintf("%s_%s", subtotal, p), func(t *testing.T) {
				d := PercentageDiscount(subtotal, pct)
				assert.False(t, d.IsNegative())
				assert.True(t, d.LessThanOrEqual(subtotal))
				// tidak pernah lebih presisi dari unit minor
				assert.True(t, d.Equal(d.Truncate(2)))
				// floor: selisih dengan nilai eksak kurang dari satu unit minor
				exact := subtotal.Mul(pct).Div(hundred)
				if d.LessThan(subtotal) {
					assert.True(t, exact.Sub(d).LessThan(dec("0.01")))
					assert.True(t, d.LessThanOrEqual(exact))
				}
			})
		}
	}
}

func TestPercentageDiscount_FloorsToMinorUnit(t *testing.T) {
	assert.Equal(t, "33.32", PercentageDiscount(dec("99.99"), dec("33.33")).StringFixed(2))
	assert.Equal(t, "0.33", PercentageDiscount(dec("3.33"), dec("10")).StringFixed(2))
	assert.True(t, PercentageDiscount(dec("0.09"), dec("10")).IsZero())
}

func TestFlatDiscount(t *testing.T) {
	assert.True(t, FlatDiscount(dec("500"), dec("100")).Equal(dec("100")))
	assert.True(t, FlatDiscount(dec("80"), dec("100")).Equal(dec("80")))
	assert.True(t, FlatDiscount(dec("80"), dec("-5")).IsZero())
}

func TestGrandTotal_NeverNegativeAndTwoDecimals(t *testing.T) {
	for cents := int64(1); cents < 50000; cents += 997 {
		price := FromMinorUnits(cents)
		b, err := Calculate(BreakdownInput{
			Items:       []models.OrderLineItem{{Name: "x", UnitPrice: price, Quantity: 3}},
			Discount:    PercentageDiscount(price.Mul(decimal.NewFromInt(3)), dec("15")),
			PlatformFee: PlatformFeePolicy{Kind: PlatformFeePercentage, Value: dec("2.5")},
			Tax:         TaxPolicy{Rate: dec("18")},
		})
		require.NoError(t, err)
		assert.False(t, b.GrandTotal.IsNegative())
		assert.True(t, b.GrandTotal.Equal(b.GrandTotal.Round(2)))
	}
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(45000), ToMinorUnits(dec("450")))
	assert.Equal(t, int64(51954), ToMinorUnits(dec("519.54")))
	assert.True(t, FromMinorUnits(51954).Equal(dec("519.54")))
}
