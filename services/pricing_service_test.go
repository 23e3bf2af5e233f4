package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/storefront-app/models"
)

func newTestPricing(t *testing.T) (*PricingService, map[string]models.Menu) {
	t.Helper()
	db := setupTestDB(t)

	pizza := models.Menu{
		Name: "Margherita", Price: dec("200"), IsAvailable: true,
		Sizes:  []models.MenuOption{{Name: "large", Price: dec("320")}},
		Addons: []models.MenuOption{{Name: "extra cheese", Price: dec("40")}, {Name: "olives", Price: dec("25")}},
	}
	require.NoError(t, db.Create(&pizza).Error)
	soda := seedMenu(t, db, "Soda", "50")
	soldOut := models.Menu{Name: "Seasonal Kulfi", Price: dec("90"), IsAvailable: false}
	require.NoError(t, db.Create(&soldOut).Error)

	store := NewOfferStore(db)
	require.NoError(t, store.Save(context.Background(), &models.Offer{
		Code: "FEST50", DiscountType: models.DiscountTypePercentage, DiscountValue: dec("10"),
		ValidFrom: time.Now().Add(-time.Hour), IsActive: true,
	}))

	svc := NewPricingService(NewCatalog(db), NewCouponService(store, "INR"), PricingConfig{
		Currency:    "INR",
		PlatformFee: PlatformFeePolicy{Kind: PlatformFeeFixed, Value: dec("5")},
		Tax:         TaxPolicy{Rate: dec("5")},
		Delivery:    FeeSchedule{BaseFee: dec("20"), PerKmFee: dec("8"), MaxRadiusKm: 10, FreeThreshold: dec("1000")},
		Origin:      storeLocation,
	})
	return svc, map[string]models.Menu{"pizza": pizza, "soda": soda, "soldout": soldOut}
}

func TestPricingService_SizesAndAddons(t *testing.T) {
	svc, menus := newTestPricing(t)

	quote, err := svc.Price(context.Background(), CartRequest{
		Items: []CartItemRequest{
			{MenuID: menus["pizza"].ID, Quantity: 1, Size: "large", Addons: []string{"extra cheese", "olives"}},
			{MenuID: menus["soda"].ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, quote.Items, 2)
	assert.True(t, quote.Items[0].UnitPrice.Equal(dec("385")))
	// 385 + 100 = 485, tax 24.25, platform 5
	assert.True(t, quote.Breakdown.Subtotal.Equal(dec("485")))
	assert.Equal(t, "514.25", quote.Breakdown.GrandTotal.StringFixed(2))
	assert.Nil(t, quote.Delivery)
}

func TestPricingService_CouponAndDelivery(t *testing.T) {
	svc, menus := newTestPricing(t)

	quote, err := svc.Price(context.Background(), CartRequest{
		Items:       []CartItemRequest{{MenuID: menus["pizza"].ID, Quantity: 2}, {MenuID: menus["soda"].ID, Quantity: 2}},
		CouponCode:  "fest50",
		Destination: &nearbyAddress,
		Donation:    dec("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "FEST50", quote.Breakdown.DiscountCode)
	assert.True(t, quote.Breakdown.Discount.Equal(dec("50")))
	require.NotNil(t, quote.Delivery)
	assert.True(t, quote.Breakdown.DeliveryFee.Valid)
	assert.True(t, quote.Breakdown.DeliveryFee.Decimal.Equal(quote.Delivery.Fee))

	expected := dec("500").Sub(dec("50")).Add(quote.Delivery.Fee).Add(dec("5")).Add(dec("22.5")).Add(dec("2"))
	assert.True(t, expected.Equal(quote.Breakdown.GrandTotal), "got %s want %s", quote.Breakdown.GrandTotal, expected)
}

func TestPricingService_Rejections(t *testing.T) {
	svc, menus := newTestPricing(t)
	far := Coordinates{Lat: 13.3409, Lng: 77.1010}

	tests := []struct {
		name string
		req  CartRequest
		want error
	}{
		{"empty cart", CartRequest{}, ErrValidation},
		{"unknown menu", CartRequest{Items: []CartItemRequest{{MenuID: 9999, Quantity: 1}}}, ErrValidation},
		{"unavailable menu", CartRequest{Items: []CartItemRequest{{MenuID: menus["soldout"].ID, Quantity: 1}}}, ErrValidation},
		{"unknown size", CartRequest{Items: []CartItemRequest{{MenuID: menus["pizza"].ID, Quantity: 1, Size: "xl"}}}, ErrValidation},
		{"unknown addon", CartRequest{Items: []CartItemRequest{{MenuID: menus["pizza"].ID, Quantity: 1, Addons: []string{"pineapple"}}}}, ErrValidation},
		{"zero quantity", CartRequest{Items: []CartItemRequest{{MenuID: menus["soda"].ID, Quantity: 0}}}, ErrValidation},
		{"bad coupon", CartRequest{Items: []CartItemRequest{{MenuID: menus["soda"].ID, Quantity: 1}}, CouponCode: "NOPE"}, ErrCouponNotFound},
		{"out of area", CartRequest{Items: []CartItemRequest{{MenuID: menus["soda"].ID, Quantity: 1}}, Destination: &far}, ErrOutOfServiceArea},
		{"negative donation", CartRequest{Items: []CartItemRequest{{MenuID: menus["soda"].ID, Quantity: 1}}, Donation: decimal.NewFromInt(-1)}, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Price(context.Background(), tt.req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
