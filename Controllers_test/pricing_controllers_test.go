package Controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/storefront-app/models"
	"github.com/yeremiapane/storefront-app/services"
)

func seedOffer(t *testing.T, app *testApp, code, kind, value, minOrder string) {
	t.Helper()
	require.NoError(t, app.db.Create(&models.Offer{
		Code:          code,
		DiscountType:  kind,
		DiscountValue: decimal.RequireFromString(value),
		MinOrderValue: decimal.RequireFromString(minOrder),
		ValidFrom:     time.Now().Add(-time.Hour),
		IsActive:      true,
	}).Error)
}

func TestQuote(t *testing.T) {
	app := newTestApp(t)
	seedOffer(t, app, "SAVE10", models.DiscountTypePercentage, "10", "0")

	cart := app.cart(2)
	cart["coupon_code"] = "save10"
	code, resp := app.do(t, http.MethodPost, "/pricing/quote", cart, "", nil)
	require.Equal(t, http.StatusOK, code, resp.Message)

	var quote services.Quote
	decode(t, resp.Data, &quote)
	assert.True(t, quote.Breakdown.Subtotal.Equal(decimal.NewFromInt(500)))
	assert.True(t, quote.Breakdown.Discount.Equal(decimal.NewFromInt(50)))
	assert.True(t, quote.Breakdown.GrandTotal.Equal(decimal.NewFromInt(450)))
	assert.Equal(t, "SAVE10", quote.Breakdown.DiscountCode)
	assert.Equal(t, "INR", quote.Currency)
}

func TestQuote_OutOfServiceArea(t *testing.T) {
	app := newTestApp(t)

	cart := app.cart(1)
	cart["destination"] = gin.H{"lat": 13.0827, "lng": 80.2707}
	code, resp := app.do(t, http.MethodPost, "/pricing/quote", cart, "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(services.KindOutOfServiceArea), resp.Error.Kind)
	assert.Contains(t, resp.Error.Details, "distance_km")
}

func TestQuote_UnknownMenu(t *testing.T) {
	app := newTestApp(t)

	code, resp := app.do(t, http.MethodPost, "/pricing/quote", gin.H{"items": []gin.H{{"menu_id": 999, "quantity": 1}}}, "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(services.KindValidation), resp.Error.Kind)
}

func TestValidateCoupon(t *testing.T) {
	app := newTestApp(t)
	seedOffer(t, app, "FLAT50", models.DiscountTypeFlat, "50", "300")

	t.Run("below minimum", func(t *testing.T) {
		code, resp := app.do(t, http.MethodPost, "/coupons/validate", gin.H{"code": "FLAT50", "subtotal": "250"}, "", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, string(services.KindBelowMinimumOrder), resp.Error.Kind)
		assert.Equal(t, "add ₹50.00 more to use FLAT50", resp.Message)
	})

	t.Run("applied", func(t *testing.T) {
		code, resp := app.do(t, http.MethodPost, "/coupons/validate", gin.H{"code": "flat50", "subtotal": "300"}, "", nil)
		require.Equal(t, http.StatusOK, code)
		var data struct {
			Code     string          `json:"code"`
			Discount decimal.Decimal `json:"discount"`
		}
		decode(t, resp.Data, &data)
		assert.Equal(t, "FLAT50", data.Code)
		assert.True(t, data.Discount.Equal(decimal.NewFromInt(50)))
	})

	t.Run("unknown", func(t *testing.T) {
		code, resp := app.do(t, http.MethodPost, "/coupons/validate", gin.H{"code": "NOPE", "subtotal": "300"}, "", nil)
		assert.Equal(t, http.StatusNotFound, code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "coupon_not_found", resp.Error.Code)
	})
}
