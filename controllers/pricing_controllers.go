package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/storefront-app/services"
	"github.com/yeremiapane/storefront-app/utils"
)

type PricingController struct {
	Pricing *services.PricingService
	Coupons *services.CouponService
}

func NewPricingController(pricing *services.PricingService, coupons *services.CouponService) *PricingController {
	return &PricingController{Pricing: pricing, Coupons: coupons}
}

// Quote -> hitung rincian harga cart tanpa membuat order
func (pc *PricingController) Quote(c *gin.Context) {
	var req services.CartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	quote, err := pc.Pricing.Price(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart priced", quote)
}

// ValidateCoupon -> cek kode kupon terhadap subtotal
func (pc *PricingController) ValidateCoupon(c *gin.Context) {
	var req struct {
		Code     string          `json:"code" binding:"required"`
		Subtotal decimal.Decimal `json:"subtotal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := pc.Coupons.Resolve(c.Request.Context(), req.Code, req.Subtotal, time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Coupon applied", gin.H{
		"code":          result.Code,
		"discount":      result.Discount,
		"discount_type": result.Offer.DiscountType,
		"description":   result.Offer.Description,
	})
}
