package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/storefront-app/services"
	"github.com/yeremiapane/storefront-app/utils"
)

type PaymentController struct {
	Reconciler *services.PaymentReconciler
	Pricing    *services.PricingService
	Monitor    *services.PaymentMonitor
}

func NewPaymentController(reconciler *services.PaymentReconciler, pricing *services.PricingService, monitor *services.PaymentMonitor) *PaymentController {
	return &PaymentController{Reconciler: reconciler, Pricing: pricing, Monitor: monitor}
}

type createPaymentOrderRequest struct {
	Buyer    services.Buyer       `json:"buyer"`
	Cart     services.CartRequest `json:"cart"`
	Amount   *decimal.Decimal     `json:"amount,omitempty"`
	Currency string               `json:"currency"`
	Notes    map[string]string    `json:"notes"`
}

// CreatePaymentOrder -> harga dihitung ulang di server, amount dari client hanya dicocokkan
func (pc *PaymentController) CreatePaymentOrder(c *gin.Context) {
	var req createPaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	quote, err := pc.Pricing.Price(c.Request.Context(), req.Cart)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	amount := quote.Breakdown.GrandTotal
	if req.Amount != nil {
		amount = *req.Amount
	}

	result, err := pc.Reconciler.Initiate(c.Request.Context(), services.InitiateRequest{
		Buyer:    req.Buyer,
		Amount:   amount,
		Currency: req.Currency,
		Cart:     quote,
		Notes:    req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Payment order created", gin.H{
		"payment":   result,
		"breakdown": quote.Breakdown,
	})
}

// VerifyPayment -> callback checkout dari browser setelah customer membayar
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	var req struct {
		RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
		RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
		RazorpaySignature string `json:"razorpay_signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := pc.Reconciler.Verify(c.Request.Context(), req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Payment verified", gin.H{
		"order_id":       order.ID,
		"payment_status": order.PaymentStatus,
		"status":         order.Status,
	})
}

// Webhook -> notifikasi server-to-server dari gateway, body dibaca mentah untuk cek signature
func (pc *PaymentController) Webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("failed to read body"))
		return
	}

	result, err := pc.Reconciler.HandleWebhook(
		c.Request.Context(),
		body,
		c.GetHeader("X-Razorpay-Signature"),
		c.GetHeader("X-Razorpay-Event-Id"),
	)
	if err != nil {
		svcErr := services.AsError(err)
		switch {
		case errors.Is(err, services.ErrSignatureInvalid), errors.Is(err, services.ErrValidation):
			respondServiceError(c, err)
		case svcErr != nil:
			// gateway akan retry untuk status 5xx
			utils.RespondErrorBody(c, http.StatusInternalServerError, svcErr.Error(), utils.ErrorBody{Kind: string(svcErr.Kind), Code: svcErr.Code})
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Webhook processed", result)
}

// GetPaymentStatus -> polling status pembayaran oleh client
func (pc *PaymentController) GetPaymentStatus(c *gin.Context) {
	view, err := pc.Reconciler.Status(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment status", view)
}

// ManualVerify -> staff menandai order lunas setelah cek manual
func (pc *PaymentController) ManualVerify(c *gin.Context) {
	var req struct {
		Note string `json:"note"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	order, err := pc.Reconciler.ManualOverride(c.Request.Context(), c.Param("order_id"), req.Note, staffIDFromContext(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment marked as paid", order)
}

// GetMetrics -> counter hasil rekonsiliasi sejak proses start
func (pc *PaymentController) GetMetrics(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Payment metrics", pc.Monitor.GetMetrics())
}

// GetStale -> order initiated yang tidak pernah selesai dibayar
func (pc *PaymentController) GetStale(c *gin.Context) {
	orders, err := pc.Monitor.StaleInitiated(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stale payments", orders)
}

// GetAnomalies -> daftar sinyal pembayaran yang bertentangan
func (pc *PaymentController) GetAnomalies(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	anomalies, err := pc.Monitor.ListAnomalies(c.Request.Context(), c.Query("order_id"), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment anomalies", anomalies)
}
