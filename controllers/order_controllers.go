package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/storefront-app/models"
	"github.com/yeremiapane/storefront-app/services"
	"github.com/yeremiapane/storefront-app/utils"
)

type OrderController struct {
	Orders  *services.OrderService
	Pricing *services.PricingService
}

func NewOrderController(orders *services.OrderService, pricing *services.PricingService) *OrderController {
	return &OrderController{Orders: orders, Pricing: pricing}
}

type placeOrderRequest struct {
	Buyer services.Buyer       `json:"buyer"`
	Cart  services.CartRequest `json:"cart"`
}

// PlaceCashOrder -> order bayar di tempat, langsung masuk antrian staff
func (oc *OrderController) PlaceCashOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	quote, err := oc.Pricing.Price(c.Request.Context(), req.Cart)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := oc.Orders.PlaceCashOrder(c.Request.Context(), req.Buyer, quote)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order placed", order)
}

// Track -> tampilan publik order (tanpa data pribadi)
func (oc *OrderController) Track(c *gin.Context) {
	view, err := oc.Orders.Track(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status", view)
}

// GetAllOrders -> list order untuk staff, filter lewat query string
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	filter := services.OrderFilter{
		Status:        models.OrderStatus(c.Query("status")),
		PaymentStatus: models.PaymentStatus(c.Query("payment_status")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid status filter"))
		return
	}

	var err error
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if filter.Offset, err = queryInt(c, "offset"); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	orders, err := oc.Orders.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID -> detail order lengkap untuk staff
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	order, err := oc.Orders.Get(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// Accept -> staff menerima order
func (oc *OrderController) Accept(c *gin.Context) {
	order, err := oc.Orders.Accept(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order accepted", order)
}

// UpdateStatus -> pindah status order sesuai alur yang diizinkan
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
		Reason string             `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.UpdateStatus(c.Request.Context(), c.Param("order_id"), req.Status, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}
