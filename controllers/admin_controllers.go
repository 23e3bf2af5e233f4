package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/storefront-app/models"
	"github.com/yeremiapane/storefront-app/utils"
	"gorm.io/gorm"
)

type AdminController struct {
	DB       *gorm.DB
	Currency string
}

func NewAdminController(db *gorm.DB, currency string) *AdminController {
	return &AdminController{DB: db, Currency: currency}
}

type DashboardStats struct {
	TotalOrders    int64                          `json:"total_orders"`
	TodayOrders    int64                          `json:"today_orders"`
	TotalRevenue   decimal.Decimal                `json:"total_revenue"`
	TodayRevenue   decimal.Decimal                `json:"today_revenue"`
	RevenueDisplay string                         `json:"revenue_display"`
	OrderStats     map[models.OrderStatus]int64   `json:"order_stats"`
	PaymentStats   map[models.PaymentStatus]int64 `json:"payment_stats"`
	Anomalies      int64                          `json:"anomalies"`
}

type statusCount struct {
	Status string
	Total  int64
}

// GetDashboardStats mengambil statistik untuk dashboard
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	db := ac.DB.WithContext(c.Request.Context())
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := DashboardStats{
		OrderStats:   make(map[models.OrderStatus]int64),
		PaymentStats: make(map[models.PaymentStatus]int64),
	}

	// Query total dan today orders
	if err := db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	db.Model(&models.Order{}).Where("created_at >= ?", startOfDay).Count(&stats.TodayOrders)

	var orderCounts []statusCount
	db.Model(&models.Order{}).Select("status, COUNT(*) AS total").Group("status").Scan(&orderCounts)
	for _, sc := range orderCounts {
		stats.OrderStats[models.OrderStatus(sc.Status)] = sc.Total
	}

	var paymentCounts []statusCount
	db.Model(&models.Order{}).Select("payment_status AS status, COUNT(*) AS total").Group("payment_status").Scan(&paymentCounts)
	for _, sc := range paymentCounts {
		stats.PaymentStats[models.PaymentStatus(sc.Status)] = sc.Total
	}

	// Revenue hanya dari order yang sudah paid dan tidak dibatalkan
	paid := db.Model(&models.Order{}).Where("payment_status = ? AND status <> ?", models.PaymentStatusPaid, models.OrderStatusCancelled)
	stats.TotalRevenue = sumGrandTotal(paid.Session(&gorm.Session{}))
	stats.TodayRevenue = sumGrandTotal(paid.Session(&gorm.Session{}).Where("created_at >= ?", startOfDay))
	stats.RevenueDisplay = utils.FormatMoney(stats.TotalRevenue, ac.Currency)

	db.Model(&models.PaymentAnomaly{}).Count(&stats.Anomalies)

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

func sumGrandTotal(query *gorm.DB) decimal.Decimal {
	var total decimal.NullDecimal
	if err := query.Select("SUM(grand_total)").Row().Scan(&total); err != nil {
		utils.ErrorLogger.Printf("Error summing revenue: %v", err)
		return decimal.Zero
	}
	if !total.Valid {
		return decimal.Zero
	}
	return total.Decimal.Round(2)
}
