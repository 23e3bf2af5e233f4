package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/storefront-app/config"
	"github.com/yeremiapane/storefront-app/controllers"
	"github.com/yeremiapane/storefront-app/kds"
	"github.com/yeremiapane/storefront-app/middlewares"
	"github.com/yeremiapane/storefront-app/models"
	"github.com/yeremiapane/storefront-app/services"
	"gorm.io/gorm"
)

// Dependencies -> semua service yang dipakai controller
type Dependencies struct {
	DB          *gorm.DB
	Hub         *kds.Hub
	Offers      services.OfferStore
	Coupons     *services.CouponService
	Pricing     *services.PricingService
	Orders      *services.OrderService
	Reconciler  *services.PaymentReconciler
	Monitor     *services.PaymentMonitor
	Currency    string
	CORSOrigins []string
}

// BuildDependencies -> rakit service dari config, gateway bisa diganti fake di test
func BuildDependencies(db *gorm.DB, gateway services.Gateway, cfg *config.Config, hub *kds.Hub) *Dependencies {
	offers := services.NewOfferStore(db)
	coupons := services.NewCouponService(offers, cfg.Currency)
	pricing := services.NewPricingService(services.NewCatalog(db), coupons, cfg.PricingConfig())
	monitor := services.NewPaymentMonitor(db, cfg.AbandonAfter)

	return &Dependencies{
		DB:          db,
		Hub:         hub,
		Offers:      offers,
		Coupons:     coupons,
		Pricing:     pricing,
		Orders:      services.NewOrderService(db, hub),
		Reconciler:  services.NewPaymentReconciler(db, gateway, cfg.ReconcilerConfig(), monitor, hub),
		Monitor:     monitor,
		Currency:    cfg.Currency,
		CORSOrigins: cfg.CORSOrigins,
	}
}

func SetupRouter(deps *Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.CORSOrigins))
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(deps.DB)
	menuCtrl := controllers.NewMenuController(deps.DB)
	pricingCtrl := controllers.NewPricingController(deps.Pricing, deps.Coupons)
	orderCtrl := controllers.NewOrderController(deps.Orders, deps.Pricing)
	paymentCtrl := controllers.NewPaymentController(deps.Reconciler, deps.Pricing, deps.Monitor)
	offerCtrl := controllers.NewOfferController(deps.Offers)
	adminCtrl := controllers.NewAdminController(deps.DB, deps.Currency)
	kdsCtrl := controllers.NewKDSController(deps.Hub, deps.CORSOrigins)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login
	r.POST("/login", middlewares.NewStrictRateLimiter(), userCtrl.Login)

	// -- CUSTOMER (Tanpa Auth) --
	public := r.Group("/")
	public.Use(middlewares.NewRateLimiter(120, time.Minute).RateLimit())
	{
		public.GET("/menus", menuCtrl.GetAllMenus)
		public.POST("/pricing/quote", pricingCtrl.Quote)
		public.POST("/coupons/validate", pricingCtrl.ValidateCoupon)
		public.POST("/orders/cash", orderCtrl.PlaceCashOrder)
		public.GET("/orders/:order_id/track", orderCtrl.Track)
	}

	// Pembayaran customer
	payments := r.Group("/payments")
	payments.Use(middlewares.PaymentSecurityHeaders(), middlewares.LogPaymentRequest())
	{
		payments.POST("/orders", middlewares.PaymentRateLimiter(), paymentCtrl.CreatePaymentOrder)
		payments.POST("/verify", middlewares.PaymentRateLimiter(), paymentCtrl.VerifyPayment)
		payments.GET("/:order_id/status", paymentCtrl.GetPaymentStatus)
	}

	// Webhook gateway tidak dibatasi rate, redelivery harus selalu diterima
	r.POST("/payments/webhook", middlewares.WebhookLogger(), paymentCtrl.Webhook)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware(), middlewares.RequireRole(models.RoleAdmin, models.RoleStaff))

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)
	auth.POST("/users", middlewares.RequireRole(models.RoleAdmin), userCtrl.Register)
	auth.GET("/dashboard/stats", adminCtrl.GetDashboardStats)

	// MENUS (staff/admin)
	auth.GET("/menus", menuCtrl.GetAllMenusAdmin)
	auth.POST("/menus", menuCtrl.CreateMenu)
	auth.PUT("/menus/:menu_id", menuCtrl.UpdateMenu)
	auth.DELETE("/menus/:menu_id", menuCtrl.DeleteMenu)

	// ORDERS (staff/admin)
	auth.GET("/orders", orderCtrl.GetAllOrders)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.POST("/orders/:order_id/accept", orderCtrl.Accept)
	auth.PATCH("/orders/:order_id/status", orderCtrl.UpdateStatus)

	// PAYMENTS (staff/admin)
	auth.POST("/payments/:order_id/manual-verify", paymentCtrl.ManualVerify)
	auth.GET("/payments/metrics", paymentCtrl.GetMetrics)
	auth.GET("/payments/stale", paymentCtrl.GetStale)
	auth.GET("/payments/anomalies", paymentCtrl.GetAnomalies)

	// OFFERS (staff/admin)
	auth.GET("/offers", offerCtrl.GetAllOffers)
	auth.POST("/offers", offerCtrl.SaveOffer)
	auth.DELETE("/offers/:code", offerCtrl.DeleteOffer)

	// WebSocket endpoint dengan middleware khusus
	r.GET("/admin/ws",
		middlewares.WebSocketAuthMiddleware(),
		middlewares.RequireRole(models.RoleAdmin, models.RoleStaff),
		kdsCtrl.KDSHandler,
	)

	return r
}
