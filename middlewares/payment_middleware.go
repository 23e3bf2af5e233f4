package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/storefront-app/utils"
)

// PaymentSecurityHeaders adds security headers for payment endpoints
func PaymentSecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Next()
	}
}

// PaymentRateLimiter implements per-IP rate limiting for client payment endpoints
func PaymentRateLimiter() gin.HandlerFunc {
	return NewIPRateLimiter(100*time.Millisecond, 10).Middleware("please wait before making another payment request")
}

// LogPaymentRequest logs payment request details
func LogPaymentRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		utils.InfoLogger.Printf(
			"Payment Request - Method: %s, Path: %s, Status: %d, Duration: %v",
			method, path, status, duration,
		)
	}
}

// WebhookLogger mencatat event id dan hasil pemrosesan webhook
func WebhookLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := c.GetHeader("X-Razorpay-Event-Id")
		c.Next()

		if c.Writer.Status() >= 400 {
			utils.ErrorLogger.Printf("Webhook event %q rejected with status %d", eventID, c.Writer.Status())
			return
		}
		utils.InfoLogger.Printf("Webhook event %q acknowledged", eventID)
	}
}
