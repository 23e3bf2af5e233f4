package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/storefront-app/utils"
)

// AuthMiddleware -> validasi bearer token staff, set user_id dan role ke context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization header missing"))
			c.Abort()
			return
		}

		// Validasi format token
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid token format"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if !setClaims(c, tokenString) {
			return
		}
		c.Next()
	}
}

// WebSocketAuthMiddleware -> browser tidak bisa kirim header saat upgrade, token lewat query
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("token missing"))
			c.Abort()
			return
		}
		if !setClaims(c, token) {
			return
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, tokenString string) bool {
	claims, err := utils.ParseToken(tokenString)
	if err != nil || claims == nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid or expired token"))
		c.Abort()
		return false
	}

	if claims.UserID == 0 {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid user ID in token"))
		c.Abort()
		return false
	}

	c.Set("user_id", claims.UserID)
	c.Set("role", claims.Role)
	c.Set("token", tokenString)
	return true
}
