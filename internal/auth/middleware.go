package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const claimsKey = "operator_claims"

// AuthMiddleware validates operator tokens and protects the admin routes
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>" format
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format. Expected: Bearer <token>",
			})
			c.Abort()
			return
		}

		claims, err := ValidateToken(parts[1])
		if err != nil {
			log.Printf("[Auth] Token validation failed: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		if guildID := c.Param("guild_id"); guildID != "" && !claims.AllowsGuild(guildID) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Token is not valid for this guild",
			})
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// GetOperator retrieves the operator name from the context
func GetOperator(c *gin.Context) (string, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return "", false
	}
	claims, ok := v.(*Claims)
	if !ok {
		return "", false
	}
	return claims.Operator, true
}
