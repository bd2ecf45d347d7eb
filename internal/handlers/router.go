package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"invite-tracker/internal/auth"
)

// NewRouter builds the admin API
func NewRouter(guilds *GuildHandler, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api/guilds/:guild_id")
	api.Use(auth.AuthMiddleware())
	{
		api.GET("/balance/:user_id", guilds.GetBalance)
		api.POST("/bonus", guilds.AdjustBonus)
		api.GET("/top", guilds.GetTopBalances)
		api.GET("/orders/:user_id", guilds.GetOrders)
		api.GET("/stock", guilds.GetStock)
		api.POST("/stock", guilds.Restock)
		api.POST("/cleanup", guilds.TriggerCleanup)
	}

	return router
}
