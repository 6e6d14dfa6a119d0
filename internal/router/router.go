package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-search/internal/config"
	"github.com/windoze95/saltybytes-search/internal/handlers"
	"github.com/windoze95/saltybytes-search/internal/logger"
	"github.com/windoze95/saltybytes-search/internal/middleware"
	"github.com/windoze95/saltybytes-search/internal/render"
	"github.com/windoze95/saltybytes-search/internal/service"
	"github.com/windoze95/saltybytes-search/internal/ws"
)

// SetupRouter sets up the Gin router.
func SetupRouter(cfg *config.Config, recipeService *service.RecipeService, hub *ws.Hub) *gin.Engine {
	// Create default Gin router
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.EnvVars.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.EnvVars.AllowedOrigins
	}
	r.Use(cors.New(corsConfig))

	// Add request ID middleware for request correlation
	r.Use(logger.RequestIDMiddleware())

	r.SetHTMLTemplate(render.Templates())

	// Ping route for testing
	r.GET("/ping", handlers.Ping)

	searchHandler := handlers.NewSearchHandler(recipeService)
	searchLimiter := middleware.RateLimitByIP(cfg.EnvVars.SearchRateLimitRPS, time.Minute, 10*time.Minute)

	// Search page
	r.GET("/", searchHandler.Index)
	r.GET("/search", searchLimiter, searchHandler.SearchPage)
	r.POST("/search", searchLimiter, searchHandler.SearchPage)

	api := r.Group("/v1")
	{
		// Search the collection and return enriched cards as JSON
		api.GET("/recipes/search", searchLimiter, searchHandler.SearchRecipes)

		// Stream enriched cards over a WebSocket
		sessionHandler := ws.NewSearchSessionHandler(hub, recipeService, cfg.EnvVars.AllowedOrigins, cfg.EnvVars.SearchRateLimitRPS)
		api.GET("/ws/search", searchLimiter, sessionHandler.HandleSearchSession)
	}

	return r
}
