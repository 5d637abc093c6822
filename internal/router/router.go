package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ladybird-ops/ladybird-backend/config"
	"github.com/ladybird-ops/ladybird-backend/internal/app/controller"
	"github.com/ladybird-ops/ladybird-backend/internal/middleware"
	"github.com/ladybird-ops/ladybird-backend/internal/ws"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

type Router struct {
	storeController     *controller.StoreController
	equipmentController *controller.EquipmentController
	hub                 *ws.Hub
	config              *config.Config
}

func NewRouter(
	storeController *controller.StoreController,
	equipmentController *controller.EquipmentController,
	hub *ws.Hub,
	cfg *config.Config,
) *Router {
	return &Router{
		storeController:     storeController,
		equipmentController: equipmentController,
		hub:                 hub,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	router.Use(middleware.RateLimiter(
		rate.Limit(r.config.RateLimit.RequestsPerSecond),
		r.config.RateLimit.Burst,
	))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "LadyBird API is running",
		})
	})

	listingCache := cache.New(r.config.Cache.TTL, 2*r.config.Cache.TTL)

	v1 := router.Group("/api/v1")
	{
		stores := v1.Group("/stores")
		{
			stores.GET("", middleware.ResponseCache(listingCache, r.config.Cache.TTL), r.storeController.ListStores)
			stores.GET("/:id", r.storeController.GetStoreByID)
			stores.GET("/:id/equipment", r.equipmentController.ListEquipmentByStore)
			stores.POST("", r.storeController.CreateStore)
			stores.PUT("/:id", r.storeController.UpdateStore)
			stores.DELETE("/:id", r.storeController.DeleteStore)
		}

		equipment := v1.Group("/equipment")
		{
			equipment.GET("", r.equipmentController.ListEquipment)
			equipment.GET("/types", middleware.ResponseCache(listingCache, r.config.Cache.TTL), r.equipmentController.ListTypes)
			equipment.GET("/export", r.equipmentController.ExportEquipment)
			equipment.GET("/:id", r.equipmentController.GetEquipmentByID)
			equipment.GET("/:id/transfers", r.equipmentController.ListTransfers)
			equipment.POST("", r.equipmentController.CreateEquipment)
			equipment.PUT("/:id", r.equipmentController.UpdateEquipment)
			equipment.DELETE("/:id", r.equipmentController.DeleteEquipment)
			equipment.PATCH("/:id/mark-down", r.equipmentController.MarkAsDown)
			equipment.PATCH("/:id/mark-operational", r.equipmentController.MarkAsOperational)
		}

		if r.hub != nil {
			v1.GET("/ws/equipment", ws.Serve(r.hub))
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
