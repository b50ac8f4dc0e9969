// Package httpapi exposes the vessel and cargo collections over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jacentio/stevedore/internal/auth"
	"github.com/jacentio/stevedore/internal/platform/logger"
)

// RouterConfig wires the handlers and middleware into the router.
type RouterConfig struct {
	Vessels   *VesselHandler
	Cargo     *CargoHandler
	JWTSecret []byte
	Log       *logger.Logger
}

// NewRouter builds the gin engine with all routes registered. Vessel
// routes are authenticated; cargo routes are deliberately not.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(cfg.Log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Accept"},
		AllowCredentials: false,
	}))

	identity := auth.RequireIdentity(cfg.JWTSecret)

	router.GET("/healthcheck", healthCheck)

	vessels := router.Group("/vessels")
	{
		vessels.POST("", identity, cfg.Vessels.Create)
		vessels.GET("", identity, cfg.Vessels.List)
		vessels.PUT("", cfg.Vessels.MethodNotAllowed)
		vessels.PATCH("", cfg.Vessels.MethodNotAllowed)
		vessels.DELETE("", cfg.Vessels.MethodNotAllowed)

		vessels.GET("/:vesselID", identity, cfg.Vessels.Get)
		vessels.PUT("/:vesselID", identity, cfg.Vessels.Replace)
		vessels.PATCH("/:vesselID", identity, cfg.Vessels.Patch)
		vessels.DELETE("/:vesselID", identity, cfg.Vessels.Delete)

		vessels.GET("/:vesselID/items", identity, cfg.Vessels.ListCargo)
		vessels.PUT("/:vesselID/items/:itemID", identity, cfg.Vessels.Assign)
		vessels.DELETE("/:vesselID/items/:itemID", identity, cfg.Vessels.Unassign)
	}

	items := router.Group("/items")
	{
		items.GET("", cfg.Cargo.List)
		items.POST("", cfg.Cargo.Create)
		items.PUT("", cfg.Cargo.MethodNotAllowed)
		items.PATCH("", cfg.Cargo.MethodNotAllowed)
		items.DELETE("", cfg.Cargo.MethodNotAllowed)

		items.GET("/:itemID", cfg.Cargo.Get)
		items.PUT("/:itemID", cfg.Cargo.Replace)
		items.PATCH("/:itemID", cfg.Cargo.Patch)
		items.DELETE("/:itemID", cfg.Cargo.Delete)
	}

	router.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not Found")
	})

	return router
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLogger tags each request with an id and logs its outcome.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header("X-Request-Id", requestID)
		start := time.Now()

		c.Next()

		log.Info("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
