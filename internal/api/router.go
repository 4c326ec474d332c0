package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oddsline/tracker/internal/api/handler"
	"github.com/oddsline/tracker/internal/api/middleware"
	"github.com/oddsline/tracker/internal/config"
	"github.com/oddsline/tracker/internal/domain"
	"github.com/oddsline/tracker/internal/service"
	"github.com/oddsline/tracker/internal/ws"
)

// RouterDeps bundles every dependency needed to build the router.
// Populated once in main() and passed to SetupRouter.
type RouterDeps struct {
	LifecycleSvc *service.LifecycleService
	Markets      domain.MarketSource
	Hub          *ws.Hub
	Cfg          *config.Config
}

// SetupRouter creates and configures the main Gin engine with all routes,
// middleware, CORS, and rate limiting rules.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// ── CORS ─────────────────────────────────────────────────────────────────
	r.Use(corsMiddleware(deps.Cfg))

	// ── Health check ─────────────────────────────────────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	marketH := handler.NewMarketHandler(deps.Markets)
	predictionH := handler.NewPredictionHandler(deps.LifecycleSvc)
	attemptH := handler.NewAttemptHandler(deps.LifecycleSvc)

	// ── Wallet middleware (shared) ────────────────────────────────────────────
	walletMW := middleware.WalletMiddleware()

	// ── Rate limiters ─────────────────────────────────────────────────────────
	readRL := middleware.RateLimitMiddleware(30) // 30 req/s per IP for read endpoints
	placeRL := middleware.RateLimitMiddleware(5) // 5 req/s per IP for placement

	api := r.Group("/api")
	{
		// ── Markets (public) ─────────────────────────────────────────────────
		markets := api.Group("/markets")
		markets.Use(readRL)
		{
			markets.GET("/:id", marketH.GetByID)
		}

		// ── Wallet-scoped routes ──────────────────────────────────────────────
		scoped := api.Group("")
		scoped.Use(walletMW)
		{
			predictions := scoped.Group("/predictions")
			{
				predictions.POST("", placeRL, predictionH.Place)
				predictions.GET("", readRL, predictionH.List)
				predictions.GET("/stats", readRL, predictionH.Stats)
				predictions.GET("/:id", readRL, predictionH.GetByID)
			}

			attempts := scoped.Group("/attempts")
			attempts.Use(readRL)
			{
				attempts.GET("", attemptH.List)
				attempts.DELETE("", attemptH.Clear)
			}
		}
	}

	// ── WebSocket ─────────────────────────────────────────────────────────────
	if deps.Hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			deps.Hub.ServeWs(c.Writer, c.Request)
		})
	}

	return r
}

// ── CORS helper ───────────────────────────────────────────────────────────────

// corsMiddleware returns a gin middleware that sets appropriate CORS headers.
// In development all origins are allowed; in production only configured origins.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	allowed := make(map[string]bool, len(cfg.Server.AllowedOrigins))
	for _, o := range cfg.Server.AllowedOrigins {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if !cfg.IsProd() {
			// Development: allow any origin
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" && allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Wallet-Address, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
