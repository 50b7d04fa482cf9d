package api

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/thanhnp/moralis-gateway/internal/api/handlers"
	"github.com/thanhnp/moralis-gateway/internal/api/middleware"
	"github.com/thanhnp/moralis-gateway/internal/config"
)

// Router wraps the Gin router with handlers
type Router struct {
	engine         *gin.Engine
	moralisHandler *handlers.MoralisHandler
	allowedOrigins []string
	logger         zerolog.Logger
}

// NewRouter creates a new Router with all handlers
func NewRouter(cfg *config.Config, forwarder handlers.Forwarder, logger zerolog.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)

	r := &Router{
		engine:         gin.New(),
		moralisHandler: handlers.NewMoralisHandler(forwarder, cfg.Moralis.BaseURL, logger),
		allowedOrigins: cfg.Server.AllowedOrigins,
		logger:         logger,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// setupMiddleware configures middleware
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.CORS(r.allowedOrigins))
	// promhttp negotiates its own compression
	r.engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.engine.Use(middleware.Metrics())
}

// setupRoutes configures API routes
func (r *Router) setupRoutes() {
	// Health check
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// GET carries a JSON body; POST is accepted for browser callers
	m := r.engine.Group("/moralis")
	{
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			m.Handle(method, "/get_wallet_balance", r.moralisHandler.GetWalletBalance)
			m.Handle(method, "/get_wallet_transfers", r.moralisHandler.GetWalletTransfers)
			m.Handle(method, "/get_contract_transfers", r.moralisHandler.GetContractTransfers)
		}
	}
}

// Engine returns the underlying Gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
