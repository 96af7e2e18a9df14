package handler

import (
	"jots/internal/adapter/http/middleware"
	redisStore "jots/internal/adapter/storage/redis"
	"jots/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	APIKeys        []string
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	MaxBodyBytes   int64 // 0 = 1 MB
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBody))

	// Liveness check (no auth)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// All ledger routes sit behind the shared-secret API key.
	apiAuth := middleware.APIKeyAuth(deps.APIKeys, deps.Logger)

	customerHandler := NewCustomerHandler(deps.LedgerSvc)
	customers := r.Group("/customers", apiAuth)
	{
		customers.POST("", rl("customers_write"), customerHandler.Create)
		customers.GET("", rl("reads"), customerHandler.List)
		customers.GET("/:id", rl("reads"), customerHandler.Get)
		customers.POST("/:id/credit", rl("ledger_write"), customerHandler.Credit)
		customers.GET("/:id/transactions", rl("reads"), customerHandler.ListTransactions)
	}

	chargeHandler := NewChargeHandler(deps.LedgerSvc)
	charges := r.Group("/charges", apiAuth)
	{
		charges.POST("", rl("ledger_write"), chargeHandler.Create)
	}

	return r
}
