// Package http provides the HTTP servers and request routing.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/elioti/elioti/internal/config"
	"github.com/elioti/elioti/internal/metrics"
	sessionHTTP "github.com/elioti/elioti/internal/session/http"
	transactionHTTP "github.com/elioti/elioti/internal/transaction/http"
	userHTTP "github.com/elioti/elioti/internal/user/http"
)

// readinessCheckTimeout bounds the database ping in the readiness handler.
const readinessCheckTimeout = 2 * time.Second

// RouterDeps bundles the handlers and middleware the router mounts.
type RouterDeps struct {
	Config             *config.Config
	Logger             *slog.Logger
	DB                 *sql.DB
	Auth               *sessionHTTP.AuthMiddleware
	AuthHandler        *sessionHTTP.AuthHandler
	UserHandler        *userHTTP.UserHandler
	TransactionHandler *transactionHTTP.TransactionHandler
	MeterProvider      metric.MeterProvider
}

// NewRouter builds the Gin engine with the full middleware chain and all
// application routes.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(deps.Logger))

	if corsMiddleware := createCORSMiddleware(
		deps.Config.CORSEnabled, deps.Config.CORSAllowOrigins, deps.Logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if deps.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(deps.MeterProvider, deps.Config.MetricsNamespace))
	}

	router.GET("/health", healthHandler)
	router.GET("/ready", readinessHandler(deps.DB))

	v1 := router.Group("/v1")

	// Unauthenticated auth surface. Login and registration share the per-IP
	// rate limiter since both accept credentials from unauthenticated clients.
	auth := v1.Group("/auth")
	if deps.Config.RateLimitLoginEnabled {
		limiter := sessionHTTP.LoginRateLimitMiddleware(
			deps.Config.RateLimitLoginRequestsPerSec,
			deps.Config.RateLimitLoginBurst,
			deps.Logger,
		)
		auth.POST("/register", limiter, deps.AuthHandler.RegisterHandler)
		auth.POST("/login", limiter, deps.AuthHandler.LoginHandler)
	} else {
		auth.POST("/register", deps.AuthHandler.RegisterHandler)
		auth.POST("/login", deps.AuthHandler.LoginHandler)
	}
	auth.POST("/logout", deps.Auth.RequireAuth(), deps.AuthHandler.LogoutHandler)
	auth.POST("/refresh", deps.AuthHandler.RefreshHandler)

	// Public reference data.
	v1.GET("/categories", deps.TransactionHandler.CategoriesHandler)

	// Everything under /users/:userId belongs to exactly one user and is
	// gated on ownership of that subject.
	users := v1.Group("/users/:userId", deps.Auth.RequireAuth(), deps.Auth.RequireOwnership())
	users.GET("", deps.UserHandler.GetUserHandler)
	users.GET("/transactions", deps.TransactionHandler.ListTransactionsHandler)
	users.POST("/transactions", deps.TransactionHandler.CreateTransactionHandler)
	users.GET("/transactions/:transactionId", deps.TransactionHandler.GetTransactionHandler)
	users.PUT("/transactions/:transactionId", deps.TransactionHandler.UpdateTransactionHandler)
	users.DELETE("/transactions/:transactionId", deps.TransactionHandler.DeleteTransactionHandler)

	// Admin surface.
	admin := v1.Group("/admin", deps.Auth.RequireAuth(), deps.Auth.RequireRole("admin"))
	admin.GET("/users", deps.UserHandler.ListUsersHandler)

	return router
}

// healthHandler reports liveness.
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports readiness, checking the database connection.
func readinessHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), readinessCheckTimeout)
			defer cancel()

			if err := db.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":     "not_ready",
					"components": gin.H{"database": "error"},
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

// CustomLoggerMiddleware logs each request with its request id, status and
// latency using slog.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("http request",
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}
