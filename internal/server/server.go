package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bsead/budget-pro/internal/config"
	"github.com/bsead/budget-pro/internal/handlers"
	"github.com/bsead/budget-pro/internal/ledger"
	"github.com/bsead/budget-pro/internal/middlewares"
	"github.com/bsead/budget-pro/internal/routes"
	"github.com/bsead/budget-pro/internal/services"
)

// NewRouter wires services, handlers and routes over store.
func NewRouter(cfg *config.Config, store ledger.Store, logger *slog.Logger) *gin.Engine {
	// Dependency injection
	projectService := services.NewProjectService(store, logger)
	expenseService := services.NewExpenseService(store, logger)
	balanceService := services.NewBalanceService(store, logger)
	accessRouter := ledger.NewRouter(store, cfg.AdminRole)

	accessHandler := handlers.NewAccessHandler(accessRouter)
	projectHandler := handlers.NewProjectHandler(projectService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	balanceHandler := handlers.NewBalanceHandler(balanceService)

	guards := routes.Guards{
		Authenticate: middlewares.Authenticate(cfg.AccessTokenSecret),
		RequireAdmin: middlewares.RequireAdmin(accessRouter),
	}

	// Initialize Gin router
	router := gin.Default()
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	routes.RegisterRoutes(router, guards, accessHandler, projectHandler, expenseHandler, balanceHandler)

	return router
}

func NewServer(cfg *config.Config, store ledger.Store, logger *slog.Logger) *http.Server {
	// Request contexts derive from base so that Shutdown also ends open
	// balance streams.
	base, cancel := context.WithCancel(context.Background())

	// Create and configure the HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           NewRouter(cfg, store, logger),
		BaseContext:       func(net.Listener) context.Context { return base },
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		// No WriteTimeout: balance streams stay open for as long as the
		// client listens.
	}
	server.RegisterOnShutdown(cancel)
	return server
}
