package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pagbridge/internal/gateway"
	"pagbridge/internal/handler"
	"pagbridge/internal/middleware"
	"pagbridge/internal/repository"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	db *gorm.DB,
	gateways gateway.Registry,
	deduper middleware.NotificationDeduper,
	logger *zap.Logger,
	apiKey string,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger(logger))

	// Repositories
	invoices := repository.NewInvoiceRepository(db)
	transactions := repository.NewTransactionRepository(db)

	// Handlers
	checkoutHandler := handler.NewCheckoutHandler(invoices, gateways, logger)
	callbackHandler := handler.NewCallbackHandler(invoices, transactions, gateways, logger)
	adminHandler := handler.NewAdminHandler(invoices, transactions, logger)

	// Payment flow
	payments := e.Group("/payments")
	payments.POST("/:gateway/checkout", checkoutHandler.Checkout)
	payments.GET("/:gateway/checkout/:invoice", checkoutHandler.CheckoutRedirect)

	// Gateway notifications (deduplicated at the edge)
	callbacks := payments.Group("/:gateway/callback")
	callbacks.Use(middleware.CallbackDedup(deduper))
	callbacks.POST("", callbackHandler.Callback)

	// Admin listing behind API auth
	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.APIAuth(apiKey))
	apiGroup.GET("/invoices", adminHandler.ListInvoices)
	apiGroup.GET("/transactions", adminHandler.ListTransactions)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}
