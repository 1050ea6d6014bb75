// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/catalogs/bank"
	"shopledger/internal/domain/catalogs/customer"
	"shopledger/internal/domain/catalogs/vendor"
	"shopledger/internal/domain/documents/invoice"
	"shopledger/internal/domain/documents/payment"
	"shopledger/internal/domain/documents/purchaseorder"
	"shopledger/internal/domain/documents/vendorpayment"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/domain/reports/vendorledger"
	"shopledger/internal/infrastructure/http/v1/handlers"
	"shopledger/internal/infrastructure/http/v1/middleware"
	"shopledger/internal/infrastructure/storage/postgres"
	"shopledger/pkg/logger"
)

// RouterConfig holds the wired services the API exposes.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger
	Audit  *postgres.AuditService

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	Customers      *customer.Service
	Vendors        *vendor.Service
	Banks          *bank.Service
	Ledger         *ledger.Service
	Invoices       *invoice.Service
	Payments       *payment.Service
	PurchaseOrders *purchaseorder.Service
	VendorPayments *vendorpayment.Service
	VendorLedger   *vendorledger.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1, JWT protected
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator))
	{
		registerCatalogRoutes(api, cfg)
		registerDocumentRoutes(api, cfg)
		registerLedgerRoutes(api, cfg)

		auditHandler := handlers.NewAuditHandler(cfg.Audit)
		api.GET("/audit/:entityType/:id", auditHandler.History)
	}

	return router
}

func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	// --- CUSTOMERS ---
	{
		handler := handlers.NewCustomerHandler(cfg.Customers)
		group := rg.Group("/customers")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
	}

	// --- VENDORS ---
	{
		handler := handlers.NewVendorHandler(cfg.Vendors)
		group := rg.Group("/vendors")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
	}

	// --- BANK ACCOUNTS ---
	{
		handler := handlers.NewBankHandler(cfg.Banks)
		group := rg.Group("/bank-accounts")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.GET("/:id/transactions", handler.Transactions)
	}
}

func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	// --- INVOICES ---
	{
		handler := handlers.NewInvoiceHandler(cfg.Invoices)
		group := rg.Group("/invoices")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/next-reference", handler.NextReference)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
	}

	// --- PAYMENTS ---
	{
		handler := handlers.NewPaymentHandler(cfg.Payments)
		group := rg.Group("/payments")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.POST("/cash", handler.CreateCash)
		// Static route before /:id so Gin does not treat it as an ID.
		group.GET("/pending-cheques", handler.PendingCheques)
		group.GET("/:id", handler.Get)
		group.PATCH("/:id/status", handler.UpdateStatus)
		group.DELETE("/:id", handler.Delete)
	}

	// --- PURCHASE ORDERS ---
	{
		handler := handlers.NewPurchaseOrderHandler(cfg.PurchaseOrders)
		group := rg.Group("/purchase-orders")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.POST("/:id/receive", handler.Receive)
		group.POST("/:id/cancel", handler.Cancel)
		group.DELETE("/:id", handler.Delete)
	}

	// --- VENDOR PAYMENTS ---
	{
		handler := handlers.NewVendorPaymentHandler(cfg.VendorPayments)
		group := rg.Group("/vendor-payments")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.DELETE("/:id", handler.Delete)
	}
}

func registerLedgerRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	ledgerGroup := rg.Group("/ledger")

	// --- CUSTOMER LEDGER ---
	{
		handler := handlers.NewLedgerHandler(cfg.Ledger)
		ledgerGroup.GET("/customers", handler.CustomersSummary)
		ledgerGroup.GET("/customers/:id", handler.CustomerLedger)
		ledgerGroup.GET("/customers/:id/balance", handler.CustomerBalance)
		ledgerGroup.GET("/statistics", handler.Statistics)
		ledgerGroup.GET("/top-customers", handler.TopCustomers)
	}

	// --- VENDOR LEDGER ---
	{
		handler := handlers.NewVendorLedgerHandler(cfg.VendorLedger)
		ledgerGroup.GET("/vendors", handler.Summaries)
		ledgerGroup.GET("/vendors/:id", handler.Ledger)
	}
}
