// Package main is the entry point for the shopledger API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"shopledger/internal/core/lock"
	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/catalogs/bank"
	"shopledger/internal/domain/catalogs/customer"
	"shopledger/internal/domain/catalogs/vendor"
	"shopledger/internal/domain/documents/invoice"
	"shopledger/internal/domain/documents/payment"
	"shopledger/internal/domain/documents/purchaseorder"
	"shopledger/internal/domain/documents/vendorpayment"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/domain/reports/vendorledger"
	"shopledger/internal/infrastructure/events/kafka"
	v1 "shopledger/internal/infrastructure/http/v1"
	"shopledger/internal/infrastructure/storage/postgres"
	"shopledger/internal/infrastructure/storage/postgres/catalog_repo"
	"shopledger/internal/infrastructure/storage/postgres/document_repo"
	"shopledger/internal/infrastructure/storage/postgres/ledger_repo"
	"shopledger/internal/infrastructure/storage/postgres/report_repo"
	"shopledger/pkg/logger"
	"shopledger/pkg/refnum"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting shopledger server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Event publisher ---
	var publisher ledger.EventPublisher = ledger.NopPublisher{}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		kafkaPublisher := kafka.NewPublisher(strings.Split(brokers, ","))
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Infow("kafka publisher initialized", "brokers", brokers)
	}

	// --- JWT ---
	jwtConfig := auth.DefaultJWTConfig(mustEnv("JWT_SECRET"))
	jwtService := auth.NewJWTService(jwtConfig)

	// --- Repositories ---
	customerRepo := catalog_repo.NewCustomerRepo(txManager)
	vendorRepo := catalog_repo.NewVendorRepo(txManager)
	bankRepo := catalog_repo.NewBankRepo(txManager)
	ledgerRepo := ledger_repo.NewRepo(txManager)
	invoiceRepo := document_repo.NewInvoiceRepo(txManager)
	paymentRepo := document_repo.NewPaymentRepo(txManager)
	orderRepo := document_repo.NewPurchaseOrderRepo(txManager)
	vendorPaymentRepo := document_repo.NewVendorPaymentRepo(txManager)
	vendorLedgerRepo := report_repo.NewVendorLedgerRepo(txManager)

	// --- Services ---
	locks := lock.NewKeyed()
	refnumService := refnum.New(txManager)

	customerService := customer.NewService(customerRepo, txManager, auditService)
	vendorService := vendor.NewService(vendorRepo, txManager, auditService)
	bankService := bank.NewService(bankRepo, txManager)
	ledgerService := ledger.NewService(ledgerRepo)
	invoiceService := invoice.NewService(
		invoiceRepo, customerRepo, ledgerService, refnumService,
		txManager, auditService, locks, publisher,
	)
	paymentService := payment.NewService(
		paymentRepo, customerRepo, bankService, ledgerService,
		txManager, auditService, locks, publisher,
	)
	orderService := purchaseorder.NewService(
		orderRepo, vendorRepo, refnumService, txManager, auditService,
	)
	vendorPaymentService := vendorpayment.NewService(
		vendorPaymentRepo, vendorRepo, txManager, auditService,
	)
	vendorLedgerService := vendorledger.NewService(vendorLedgerRepo, vendorRepo, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool,
		Logger:         log.WithComponent("http"),
		Audit:          auditService,
		JWTValidator:   jwtService,
		Customers:      customerService,
		Vendors:        vendorService,
		Banks:          bankService,
		Ledger:         ledgerService,
		Invoices:       invoiceService,
		Payments:       paymentService,
		PurchaseOrders: orderService,
		VendorPayments: vendorPaymentService,
		VendorLedger:   vendorLedgerService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
