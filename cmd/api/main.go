package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"decor-storefront/internal/client"
	"decor-storefront/internal/config"
	"decor-storefront/internal/metrics"
	"decor-storefront/internal/repository"
	"decor-storefront/internal/server"
	"decor-storefront/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

func newLogger(cfg *config.Log) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(h)
}

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(&cfg.Log)

	taxRate, err := decimal.NewFromString(cfg.Pricing.TaxRate)
	if err != nil {
		log.Fatal("invalid PRICING_TAX_RATE:", err)
	}
	depositRate, err := decimal.NewFromString(cfg.Pricing.DepositRate)
	if err != nil {
		log.Fatal("invalid PRICING_DEPOSIT_RATE:", err)
	}

	db := client.InitSqliteClient(cfg.DatabaseURL)
	paymentClient := client.NewPaymentClient(&cfg.Payment)
	mailClient := client.NewMailClient(&cfg.Mail)

	productRepo := repository.NewProductRepository(db)
	fulfillmentRepo := repository.NewFulfillmentRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	eventRepo := repository.NewOutcomeEventRepository(db)

	if err := productRepo.Seed(context.Background()); err != nil {
		log.Fatal("seed products:", err)
	}

	m := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	pricing := service.NewPricingEngine(productRepo, taxRate, depositRate, cfg.Pricing.Currency)
	notifier := service.NewNotifier(mailClient, cfg.Mail.AdminAddress, cfg.Mail.MaxRetries, logger)
	invoices := service.NewInvoiceRenderer()

	checkoutService := service.NewCheckoutService(
		db, paymentClient, pricing,
		fulfillmentRepo, bookingRepo,
		logger, m,
	)
	fulfillmentService := service.NewFulfillmentService(
		db, paymentClient,
		eventRepo, fulfillmentRepo, bookingRepo,
		invoices, notifier,
		logger, m,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(checkoutService, fulfillmentService, logger)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
