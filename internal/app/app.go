package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nkoutso/walletcore/internal/api"
	"github.com/nkoutso/walletcore/internal/config"
	"github.com/nkoutso/walletcore/internal/domain"
	"github.com/nkoutso/walletcore/internal/gateway"
	"github.com/nkoutso/walletcore/internal/ledger"
	"github.com/nkoutso/walletcore/internal/notification"
	"github.com/nkoutso/walletcore/internal/observability"
	"github.com/nkoutso/walletcore/internal/schema"
	"github.com/nkoutso/walletcore/internal/transferform"
)

// seedDepositAmount is the opening "receive" entry when seed history is on.
var seedDepositAmount = decimal.NewFromInt(200)

// Run bootstraps the wallet core and HTTP server, blocking until shutdown.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	observability.Init()

	wallet, err := seedLedger(cfg)
	if err != nil {
		return fmt.Errorf("seed ledger: %w", err)
	}

	balanceF, _ := wallet.Balance().Float64()
	observability.SetWalletBalance(balanceF)
	unsubscribe := wallet.Subscribe(func(s ledger.Snapshot) {
		f, _ := s.Balance.Float64()
		observability.SetWalletBalance(f)
	})
	defer unsubscribe()

	notices := &notification.Recorder{}
	notifier := notification.Tee{notification.NewZapNotifier(logger), notices}

	mockGateway := gateway.NewMockGateway()
	mockGateway.Latency = cfg.GatewayLatency

	controller := transferform.New(
		schema.New(cfg.RecipientNameMinLen, cfg.DefaultPhoneRegion),
		wallet,
		mockGateway,
		notifier,
		logger,
	)

	router := api.NewRouter(cfg, logger, wallet, controller, notices)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GatewayLatency + 15*time.Second, // confirm blocks for the gateway round-trip
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting",
			zap.String("port", cfg.HTTPPort),
			zap.String("balance", wallet.Balance().String()),
		)
		serverErr <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return nil
}

// seedLedger opens the ledger at the configured balance. With seed history
// enabled, part of the opening balance arrives as a demonstrable "receive"
// entry so fresh installs show a non-empty history.
func seedLedger(cfg *config.Config) (*ledger.Ledger, error) {
	balance, err := decimal.NewFromString(cfg.SeedBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_BALANCE %q: %w", cfg.SeedBalance, err)
	}

	if !cfg.SeedHistory || balance.LessThan(seedDepositAmount) {
		return ledger.New(balance), nil
	}

	l := ledger.New(balance.Sub(seedDepositAmount))
	l.AddTransaction(seedDepositAmount, "From: Acme Payroll", domain.TransactionReceive)
	return l, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info", "":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
