package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nkoutso/walletcore/internal/api/handler"
	"github.com/nkoutso/walletcore/internal/api/middleware"
	"github.com/nkoutso/walletcore/internal/config"
	"github.com/nkoutso/walletcore/internal/ledger"
	"github.com/nkoutso/walletcore/internal/notification"
	"github.com/nkoutso/walletcore/internal/transferform"
)

// Router wires the wallet's HTTP surface: the ledger read endpoints and
// the transfer sheet's event inputs.
type Router struct {
	cfg        *config.Config
	logger     *zap.Logger
	ledger     *ledger.Ledger
	controller *transferform.Controller
	notices    *notification.Recorder
}

func NewRouter(cfg *config.Config, logger *zap.Logger, l *ledger.Ledger, c *transferform.Controller, notices *notification.Recorder) *Router {
	return &Router{cfg: cfg, logger: logger, ledger: l, controller: c, notices: notices}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))
	r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))

	healthHandler := handler.NewHealthHandler()
	walletHandler := handler.NewWalletHandler(api.ledger)
	sheetHandler := handler.NewTransferSheetHandler(api.controller, api.notices)

	r.Get("/healthz", healthHandler.Live)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Get("/v1/wallet", walletHandler.GetWallet)

	r.Route("/v1/transfer", func(r chi.Router) {
		r.Get("/", sheetHandler.GetState)
		r.Patch("/draft", sheetHandler.PatchDraft)
		r.Post("/amount/commit", sheetHandler.CommitAmount)
		r.Post("/amount/quick", sheetHandler.QuickAmount)
		r.Post("/proceed", sheetHandler.Proceed)
		r.Post("/back", sheetHandler.Back)
		r.Post("/confirm", sheetHandler.Confirm)
		r.Post("/dismiss", sheetHandler.Dismiss)
	})

	return r
}
