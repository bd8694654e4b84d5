package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/finledger/transactions-service/internal/api/handlers"
	custommiddleware "github.com/finledger/transactions-service/internal/api/middleware"
	"github.com/finledger/transactions-service/internal/config"
	"github.com/finledger/transactions-service/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	transactionService *service.TransactionService,
	portfolioService *service.PortfolioService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/transactions", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(transactionService)
			r.Get("/", transactionHandler.AllTransactions)
			r.Post("/", transactionHandler.CreateTransaction)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", transactionHandler.GetTransaction)
				// Deletion is destructive and irreversible; gate it behind the
				// internal API key when one is configured.
				r.With(custommiddleware.APIKey(cfg.Security.InternalAPIKey)).Delete("/", transactionHandler.DeleteTransaction)
			})
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
			r.Get("/", portfolioHandler.Snapshot)
			r.Get("/metrics", portfolioHandler.Metrics)
			r.Get("/allocation", portfolioHandler.Allocation)
		})

		r.Route("/imports", func(r chi.Router) {
			importHandler := handlers.NewImportHandler(transactionService)
			r.Post("/transactions", importHandler.ImportTransactions)
		})
	})

	return r
}
