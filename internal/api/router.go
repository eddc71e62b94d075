package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/umutoz/defter-be/internal/api/handlers"
	"github.com/umutoz/defter-be/internal/auth"
	"github.com/umutoz/defter-be/internal/metrics"
	"github.com/umutoz/defter-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	tokens *auth.TokenManager,
	corsOrigins []string,
	userService services.UserServiceProvider,
	transactionService services.TransactionServiceProvider,
	billService services.BillServiceProvider,
	summaryService services.SummaryServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, tokens)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	billHandler := handlers.NewBillHandler(billService)
	summaryHandler := handlers.NewSummaryHandler(summaryService)

	// Liveness probe and scrape endpoint stay outside the versioned,
	// authenticated API.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", userHandler.Register)
		r.Post("/auth/login", userHandler.Login)

		// Everything below requires a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(tokens.Middleware(userService))

			r.Get("/auth/me", userHandler.Me)

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", transactionHandler.List)
				r.Post("/", transactionHandler.Create)
				r.Delete("/{id}", transactionHandler.Delete)
			})

			r.Route("/bills", func(r chi.Router) {
				r.Get("/", billHandler.List)
				r.Post("/", billHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", billHandler.Update)
					r.Delete("/", billHandler.Delete)
					r.Put("/paid", billHandler.SetPaid)
				})
			})

			r.Get("/summary", summaryHandler.Get)
			r.Get("/summary/days", summaryHandler.Days)
		})
	})

	return r
}
