package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"subscription-checkout/internal/domain/ports/adapter"
	"subscription-checkout/internal/infra/metrics"
	"subscription-checkout/internal/usecase"
)

// Server exposes the checkout flow as a JSON API. Each endpoint corresponds
// to one screen action of the flow; the server renders nothing.
type Server struct {
	flow     usecase.FlowUseCase
	catalog  usecase.CatalogUseCase
	billing  adapter.BillingAPI
	log      *zerolog.Logger
	validate *formValidator
}

func NewServer(
	flow usecase.FlowUseCase,
	catalog usecase.CatalogUseCase,
	billing adapter.BillingAPI,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		flow:     flow,
		catalog:  catalog,
		billing:  billing,
		log:      logger,
		validate: newFormValidator(),
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/plans", s.handleListPlans)
		r.Get("/card-flags", s.handleListCardFlags)
		r.Get("/subscriptions/{id}", s.handleGetSubscription)

		r.Route("/checkout/sessions", func(r chi.Router) {
			r.Post("/", s.handleStartSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Post("/plan", s.handleSelectPlan)
				r.Post("/coupon", s.handleCoupon)
				r.Post("/submit", s.handleSubmit)
				r.Post("/back", s.handleBack)
				r.Post("/reset", s.handleReset)
				r.Post("/navigate", s.handleNavigate)
			})
		})
	})
	return r
}

// requestLogger logs method, path, status and duration. Request bodies are
// never logged: they can carry card data.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
