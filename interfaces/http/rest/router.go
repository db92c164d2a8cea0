package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"quoteme-backend/infrastructure/config"
	"quoteme-backend/interfaces/http/rest/handlers"
	"quoteme-backend/interfaces/http/rest/middleware"
	"quoteme-backend/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg           *config.Config
	auth          *middleware.Authenticator
	collector     *observability.Collector
	quotes        *handlers.QuoteHandler
	tags          *handlers.TagHandler
	favorites     *handlers.FavoriteHandler
	subscriptions *handlers.SubscriptionHandler
	proposals     *handlers.ProposalHandler
	admin         *handlers.AdminHandler
	images        *handlers.ImageHandler
	logger        *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	auth *middleware.Authenticator,
	collector *observability.Collector,
	quotes *handlers.QuoteHandler,
	tags *handlers.TagHandler,
	favorites *handlers.FavoriteHandler,
	subscriptions *handlers.SubscriptionHandler,
	proposals *handlers.ProposalHandler,
	admin *handlers.AdminHandler,
	images *handlers.ImageHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:           cfg,
		auth:          auth,
		collector:     collector,
		quotes:        quotes,
		tags:          tags,
		favorites:     favorites,
		subscriptions: subscriptions,
		proposals:     proposals,
		admin:         admin,
		images:        images,
		logger:        logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.cfg.EnableMetrics && rt.collector != nil {
		router.Use(middleware.Metrics(rt.collector))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", rt.cfg.AppBaseURL},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// Public routes, IP rate limited
	router.Group(func(r chi.Router) {
		r.Use(rt.auth.RateLimitIP)

		r.Get("/quote", rt.quotes.GetRandom)
		r.Get("/quotes/{quoteID}", rt.quotes.Get)
		r.Get("/quotes/{quoteID}/page", rt.quotes.Page)
		r.Get("/tags", rt.tags.List)

		r.Post("/subscriptions", rt.subscriptions.Subscribe)
		r.Get("/subscriptions/{email}", rt.subscriptions.Get)
		r.Delete("/subscriptions/{email}", rt.subscriptions.Delete)
		r.Get("/unsubscribe", rt.subscriptions.Unsubscribe)

		r.Post("/proposals", rt.proposals.Submit)
	})

	// Authenticated routes
	router.Route("/favorites", func(r chi.Router) {
		r.Use(rt.auth.Require)
		r.Get("/", rt.favorites.List)
		r.Post("/", rt.favorites.Add)
		r.Get("/{quoteID}", rt.favorites.Check)
		r.Delete("/{quoteID}", rt.favorites.Remove)
	})

	// Admin routes
	router.Route("/admin", func(r chi.Router) {
		r.Use(rt.auth.RequireAdmin)

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", rt.admin.ListQuotes)
			r.Post("/", rt.admin.CreateQuote)
			r.Put("/{quoteID}", rt.admin.UpdateQuote)
			r.Delete("/{quoteID}", rt.admin.DeleteQuote)
			r.Post("/{quoteID}/generate-image", rt.images.Generate)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Post("/", rt.admin.CreateTag)
			r.Delete("/unused", rt.admin.DeleteUnusedTags)
			r.Put("/{tag}", rt.admin.RenameTag)
			r.Delete("/{tag}", rt.admin.DeleteTag)
		})

		r.Route("/proposals", func(r chi.Router) {
			r.Get("/", rt.admin.ListProposals)
			r.Post("/{proposalID}/review", rt.admin.ReviewProposal)
			r.Delete("/{proposalID}", rt.admin.DeleteProposal)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", rt.admin.ListUsers)
			r.Get("/{username}", rt.admin.GetUser)
		})

		r.Get("/search", rt.admin.Search)
		r.Post("/check-duplicates", rt.admin.CheckDuplicates)
		r.Get("/authors", rt.admin.Authors)
		r.Get("/author-quotes", rt.admin.AuthorQuotes)
		r.Get("/stats", rt.admin.Stats)
		r.Post("/generate-tags", rt.admin.GenerateTags)
		r.Get("/export", rt.admin.Export)
		r.Get("/subscriptions", rt.admin.ListSubscriptions)
		r.Get("/image-status/{jobID}", rt.images.Status)
		r.Post("/test-nugget", rt.admin.SendTestNugget)
	})

	// Prometheus scrape endpoint, local server only
	if rt.cfg.EnableMetrics && !rt.cfg.IsLambda && rt.collector != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
			rt.collector.Registry(),
			promhttp.HandlerOpts{},
		))
	}

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
