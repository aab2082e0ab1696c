package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hugh/kanmind/internal/api/handlers"
	"github.com/hugh/kanmind/internal/api/middleware"
	"github.com/hugh/kanmind/internal/auth"
	"github.com/hugh/kanmind/internal/boards"
	"github.com/hugh/kanmind/internal/comments"
	"github.com/hugh/kanmind/internal/metrics"
	"github.com/hugh/kanmind/internal/tasks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
	limiters []*middleware.RateLimiter
}

type RouterConfig struct {
	DB       *gorm.DB
	Redis    *redis.Client // optional
	Logger   *slog.Logger
	Users    auth.Directory
	Tokens   auth.Tokens
	Boards   *boards.Store
	Tasks    *tasks.Store
	Comments *comments.Store

	Metrics  *metrics.Metrics    // optional
	Gatherer prometheus.Gatherer // served on /metrics, defaults to the global registry

	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()
	router := &Router{Router: r}

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(chimw.StripSlashes)

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:5500", "http://127.0.0.1:5500"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Auth-Token", "X-Request-Id"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.Users, cfg.Tokens, cfg.Logger)
	boardHandler := handlers.NewBoardHandler(cfg.Boards, cfg.Logger)
	taskHandler := handlers.NewTaskHandler(cfg.Tasks, cfg.Logger)
	commentHandler := handlers.NewCommentHandler(cfg.Comments, cfg.Logger)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	public := router.limit(cfg, middleware.ByIP)
	private := router.limit(cfg, middleware.ByUser)

	r.Route("/api", func(r chi.Router) {
		// Public auth endpoints
		r.Group(func(r chi.Router) {
			r.Use(public)
			r.Post("/registration", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Tokens))
			r.Use(private)

			r.Get("/email-check", authHandler.EmailCheck)
			r.Get("/me", authHandler.Me)
			r.Delete("/me", authHandler.DeleteMe)

			r.Route("/boards", func(r chi.Router) {
				r.Get("/", boardHandler.List)
				r.Post("/", boardHandler.Create)
				r.Get("/{id}", boardHandler.Get)
				r.Patch("/{id}", boardHandler.Update)
				r.Put("/{id}", boardHandler.Update)
				r.Delete("/{id}", boardHandler.Delete)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.Create)
				r.Get("/assigned-to-me", taskHandler.AssignedToMe)
				r.Get("/reviewing", taskHandler.Reviewing)
				r.Patch("/{id}", taskHandler.Update)
				r.Put("/{id}", taskHandler.Update)
				r.Delete("/{id}", taskHandler.Delete)

				r.Get("/{id}/comments", commentHandler.List)
				r.Post("/{id}/comments", commentHandler.Create)
				r.Delete("/{id}/comments/{commentID}", commentHandler.Delete)
			})
		})
	})

	return router
}

// limit builds one rate limiting middleware per route group, or a
// pass-through when limiting is disabled.
func (rt *Router) limit(cfg RouterConfig, key middleware.KeyFunc) func(http.Handler) http.Handler {
	if cfg.RateLimitReqs <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimitReqs, cfg.RateLimitSecs)
	rt.limiters = append(rt.limiters, limiter)
	return middleware.RateLimit(limiter, key)
}

// Close stops the rate limiter cleanup goroutines.
func (rt *Router) Close() {
	for _, l := range rt.limiters {
		l.Stop()
	}
}
