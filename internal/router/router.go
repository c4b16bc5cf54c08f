package router

import (
	"context"
	"net/http"
	"time"

	"github.com/burgerboard/api/internal/config"
	"github.com/burgerboard/api/internal/database"
	"github.com/burgerboard/api/internal/handler"
	"github.com/burgerboard/api/internal/logger"
	"github.com/burgerboard/api/internal/metrics"
	mw "github.com/burgerboard/api/internal/middleware"
	"github.com/burgerboard/api/internal/service"
	"github.com/burgerboard/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps carries the collaborators built in main. Guard and Limiter are optional.
type Deps struct {
	Notifier  service.Notifier
	Publisher service.EventPublisher
	Guard     service.IntakeGuard
	Limiter   *mw.RateLimiter
}

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, deps Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware)
	r.Use(metrics.Middleware)
	r.Use(middleware.Recoverer)

	// The chat workflow and the boards are served from other origins.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"authorization", "x-client-info", "apikey", "content-type"},
		MaxAge:         300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := pool.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"degraded","database":"unreachable"}`))
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	newOrderStore := func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}
	orderService := service.NewOrderService(pool, queries, newOrderStore, deps.Notifier, deps.Publisher, service.Options{
		Location:    cfg.Location,
		GraceWindow: cfg.DeleteGraceWindow,
		Guard:       deps.Guard,
	})
	reportService := service.NewReportService(queries, cfg.Location)

	// Chat pipeline
	limiter := deps.Limiter
	if limiter == nil {
		limiter = mw.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		handler.NewChatHandler(orderService).RegisterRoutes(r)
	})

	// Boards
	orderHandler := handler.NewOrderHandler(orderService, cfg.Location)
	r.Route("/orders", orderHandler.RegisterRoutes)

	reportsHandler := handler.NewReportsHandler(reportService, cfg.Location)
	r.Route("/reports", reportsHandler.RegisterRoutes)

	logger.L().Info("router initialized")
	return r
}
