package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"golang.org/x/time/rate"

	"whereisxur/internal/cache"
	"whereisxur/internal/excuse"
	"whereisxur/internal/live"
	"whereisxur/internal/logging"
	"whereisxur/internal/metrics"
	"whereisxur/internal/schedule"
	"whereisxur/internal/store/sqlitestore"
)

// HistoryStore reads recorded crossings; *sqlitestore.DB satisfies it.
type HistoryStore interface {
	LoadTransitionsRange(ctx context.Context, start, end time.Time, kind string) ([]sqlitestore.Transition, error)
	LastTransition(ctx context.Context) (sqlitestore.Transition, error)
}

// Deps are the components the routes read from. Live, Excuses and History are optional.
type Deps struct {
	Calc    *schedule.Calculator
	Live    *live.Schedule
	Excuses *excuse.Picker
	History HistoryStore
}

type Options struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
	CacheTTL       time.Duration
	// Now defaults to time.Now
	Now func() time.Time
}

type Server struct {
	deps     Deps
	origins  []string
	limiter  *rate.Limiter
	bodies   *cache.TTL[int64, []byte]
	cacheTTL time.Duration
	now      func() time.Time
}

func New(deps Deps, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{
		deps:     deps,
		origins:  opts.AllowedOrigins,
		limiter:  newLimiter(opts.RPS, opts.Burst),
		bodies:   cache.NewTTL[int64, []byte](opts.CacheTTL, 64).WithClock(opts.Now),
		cacheTTL: opts.CacheTTL,
		now:      opts.Now,
	}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(httplog.RequestLogger(logging.Logger(), &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(countRoutes)

	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(limit(s.limiter))
		r.Get("/schedule", s.handleSchedule)
		r.Get("/countdown", s.handleCountdown)
		r.Get("/status", s.handleStatus)
		r.Get("/live", s.handleLive)
		r.Get("/transitions", s.handleTransitions)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusNotFound, "NOT_FOUND", "Use /schedule, /countdown, /status, /live or /transitions")
	})
	return r
}

// countRoutes labels requests by matched pattern so ids in paths never leak into labels.
func countRoutes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.IncRequest(route)
	})
}
