package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"whereisxur/internal/schedule"
)

var (
	Evaluations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "whereisxur_evaluations_total",
		Help: "Total schedule evaluations",
	})
	Active = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "whereisxur_active",
		Help: "1 while the vendor window is open",
	})
	SecondsUntil = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "whereisxur_seconds_until",
		Help: "Seconds until the next boundary",
	}, []string{"boundary"})
	Transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whereisxur_transitions_total",
		Help: "Observed schedule transitions",
	}, []string{"kind"})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whereisxur_command_runs_total",
		Help: "CLI command invocations",
	}, []string{"cmd"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whereisxur_command_errors_total",
		Help: "CLI command failures",
	}, []string{"cmd"})
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whereisxur_http_requests_total",
		Help: "HTTP requests by route",
	}, []string{"route"})
	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "whereisxur_http_rate_limited_total",
		Help: "Requests rejected by the limiter",
	})
	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "whereisxur_cache_lookups_total",
		Help: "Response cache lookups by result",
	}, []string{"result"})
	WatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "whereisxur_watch_tick_seconds",
		Help:    "Watcher tick duration seconds",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(Evaluations, Active, SecondsUntil, Transitions, CommandRuns,
		CommandErrors, HTTPRequests, RateLimited, CacheLookups, WatchDuration)
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) *http.Server {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}

// ObserveSchedule records one evaluation as seen at s.At.
func ObserveSchedule(s schedule.Schedule) {
	Evaluations.Inc()
	if s.IsActive {
		Active.Set(1)
	} else {
		Active.Set(0)
	}
	SecondsUntil.WithLabelValues("arrival").Set(s.NextArrival.Sub(s.At).Seconds())
	SecondsUntil.WithLabelValues("departure").Set(s.NextDeparture.Sub(s.At).Seconds())
	SecondsUntil.WithLabelValues("reset").Set(s.NextReset.Sub(s.At).Seconds())
}

// ObserveWatchDuration records a tick duration
func ObserveWatchDuration(start time.Time) {
	WatchDuration.Observe(time.Since(start).Seconds())
}

func IncTransition(kind string) { Transitions.WithLabelValues(kind).Inc() }
func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
func IncRequest(route string)    { HTTPRequests.WithLabelValues(route).Inc() }

func IncCache(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}
