package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"whereisxur/internal/schedule"
)

func TestMetricsExposure(t *testing.T) {
	calc := schedule.MustNew(schedule.DefaultConfig())
	ObserveSchedule(calc.Evaluate(time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC)))
	IncTransition("arrival")
	IncCommandRun("schedule")
	IncCommandError("schedule")
	IncRequest("/schedule")
	IncCache(true)
	IncCache(false)
	RateLimited.Inc()
	ObserveWatchDuration(time.Now().Add(-20 * time.Millisecond))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"whereisxur_evaluations_total",
		"whereisxur_active",
		"whereisxur_seconds_until",
		"whereisxur_transitions_total",
		"whereisxur_command_runs_total",
		"whereisxur_command_errors_total",
		"whereisxur_http_requests_total",
		"whereisxur_http_rate_limited_total",
		"whereisxur_cache_lookups_total",
		"whereisxur_watch_tick_seconds",
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
}

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestObserveScheduleGauges(t *testing.T) {
	calc := schedule.MustNew(schedule.DefaultConfig())
	// Tuesday 15:00, two hours to departure
	ObserveSchedule(calc.Evaluate(time.Date(2024, 1, 9, 15, 0, 0, 0, time.UTC)))
	body := scrape(t)
	if !strings.Contains(body, "\nwhereisxur_active 1\n") {
		t.Fatalf("expected active gauge 1")
	}
	if !strings.Contains(body, `whereisxur_seconds_until{boundary="departure"} 7200`) {
		t.Fatalf("expected departure gauge 7200")
	}
	ObserveSchedule(calc.Evaluate(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
	if !strings.Contains(scrape(t), "\nwhereisxur_active 0\n") {
		t.Fatalf("expected active gauge 0")
	}
}
