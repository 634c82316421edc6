package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
	"golang.org/x/sync/errgroup"

	"whereisxur/internal/cmdlog"
	"whereisxur/internal/config"
	"whereisxur/internal/excuse"
	"whereisxur/internal/jobs"
	"whereisxur/internal/live"
	"whereisxur/internal/logging"
	"whereisxur/internal/metrics"
	"whereisxur/internal/render"
	"whereisxur/internal/schedule"
	"whereisxur/internal/server"
	"whereisxur/internal/status"
	"whereisxur/internal/store/sqlitestore"
	"whereisxur/internal/theme"
)

const defaultConfigPath = "./whereisxur.yaml"

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	var run func([]string) error
	switch cmd {
	case "init":
		run = cmdInit
	case "schedule":
		run = cmdSchedule
	case "watch":
		run = cmdWatch
	case "serve":
		run = cmdServe
	case "status":
		run = cmdStatus
	case "excuse":
		run = cmdExcuse
	case "live":
		run = cmdLive
	case "history":
		run = cmdHistory
	default:
		printHelp()
		return
	}
	if err := cmdlog.Run(cmd, func() error { return run(os.Args[2:]) }); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: whereisxur <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create a config file at ./whereisxur.yaml")
	fmt.Println("  schedule    Show the window, boundaries and countdowns")
	fmt.Println("  watch       Print countdowns every tick and record crossings")
	fmt.Println("  serve       Serve the schedule JSON API")
	fmt.Println("  status      Resolve presence, optionally from a vendor observation")
	fmt.Println("  excuse      Show this cycle's excuse")
	fmt.Println("  live        Show whether the stream is live")
	fmt.Println("  history     List recorded arrivals, departures and resets")
}

// setup loads config, applies the log level and builds the calculator.
func setup(path string) (config.Config, *schedule.Calculator, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return cfg, nil, err
	}
	logging.SetLevel(cfg.Log.Level)
	sc, err := cfg.ScheduleConfig()
	if err != nil {
		return cfg, nil, err
	}
	calc, err := schedule.New(sc)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, calc, nil
}

func liveSchedule(cfg config.Config) (*live.Schedule, error) {
	windows, err := cfg.LiveWindows()
	if err != nil {
		return nil, err
	}
	return live.New(cfg.Live.Location, windows)
}

func cmdInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", defaultConfigPath, "path to write config")
	_ = fs.Parse(args)
	if err := config.Save(*path, config.Default()); err != nil {
		return err
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
	return nil
}

func cmdSchedule(args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	atFlag := fs.String("at", "", "evaluate at this RFC3339 instant instead of now")
	inFlag := fs.String("in", "", "evaluate this far from now, e.g. 3d4h")
	_ = fs.Parse(args)
	_, calc, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	at := time.Now()
	switch {
	case *atFlag != "" && *inFlag != "":
		return errors.New("use either --at or --in")
	case *atFlag != "":
		if at, err = time.Parse(time.RFC3339, *atFlag); err != nil {
			return fmt.Errorf("--at: %w", err)
		}
	case *inFlag != "":
		d, err := str2duration.ParseDuration(*inFlag)
		if err != nil {
			return fmt.Errorf("--in: %w", err)
		}
		at = at.Add(d)
	}
	s := calc.Evaluate(at)
	if *atFlag == "" && *inFlag == "" {
		metrics.ObserveSchedule(s)
	}
	render.Schedule(os.Stdout, s)
	fmt.Println()
	render.Countdown(os.Stdout, calc.CountdownFor(s))
	return nil
}

func cmdWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	interval := fs.String("interval", "", "tick interval (default from config)")
	persist := fs.Bool("persist", true, "record crossings in the database")
	_ = fs.Parse(args)
	cfg, calc, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	if *interval == "" {
		*interval = cfg.Watch.Interval
	}
	every, err := config.ParseDuration(*interval, time.Second)
	if err != nil {
		return fmt.Errorf("--interval: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var w *jobs.Watcher
	if *persist {
		db, err := sqlitestore.Open(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		w = jobs.NewWatcher(calc, db)
	} else {
		w = jobs.NewWatcher(calc, nil)
	}
	w.OnTick(func(s schedule.Schedule, crossed []jobs.Transition) {
		for _, c := range crossed {
			render.Transition(os.Stdout, c.Kind, c.At, c.Cycle)
		}
		c := calc.CountdownFor(s)
		fmt.Printf("%s: %s | %s: %s | Reset: %s\n", c.ArriveLabel, c.ArriveValue, c.LeaveLabel, c.LeaveValue, c.ResetValue)
	})
	if srv := metrics.StartServer(cfg.Metrics.Addr); srv != nil {
		defer srv.Close()
	}
	if err := w.RunLoop(ctx, every); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	addr := fs.String("addr", "", "listen address (default from config)")
	_ = fs.Parse(args)
	cfg, calc, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	ttl, err := config.ParseDuration(cfg.Server.CacheTTL, time.Second)
	if err != nil {
		return err
	}
	every, err := config.ParseDuration(cfg.Watch.Interval, time.Second)
	if err != nil {
		return err
	}
	ls, err := liveSchedule(cfg)
	if err != nil {
		return err
	}
	db, err := sqlitestore.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	api := server.New(server.Deps{
		Calc:    calc,
		Live:    ls,
		Excuses: excuse.NewPicker(db, cfg.Excuses),
		History: db,
	}, server.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RPS:            cfg.Server.RPS,
		Burst:          cfg.Server.Burst,
		CacheTTL:       ttl,
	})
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: api.Router(), ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("serve_start", map[string]any{"addr": cfg.Server.Addr})
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := jobs.NewWatcher(calc, db).RunLoop(ctx, every)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logging.Info("serve_stop", nil)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func cmdStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	vendor := fs.String("vendor", "", "vendor observation: present or absent")
	_ = fs.Parse(args)
	_, calc, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	obs, err := status.ParseObservation(*vendor)
	if err != nil {
		return err
	}
	render.Status(os.Stdout, status.Resolve(calc.Config(), calc.Evaluate(time.Now()), obs))
	return nil
}

func cmdExcuse(args []string) error {
	fs := flag.NewFlagSet("excuse", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	_ = fs.Parse(args)
	cfg, calc, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	s := calc.Evaluate(time.Now())
	if s.IsActive {
		fmt.Println("Xûr is here. No excuses this week.")
		return nil
	}
	db, err := sqlitestore.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	e, err := excuse.NewPicker(db, cfg.Excuses).Current(context.Background(), s.CycleKey())
	if err != nil {
		return err
	}
	fmt.Println(e)
	return nil
}

func cmdLive(args []string) error {
	fs := flag.NewFlagSet("live", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	_ = fs.Parse(args)
	cfg, _, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	ls, err := liveSchedule(cfg)
	if err != nil {
		return err
	}
	now := time.Now()
	if ls.IsLive(now) {
		fmt.Println("Live now.")
		return nil
	}
	if next, ok := ls.NextStart(now); ok {
		fmt.Printf("Offline. Next stream %s (%s).\n", next.In(ls.Location()).Format("Mon Jan 2 15:04 MST"), schedule.FormatDuration(next.Sub(now)))
		return nil
	}
	fmt.Println("Offline. No stream scheduled.")
	return nil
}

func cmdHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	since := fs.String("since", "7d", "how far back to look, e.g. 7d or 36h")
	kind := fs.String("kind", "", "only arrival, departure or reset")
	_ = fs.Parse(args)
	cfg, _, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	window, err := config.ParseDuration(*since, 7*24*time.Hour)
	if err != nil {
		return fmt.Errorf("--since: %w", err)
	}
	db, err := sqlitestore.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	rows, err := db.LoadTransitionsRange(ctx, now.Add(-window), now.Add(time.Second), *kind)
	if err != nil {
		return err
	}
	for _, t := range rows {
		render.Transition(os.Stdout, t.Kind, t.TS, t.Cycle)
	}
	if len(rows) > 0 {
		return nil
	}
	last, err := db.LastTransition(ctx)
	if errors.Is(err, sqlitestore.ErrNotFound) {
		fmt.Println("No crossings recorded yet. Run watch or serve to record them.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("No crossings in the last %s. Most recent:\n", *since)
	render.Transition(os.Stdout, last.Kind, last.TS, last.Cycle)
	return nil
}
