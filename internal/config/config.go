package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	str2duration "github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"

	"whereisxur/internal/live"
	"whereisxur/internal/schedule"
)

// Config is the application's configuration model.
type Config struct {
	Schedule ScheduleConfig `yaml:"schedule"`
	Server   ServerConfig   `yaml:"server"`
	Watch    WatchConfig    `yaml:"watch"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Storage  StorageConfig  `yaml:"storage"`
	Live     LiveConfig     `yaml:"live"`
	Log      LogConfig      `yaml:"log"`
	// Excuses rotate once per cycle while the vendor is away
	Excuses []string `yaml:"excuses"`
}

// BoundaryConfig is a weekday name (or 0-6) and a UTC hour.
type BoundaryConfig struct {
	Day  string `yaml:"day"`
	Hour int    `yaml:"hour"`
}

type ScheduleConfig struct {
	Arrival   BoundaryConfig `yaml:"arrival"`
	Departure BoundaryConfig `yaml:"departure"`
	Reset     BoundaryConfig `yaml:"reset"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
	// Token bucket for the whole server
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
	// How long a rendered "now" response may be reused, e.g. "1s". Requests
	// falling in the same TTL-aligned slot get the body evaluated first in it.
	CacheTTL string `yaml:"cacheTTL"`
}

type WatchConfig struct {
	Interval string `yaml:"interval"`
}

type MetricsConfig struct {
	// Standalone metrics listener for `watch`; serve mounts /metrics itself
	Addr string `yaml:"addr"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

type LiveWindowConfig struct {
	Days  []string `yaml:"days"`
	Start int      `yaml:"start"`
	End   int      `yaml:"end"`
}

type LiveConfig struct {
	Location string             `yaml:"location"`
	Windows  []LiveWindowConfig `yaml:"windows"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultExcuses are shown one per cycle while the vendor is away.
var DefaultExcuses = []string{
	"Consulting the Nine about poor sales.",
	"Got lost in the Ahamkara bones again.",
	"Arguing with Drifter about who's more mysterious.",
	"Hiding from Guardians who dismantled Telesto... again.",
	"Trading Strange Coins for fashion advice from Rahool.",
	"Trying to decode why people keep calling him 'tentacle face.'",
	"Recharging his willpower after another weekend in the Tower.",
	"Negotiating with the Nine for a better dental plan.",
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Schedule: ScheduleConfig{
			Arrival:   BoundaryConfig{Day: "friday", Hour: 17},
			Departure: BoundaryConfig{Day: "tuesday", Hour: 17},
			Reset:     BoundaryConfig{Day: "tuesday", Hour: 17},
		},
		Server: ServerConfig{
			Addr:           ":8787",
			AllowedOrigins: []string{"*"},
			RPS:            5,
			Burst:          20,
			CacheTTL:       "1s",
		},
		Watch:   WatchConfig{Interval: "1s"},
		Storage: StorageConfig{DBPath: "./whereisxur.db"},
		Live: LiveConfig{
			Location: live.DefaultLocation,
			Windows: []LiveWindowConfig{
				{Days: []string{"monday", "tuesday", "wednesday", "thursday"}, Start: 7, End: 10},
				{Days: []string{"friday"}, Start: 7, End: 18},
			},
		},
		Log:     LogConfig{Level: "info"},
		Excuses: append([]string(nil), DefaultExcuses...),
	}
}

// ResolveEnv fills in config fields from environment variables if set.
func (c *Config) ResolveEnv() {
	if v := os.Getenv("WHEREISXUR_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("WHEREISXUR_DB"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv("WHEREISXUR_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("WHEREISXUR_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.Server.RPS = f
		}
	}
	if v := os.Getenv("WHEREISXUR_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Server.Burst = n
		}
	}
}

// Load reads a .env file if present, then YAML config from path over the defaults.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ResolveEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the env-resolved defaults.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		cfg.ResolveEnv()
		return cfg, cfg.Validate()
	}
	return cfg, err
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Validate checks every section that would otherwise fail later at startup.
func (c Config) Validate() error {
	if _, err := c.ScheduleConfig(); err != nil {
		return err
	}
	if _, err := c.LiveWindows(); err != nil {
		return err
	}
	if _, err := ParseDuration(c.Watch.Interval, time.Second); err != nil {
		return fmt.Errorf("watch.interval: %w", err)
	}
	if _, err := ParseDuration(c.Server.CacheTTL, time.Second); err != nil {
		return fmt.Errorf("server.cacheTTL: %w", err)
	}
	return nil
}

// ScheduleConfig converts the YAML boundaries and validates them.
func (c Config) ScheduleConfig() (schedule.Config, error) {
	var out schedule.Config
	var err error
	if out.Arrival, err = c.Schedule.Arrival.boundary("arrival"); err != nil {
		return out, err
	}
	if out.Departure, err = c.Schedule.Departure.boundary("departure"); err != nil {
		return out, err
	}
	if out.Reset, err = c.Schedule.Reset.boundary("reset"); err != nil {
		return out, err
	}
	return out, out.Validate()
}

func (b BoundaryConfig) boundary(name string) (schedule.Boundary, error) {
	d, err := schedule.ParseDay(b.Day)
	if err != nil {
		return schedule.Boundary{}, fmt.Errorf("schedule.%s: %w", name, err)
	}
	return schedule.Boundary{Day: d, Hour: b.Hour}, nil
}

// LiveWindows converts the YAML stream windows.
func (c Config) LiveWindows() ([]live.Window, error) {
	out := make([]live.Window, 0, len(c.Live.Windows))
	for i, w := range c.Live.Windows {
		days := make([]time.Weekday, 0, len(w.Days))
		for _, s := range w.Days {
			d, err := schedule.ParseDay(s)
			if err != nil {
				return nil, fmt.Errorf("live.windows[%d]: %w", i, err)
			}
			days = append(days, d)
		}
		out = append(out, live.Window{Days: days, StartHour: w.Start, EndHour: w.End})
	}
	return out, nil
}

// ParseDuration accepts Go durations plus day and week units ("1d12h"); empty gives def.
func ParseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}
