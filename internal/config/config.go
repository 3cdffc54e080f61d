package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "io/fs"
    "os"
    "strconv"
    "strings"

    "github.com/joho/godotenv"

    "priceboard/internal/aggregate"
    "priceboard/internal/catalog"
    "priceboard/internal/logging"
)

// ErrInvalid wraps every validation failure returned by Load.
var ErrInvalid = errors.New("invalid config")

type Server struct {
    Port string `json:"port"`
}

type Fetch struct {
    TimeoutSec           int    `json:"timeout_sec"`
    UserAgent            string `json:"user_agent"`
    MaxConcurrency       int    `json:"max_concurrency"`
    MaxRequestsPerMinute int    `json:"max_requests_per_minute"`
    Burst                int    `json:"burst"`
    MinRequestIntervalMs int    `json:"min_request_interval_ms"`
}

type Cache struct {
    WindowSec int `json:"window_sec"`
}

type Quotes struct {
    NormalizeRatio int64  `json:"normalize_ratio"`
    Timezone       string `json:"timezone"`
}

type Log struct {
    Level  string `json:"level"`
    Format string `json:"format"`
}

type Config struct {
    Server Server `json:"server"`
    Fetch  Fetch  `json:"fetch"`
    Cache  Cache  `json:"cache"`
    Quotes Quotes `json:"quotes"`
    Log    Log    `json:"log"`
    // Catalog replaces the built-in table when non-empty.
    Catalog catalog.Catalog `json:"catalog,omitempty"`
}

func Default() Config {
    return Config{
        Server: Server{Port: "5000"},
        Fetch: Fetch{
            TimeoutSec:     10,
            MaxConcurrency: 1,
            Burst:          1,
        },
        Cache:  Cache{WindowSec: 30},
        Quotes: Quotes{NormalizeRatio: aggregate.DefaultRatio, Timezone: aggregate.DefaultTimezone},
        Log:    Log{Level: "info", Format: "text"},
    }
}

// EffectiveCatalog returns the configured catalog or the built-in one.
func (c Config) EffectiveCatalog() catalog.Catalog {
    if len(c.Catalog) > 0 { return c.Catalog }
    return catalog.Default()
}

// Load reads JSON config from path, then .env, then the process environment.
// An empty path falls back to CONFIG_FILE and then ./config.json if it exists.
// The result is validated.
func Load(path string) (Config, error) {
    cfg := Default()

    if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
        return cfg, fmt.Errorf("load .env: %w", err)
    }

    if path == "" { path = os.Getenv("CONFIG_FILE") }
    if path == "" {
        if _, err := os.Stat("config.json"); err == nil {
            path = "config.json"
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err := json.Unmarshal(b, &cfg); err != nil {
            return cfg, fmt.Errorf("parse config %s: %w", path, err)
        }
    }

    if err := applyEnv(&cfg); err != nil {
        return cfg, err
    }
    if err := cfg.Validate(); err != nil {
        return cfg, err
    }
    return cfg, nil
}

func applyEnv(cfg *Config) error {
    var errs []error
    setInt := func(key string, dst *int) {
        v := os.Getenv(key)
        if v == "" { return }
        x, err := strconv.Atoi(strings.TrimSpace(v))
        if err != nil {
            errs = append(errs, fmt.Errorf("%s: %w", key, err))
            return
        }
        *dst = x
    }

    if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
    if v := os.Getenv("USER_AGENT"); v != "" { cfg.Fetch.UserAgent = v }
    if v := os.Getenv("TIMEZONE"); v != "" { cfg.Quotes.Timezone = v }
    if v := os.Getenv("LOG_LEVEL"); v != "" { cfg.Log.Level = v }
    if v := os.Getenv("LOG_FORMAT"); v != "" { cfg.Log.Format = v }

    setInt("FETCH_TIMEOUT_SEC", &cfg.Fetch.TimeoutSec)
    setInt("FETCH_MAX_CONCURRENCY", &cfg.Fetch.MaxConcurrency)
    setInt("FETCH_MAX_RPM", &cfg.Fetch.MaxRequestsPerMinute)
    setInt("FETCH_BURST", &cfg.Fetch.Burst)
    setInt("FETCH_MIN_INTERVAL_MS", &cfg.Fetch.MinRequestIntervalMs)
    setInt("CACHE_WINDOW_SEC", &cfg.Cache.WindowSec)

    if v := os.Getenv("NORMALIZE_RATIO"); v != "" {
        x, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
        if err != nil {
            errs = append(errs, fmt.Errorf("NORMALIZE_RATIO: %w", err))
        } else {
            cfg.Quotes.NormalizeRatio = x
        }
    }

    if len(errs) > 0 {
        return fmt.Errorf("%w: env: %w", ErrInvalid, errors.Join(errs...))
    }
    return nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
    var errs []error
    if c.Server.Port == "" {
        errs = append(errs, errors.New("server.port is empty"))
    } else if p, err := strconv.Atoi(c.Server.Port); err != nil || p <= 0 || p > 65535 {
        errs = append(errs, fmt.Errorf("server.port %q is not a valid port", c.Server.Port))
    }
    if c.Fetch.TimeoutSec <= 0 { errs = append(errs, errors.New("fetch.timeout_sec must be > 0")) }
    if c.Fetch.MaxConcurrency <= 0 { errs = append(errs, errors.New("fetch.max_concurrency must be > 0")) }
    if c.Fetch.MaxRequestsPerMinute < 0 { errs = append(errs, errors.New("fetch.max_requests_per_minute must be >= 0")) }
    if c.Fetch.MaxRequestsPerMinute > 0 && c.Fetch.Burst <= 0 {
        errs = append(errs, errors.New("fetch.burst must be > 0 when rate limiting"))
    }
    if c.Fetch.MinRequestIntervalMs < 0 { errs = append(errs, errors.New("fetch.min_request_interval_ms must be >= 0")) }
    if c.Cache.WindowSec < 0 { errs = append(errs, errors.New("cache.window_sec must be >= 0")) }
    if c.Quotes.NormalizeRatio <= 0 { errs = append(errs, errors.New("quotes.normalize_ratio must be > 0")) }
    if _, err := aggregate.LoadLocation(c.Quotes.Timezone); err != nil {
        errs = append(errs, fmt.Errorf("quotes.timezone: %w", err))
    }
    if _, err := logging.ParseLevel(c.Log.Level); err != nil {
        errs = append(errs, fmt.Errorf("log.level: %w", err))
    }
    switch strings.ToLower(c.Log.Format) {
    case "text", "json":
    default:
        errs = append(errs, fmt.Errorf("log.format %q: want text or json", c.Log.Format))
    }
    if len(c.Catalog) > 0 {
        if err := c.Catalog.Validate(); err != nil { errs = append(errs, err) }
    }
    if len(errs) > 0 {
        return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
    }
    return nil
}
