package main

import (
    "encoding/json"
    "log/slog"
    "net/http"
    "time"

    "priceboard/internal/aggregate"
    "priceboard/internal/cache"
    "priceboard/internal/logging"
)

type api struct {
    gate   *cache.Gate
    now    func() time.Time
    logger *slog.Logger
}

func newHandler(gate *cache.Gate, logger *slog.Logger) http.Handler {
    return newAPI(gate, time.Now, logger).routes()
}

func newAPI(gate *cache.Gate, now func() time.Time, logger *slog.Logger) *api {
    return &api{gate: gate, now: now, logger: logging.Default(logger).With("component", "http")}
}

func (a *api) routes() http.Handler {
    mux := http.NewServeMux()
    mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "text/plain; charset=utf-8")
        w.WriteHeader(http.StatusOK)
        _, _ = w.Write([]byte("ok"))
    })
    mux.HandleFunc("/api/prices", getOnly(a.handlePrices))
    mux.HandleFunc("/api/status", getOnly(a.handleStatus))

    return withJSONHeaders(withGzip(recoverPanic(a.logger, mux)))
}

// handlePrices serves the cached snapshot, rebuilding it first when stale.
func (a *api) handlePrices(w http.ResponseWriter, r *http.Request) {
    snap := a.gate.Current(r.Context())
    w.Header().Set("X-Snapshot-Id", snap.ID)
    writeJSON(w, http.StatusOK, snap)
}

type statusResponse struct {
    ID               string              `json:"id"`
    CapturedAt       time.Time           `json:"captured_at"`
    LastUpdate       string              `json:"last_update"`
    LastUpdateJalali string              `json:"last_update_jalali"`
    AgeSec           int64               `json:"age_sec"`
    WindowSec        int64               `json:"window_sec"`
    Builds           int64               `json:"builds"`
    Hits             int64               `json:"hits"`
    Unavailable      []aggregate.Missing `json:"unavailable"`
}

// handleStatus describes the cached snapshot without building one.
func (a *api) handleStatus(w http.ResponseWriter, r *http.Request) {
    snap, builtAt := a.gate.Peek()
    if snap == nil {
        writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no snapshot built yet"})
        return
    }
    stats := a.gate.Stats()
    missing := snap.Unavailable()
    if missing == nil { missing = []aggregate.Missing{} }
    writeJSON(w, http.StatusOK, statusResponse{
        ID:               snap.ID,
        CapturedAt:       snap.CapturedAt,
        LastUpdate:       snap.LastUpdate,
        LastUpdateJalali: snap.Jalali,
        AgeSec:           int64(a.now().Sub(builtAt) / time.Second),
        WindowSec:        int64(a.gate.Window / time.Second),
        Builds:           stats.Builds,
        Hits:             stats.Hits,
        Unavailable:      missing,
    })
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.WriteHeader(status)
    enc := json.NewEncoder(w)
    enc.SetEscapeHTML(false)
    _ = enc.Encode(v)
}
