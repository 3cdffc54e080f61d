package main

import (
    "context"
    "encoding/json"
    "fmt"
    "io"
    "os"
    "time"

    "github.com/spf13/cobra"

    "priceboard/internal/aggregate"
    "priceboard/internal/app"
    "priceboard/internal/config"
)

type options struct {
    configPath string
    categories []string
    timeout    time.Duration
    status     bool
}

func main() {
    if err := newRootCmd().Execute(); err != nil {
        os.Exit(1)
    }
}

func newRootCmd() *cobra.Command {
    var opts options
    cmd := &cobra.Command{
        Use:          "fetch",
        Short:        "Build one quote snapshot and print it as JSON",
        SilenceUsage: true,
        RunE: func(cmd *cobra.Command, args []string) error {
            return run(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
        },
    }
    cmd.Flags().StringVar(&opts.configPath, "config", "", "path to config.json (default: $CONFIG_FILE or ./config.json)")
    cmd.Flags().StringArrayVar(&opts.categories, "category", nil, "only fetch this category (repeatable)")
    cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "per-request timeout, overrides fetch.timeout_sec")
    cmd.Flags().BoolVar(&opts.status, "status", false, "also print which quotes were unavailable")
    return cmd
}

type statusOutput struct {
    ID          string              `json:"id"`
    CapturedAt  time.Time           `json:"captured_at"`
    Jalali      string              `json:"last_update_jalali"`
    Prices      *aggregate.Snapshot `json:"prices"`
    Unavailable []aggregate.Missing `json:"unavailable"`
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
    cfg, err := config.Load(opts.configPath)
    if err != nil { return fmt.Errorf("config: %w", err) }
    if opts.timeout > 0 {
        cfg.Fetch.TimeoutSec = max(1, int(opts.timeout/time.Second))
    }

    logger, err := app.NewLogger(stderr, cfg)
    if err != nil { return err }

    c := cfg.EffectiveCatalog()
    if len(opts.categories) > 0 {
        c = c.Filter(opts.categories...)
        if len(c) == 0 {
            return fmt.Errorf("no catalog entries for %v (known: %v)", opts.categories, cfg.EffectiveCatalog().Categories())
        }
    }

    b, err := app.NewBuilder(cfg, c, app.NewExtractor(cfg, logger), logger)
    if err != nil { return err }
    snap := b.Build(ctx)

    enc := json.NewEncoder(stdout)
    enc.SetEscapeHTML(false)
    enc.SetIndent("", "  ")
    if !opts.status {
        return enc.Encode(snap)
    }
    missing := snap.Unavailable()
    if missing == nil { missing = []aggregate.Missing{} }
    return enc.Encode(statusOutput{
        ID:          snap.ID,
        CapturedAt:  snap.CapturedAt,
        Jalali:      snap.Jalali,
        Prices:      snap,
        Unavailable: missing,
    })
}
