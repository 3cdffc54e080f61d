package main

import (
    "context"
    "errors"
    "fmt"
    "log/slog"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/spf13/cobra"

    "priceboard/internal/app"
    "priceboard/internal/config"
)

func main() {
    if err := newRootCmd().Execute(); err != nil {
        os.Exit(1)
    }
}

func newRootCmd() *cobra.Command {
    var cfgPath, port string
    cmd := &cobra.Command{
        Use:           "priceboard",
        Short:         "Serve gold, coin and currency quotes as JSON",
        SilenceUsage:  true,
        RunE: func(cmd *cobra.Command, args []string) error {
            cfg, err := config.Load(cfgPath)
            if err != nil { return fmt.Errorf("config: %w", err) }
            if port != "" { cfg.Server.Port = port }

            logger, err := app.NewLogger(os.Stderr, cfg)
            if err != nil { return err }

            ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
            defer stop()
            return serve(ctx, cfg, logger)
        },
    }
    cmd.Flags().StringVar(&cfgPath, "config", "", "path to config.json (default: $CONFIG_FILE or ./config.json)")
    cmd.Flags().StringVar(&port, "port", "", "listen port, overrides config and $PORT")
    return cmd
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
    gate, err := app.NewGate(cfg, logger)
    if err != nil { return err }

    srv := &http.Server{
        Addr:              ":" + cfg.Server.Port,
        Handler:           newHandler(gate, logger),
        ReadHeaderTimeout: 5 * time.Second,
        ReadTimeout:       15 * time.Second,
        // A cold build fetches every catalog entry in sequence.
        WriteTimeout: 2 * time.Minute,
        IdleTimeout:  60 * time.Second,
    }

    errc := make(chan error, 1)
    go func() {
        logger.Info("server listening", "addr", srv.Addr, "window", gate.Window)
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            errc <- err
        }
        close(errc)
    }()

    select {
    case err := <-errc:
        return fmt.Errorf("server: %w", err)
    case <-ctx.Done():
    }

    logger.Info("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    return srv.Shutdown(shutdownCtx)
}
