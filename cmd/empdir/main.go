package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gur-shatz/empdir/internal/cli"
	"github.com/gur-shatz/empdir/internal/color"
	"github.com/gur-shatz/empdir/internal/log"
	"github.com/gur-shatz/empdir/internal/metrics"
	"github.com/gur-shatz/empdir/internal/server"
	"github.com/gur-shatz/empdir/internal/settings"
	"github.com/gur-shatz/empdir/internal/store"
	"github.com/gur-shatz/empdir/internal/views"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	color.Init()
	if err := run(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func run() error {
	flags, err := cli.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		fmt.Fprint(os.Stderr, cli.Usage())
		return err
	}
	log.Init(flags.Verbose)

	cfg, err := settings.Load(flags)
	if err != nil {
		return err
	}
	for _, w := range cfg.Warnings {
		log.Warn("%s", w)
	}
	log.Status("Version %s, color %s", cfg.Version, color.Hex(cfg.ColorHex, cfg.ColorName+" "+cfg.ColorHex))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, connectTimeout)
	db, err := store.Open(connectCtx, cfg.DB)
	connectCancel()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Verbose("Connected to %s database %q (pool max %d)", cfg.DB.Driver, cfg.DB.Name, cfg.DB.MaxOpenConns)

	viewOpts := []views.Option{views.WithLogger(log.Default())}
	if cfg.Templates != "" {
		viewOpts = append(viewOpts, views.WithDir(cfg.Templates))
	}
	renderer, err := views.New(cfg.Version, cfg.ColorHex, viewOpts...)
	if err != nil {
		return err
	}
	go func() {
		if err := renderer.Watch(ctx); err != nil {
			log.Error("template watcher: %v", err)
		}
	}()

	m := metrics.New(db.StatsCollector())
	m.SetTheme(cfg.Version, cfg.ColorName)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println()
		log.Status("Shutting down...")
		cancel()
	}()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.New(db, renderer, m, log.Default()).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Success("Listening on %s", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == nil {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	}
}
