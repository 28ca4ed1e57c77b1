package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bizdir/internal/cache"
	"bizdir/internal/config"
	"bizdir/internal/events"
	"bizdir/internal/http/handlers"
	"bizdir/internal/jobs"
	applog "bizdir/internal/log"
	"bizdir/internal/repos"
	"bizdir/internal/repos/memstore"
	"bizdir/internal/storage"
)

func main() {
	cfg := config.Load()

	if err := applog.Init(cfg.Log); err != nil {
		log.Printf("[warn] file logging disabled: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg.DB)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	if err := repos.SeedSuperAdmin(ctx, store, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal(err)
	}

	c, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()
	st, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal(err)
	}
	pub, err := events.New(cfg.Events)
	if err != nil {
		log.Fatal(err)
	}
	defer pub.Close()

	deps := handlers.NewDeps(store, cfg, c, st, pub)

	opts := handlers.AppOptions{
		TemplatesDir:    "./web/templates",
		ReloadTemplates: !cfg.IsProduction(),
		RateLimit:       60,
		LoginLimit:      5,
		AccessLog:       true,
	}
	if st.Name() == "local" {
		opts.MediaDir = cfg.Storage.MediaDir
	}
	app := handlers.NewApp(deps, opts)

	janitor := jobs.NewSessionJanitor(store, cfg.Auth.SessionIdleTTL, cfg.Auth.SessionSweepEvery)
	if err := janitor.Start(); err != nil {
		log.Fatal(err)
	}
	defer janitor.Stop()

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			slog.Error("shutdown", "err", err)
		}
	}()

	slog.Info("listening", "port", cfg.App.Port, "store", cfg.DB.Driver, "storage", st.Name())
	if err := app.Listen(":" + cfg.App.Port); err != nil {
		log.Fatal(err)
	}
}

func openStore(cfg config.DBConfig) (repos.Store, error) {
	if strings.EqualFold(cfg.Driver, "memory") {
		return memstore.NewSeeded(), nil
	}
	return repos.OpenDB(cfg.Driver, cfg.DSN)
}
