package main

import (
	"context"
	"dashboard-strategy/internal/adapters/input/http"
	"dashboard-strategy/internal/adapters/output/homeassistant"
	"dashboard-strategy/internal/adapters/output/hue"
	"dashboard-strategy/internal/adapters/output/persistence"
	"dashboard-strategy/internal/config"
	"dashboard-strategy/internal/domain/service"
	"dashboard-strategy/internal/logger"
	"dashboard-strategy/internal/ports"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Path to the YAML configuration file")
	exportPath := flag.String("export", "", "Write the fetched registries to this JSON file and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	l, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, "dashboard-strategy")
	if err != nil {
		log.Fatal(err)
	}
	defer l.Sync()

	source, err := newSource(cfg, l)
	if err != nil {
		l.Fatal("invalid snapshot source", zap.Error(err))
	}

	if *exportPath != "" {
		if err := export(source, *exportPath, cfg); err != nil {
			l.Fatal("export failed", zap.Error(err))
		}
		l.Info("registries exported", zap.String("path", *exportPath))
		return
	}

	optionsRepo := persistence.NewYAMLOptionsRepository(cfg.Options.Path)
	dashboardService := service.NewDashboardService(source, optionsRepo, l)

	// A failed first load is retried on the first request.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetFetchTimeout())
	if err := dashboardService.Refresh(ctx); err != nil {
		l.Warn("initial registry load failed", zap.Error(err))
	}
	cancel()

	httpServer := http.NewServer(dashboardService, l)
	l.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr), zap.String("source", cfg.Source))
	if err := httpServer.ListenAndServe(cfg.Server.Addr, cfg.GetReadTimeout(), cfg.GetWriteTimeout()); err != nil {
		l.Fatal("HTTP server stopped", zap.Error(err))
	}
}

func newSource(cfg *config.Config, l *zap.Logger) (ports.SnapshotSource, error) {
	switch cfg.Source {
	case config.SourceFile:
		return persistence.NewJSONSnapshotRepository(cfg.Snapshot.Path), nil
	case config.SourceHomeAssistant:
		haClient := homeassistant.NewClient(l)
		haClient.Timeout = cfg.GetFetchTimeout()
		haClient.Configure(cfg.HomeAssistant.URL, cfg.HomeAssistant.Token)
		return haClient, nil
	case config.SourceHue:
		return hue.NewSource(cfg.Hue.Host, cfg.Hue.User, l), nil
	}
	return nil, fmt.Errorf("unknown source %q", cfg.Source)
}

func export(source ports.SnapshotSource, path string, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetFetchTimeout())
	defer cancel()
	snap, err := source.Fetch(ctx)
	if err != nil {
		return err
	}
	return persistence.NewJSONSnapshotRepository(path).Save(ctx, snap)
}
