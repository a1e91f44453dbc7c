package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"LittleLemon/internal/config"
	"LittleLemon/internal/kv"
	"LittleLemon/internal/menu"
	"LittleLemon/internal/order"
	"LittleLemon/internal/session"
	"LittleLemon/internal/storefront"
	"LittleLemon/pkg/kit"
)

const service = "menu"

func main() {
	configFile := flag.String("config", os.Getenv("CONFIG_FILE"), "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	log.Info("config loaded", zap.Stringer("config", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog, err := menu.LoadFile(cfg.MenuPage, menu.RandomRating)
	if err != nil {
		log.Fatal("load menu page failed", zap.Error(err), zap.String("path", cfg.MenuPage))
	}
	log.Info("menu loaded", zap.Int("items", catalog.Len()))

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Fatal("open state store failed", zap.Error(err), zap.String("driver", cfg.Store.Driver))
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sessions := session.NewRegistry(session.Deps{
		Store:    store,
		Catalog:  catalog,
		Metrics:  order.NewMetrics(reg),
		Log:      log,
		FeedSize: cfg.Session.FeedSize,
	})
	if cfg.Session.IdleTTL > 0 {
		go sessions.RunEvictor(ctx, cfg.Session.IdleTTL/2, cfg.Session.IdleTTL)
	}

	h := storefront.NewHandler(&storefront.Server{Catalog: catalog, Log: log}, storefront.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   cfg.MetricsToken,
		Store:          store,
		Sessions:       sessions,
		Tokens:         session.NewTokenMaker(cfg.Session.Secret, cfg.Session.TTL),
		RatePerMin:     cfg.RatePerMin,
	})

	if err := kit.RunHTTPServer(ctx, ":"+cfg.Port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig) (kv.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverFile:
		s, err := kv.NewFileStore(cfg.Path)
		return s, func() {}, err
	case config.DriverPostgres:
		s, err := kv.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return kv.NewMemStore(), func() {}, nil
	}
}
