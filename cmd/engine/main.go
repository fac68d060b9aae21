package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lintang-b-s/graphtile/pkg/config"
	"github.com/lintang-b-s/graphtile/pkg/graphreader"
	"github.com/lintang-b-s/graphtile/pkg/kv"
	"github.com/lintang-b-s/graphtile/pkg/server/rest"
	"github.com/lintang-b-s/graphtile/pkg/storage"
	"github.com/lintang-b-s/graphtile/pkg/storage/disk"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "", "yaml config file")
	listenAddr = flag.String("listenaddr", "", "server listen address, overrides the config")
	warm       = flag.Bool("warm", false, "load every stored tile into the cache before serving")
)

func main() {
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	var (
		store storage.TileStore
		index rest.EdgeIndex
	)
	switch cfg.Store.Kind {
	case config.StoreDisk:
		store, err = disk.NewTileStore(cfg.TileDir, cfg.Compressed, logger)
	default:
		var kvDB *kv.KVDB
		kvDB, err = kv.Open(cfg.Store.Kind, cfg.Store.Path, logger)
		store, index = kvDB, kvDB
	}
	if err != nil {
		logger.Fatal("open tile store", zap.String("kind", cfg.Store.Kind), zap.Error(err))
	}

	reader, err := graphreader.NewGraphReader(store, graphreader.CacheConfig{
		MaxCost:     cfg.Cache.MaxCost,
		NumCounters: cfg.Cache.NumCounters,
	}, cfg.Workers, logger)
	if err != nil {
		logger.Fatal("graph reader", zap.Error(err))
	}
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *warm {
		ids, err := reader.TileIDs(ctx)
		if err != nil {
			logger.Fatal("list tiles", zap.Error(err))
		}
		if err := reader.WarmCache(ctx, ids); err != nil {
			logger.Warn("warm cache", zap.Error(err))
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Mount("/debug", middleware.Profiler())
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	rest.TilesRouter(r, reader, index, m, logger)

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server started", zap.String("addr", cfg.ListenAddr), zap.String("store", cfg.Store.Kind))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("listen", zap.Error(err))
	}
}
