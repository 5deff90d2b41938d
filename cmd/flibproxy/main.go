package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"flibproxy/internal/catalog"
	"flibproxy/internal/config"
	"flibproxy/internal/delivery"
	"flibproxy/internal/logger"
)

func main() {
	path, required := config.Path()
	cfg, err := config.Load(path, required)
	if err != nil {
		logrus.Fatalf("[CONFIG ERROR] %v", err)
	}

	log, err := logger.New(cfg.Logging.Options())
	if err != nil {
		logrus.Fatalf("[LOGGER ERROR] %v", err)
	}

	client := catalog.New(cfg.Catalog.Options(), log)
	srv := &delivery.Server{Catalog: client}

	opts := delivery.RouterOptions{StaticDir: cfg.Server.StaticDir}
	if cfg.Metrics.Port == 0 {
		opts.MetricsPath = cfg.Metrics.Path
	}

	servers := []*http.Server{{
		Addr:              cfg.Server.Address(),
		Handler:           delivery.NewHandler(srv, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.Metrics.Port != 0 {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
		servers = append(servers, &http.Server{
			Addr:              cfg.Metrics.Address(cfg.Server.Host),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"catalog":   client.BaseURL(),
		"timeout":   cfg.Catalog.Timeout,
		"max_books": cfg.Catalog.MaxBooks,
	}).Info("catalog client ready")

	if err := serve(ctx, log, cfg.Server.ShutdownTimeout, servers...); err != nil {
		log.Fatalf("server failed: %v", err)
	}
	log.Info("flibproxy stopped")
}

// serve держит все слушатели до отмены ctx или первой ошибки, потом гасит их.
func serve(ctx context.Context, log *logrus.Logger, grace time.Duration, servers ...*http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, s := range servers {
		s := s
		g.Go(func() error {
			log.Infof("🌐 listening on http://%s", s.Addr)
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()

		var firstErr error
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	})

	return g.Wait()
}
