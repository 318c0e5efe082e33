package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/atariryuma/lever-master/internal/cache"
	"github.com/atariryuma/lever-master/internal/database"
	"github.com/atariryuma/lever-master/internal/server"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(getenv("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *database.Store
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		s, err := database.Open(ctx, dsn)
		if err != nil {
			log.WithError(err).Warn("postgres unavailable, persistence disabled")
		} else {
			store = s
			defer store.Close()
			if err := store.EnsureSchema(ctx); err != nil {
				log.WithError(err).Warn("schema setup failed, persistence disabled")
				store = nil
			}
		}
	}

	var registry *cache.Registry
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		r, err := cache.New(ctx, addr)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, live registry disabled")
		} else {
			registry = r
			defer registry.Close()
		}
	}

	srv := server.New(log, store, registry)
	addr := getenv("ADDR", ":8080")
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown incomplete")
	}
}
