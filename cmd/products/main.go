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

	"shopd/internal/catalog"
	"shopd/internal/clients"
	"shopd/internal/config"
	"shopd/internal/httpx"
	"shopd/internal/inventory"
	"shopd/internal/logging"
	"shopd/internal/postgres"
	"shopd/internal/reviews"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.Init("products", cfg.LogPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrations {
		if err := postgres.Migrate(cfg.MigrationsDir, cfg.PostgresDSN); err != nil {
			log.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}

	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	httpClient := clients.NewHTTPClient(cfg.ClientTimeout)
	users := &clients.Users{BaseURL: cfg.UsersURL, HTTP: httpClient}
	orderStatus := &clients.OrderStatus{BaseURL: cfg.OrdersURL, ServiceToken: cfg.ServiceToken, HTTP: httpClient}

	cat := &catalog.Repo{DB: pool}
	reviewSvc := reviews.NewService(&reviews.Repo{DB: pool}, cat, orderStatus, log)

	r := httpx.NewRouter()
	h := &httpx.ProductsHandler{
		Catalog:      cat,
		Ledger:       &inventory.Ledger{DB: pool},
		Reviews:      reviewSvc,
		Users:        users,
		ServiceToken: cfg.ServiceToken,
	}
	h.Register(r)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Info("products service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	log.Info("bye")
}
