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

	"shopd/internal/clients"
	"shopd/internal/config"
	"shopd/internal/httpx"
	kafkax "shopd/internal/kafka"
	"shopd/internal/logging"
	"shopd/internal/notify"
	"shopd/internal/orders"
	"shopd/internal/postgres"
	"shopd/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.Init("orders", cfg.LogPath)

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

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// The flush loop outlives the signal context so messages published by
	// in-flight requests during shutdown still get delivered; Close stops it.
	producer := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderNotifications, 1024, log)
	producer.Start(context.Background())

	httpClient := clients.NewHTTPClient(cfg.ClientTimeout)
	users := &clients.Users{BaseURL: cfg.UsersURL, HTTP: httpClient}
	products := &clients.Products{BaseURL: cfg.ProductsURL, ServiceToken: cfg.ServiceToken, HTTP: httpClient}

	svc := orders.NewService(
		&orders.Repo{DB: pool},
		products,
		products,
		users,
		&notify.Kafka{Producer: producer, Service: cfg.ServiceName},
		log,
	)

	r := httpx.NewRouter()
	h := &httpx.OrdersHandler{Svc: svc, Redis: rdb, ServiceToken: cfg.ServiceToken, Log: log}
	h.Register(r)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Info("orders service listening", "addr", cfg.HTTPAddr)
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

	producer.Close()
	producer.WaitClosed()
	log.Info("bye")
}
