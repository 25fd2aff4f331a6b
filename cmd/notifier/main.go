package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"

	"shopd/internal/config"
	kafkax "shopd/internal/kafka"
	"shopd/internal/logging"
	"shopd/internal/orders"
	"shopd/internal/redisx"
)

const consumerGroup = "notifier"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.Init("notifier", cfg.LogPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	consumer := kafkax.NewConsumer(cfg.KafkaBrokers, consumerGroup, orders.TopicOrderNotifications, 4, log)

	handler := func(ctx context.Context, m kafkago.Message) error {
		var ev orders.Envelope
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			// Poison message: log and commit, redelivery cannot fix it.
			log.Error("undecodable notification", "offset", m.Offset, "err", err)
			return nil
		}

		// At-least-once delivery from the broker, deduped by event id.
		key := fmt.Sprintf(redisx.KeyDedup, consumerGroup, ev.EventID)
		fresh, err := rdb.SetNX(ctx, key, 1, redisx.TTLDedup).Result()
		if err != nil {
			return err
		}
		if !fresh {
			log.Info("duplicate notification skipped", "event_id", ev.EventID)
			return nil
		}

		p, err := kafkax.UnwrapPayload[orders.OrderNotificationPayload](ev.Payload)
		if err != nil {
			log.Error("undecodable payload", "event_id", ev.EventID, "err", err)
			return nil
		}

		// Delivery channel stub: a real deployment would fan out to email or
		// push here.
		log.Info("notification delivered",
			"event_type", ev.EventType,
			"order_id", p.OrderID,
			"user_id", p.UserID,
			"status", p.Status,
			"total_amount", p.TotalAmount,
			"items", len(p.Items),
		)
		return nil
	}

	log.Info("notifier consuming", "topic", orders.TopicOrderNotifications, "group", consumerGroup)
	if err := consumer.Start(ctx, handler); err != nil {
		log.Error("consumer stopped", "err", err)
		os.Exit(1)
	}
	log.Info("bye")
}
