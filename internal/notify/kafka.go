// Package notify publishes order notifications to the delivery pipeline.
// Publishing is asynchronous and best-effort: a broker outage never fails
// or rolls back the order operation that triggered it.
package notify

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "shopd/internal/kafka"
	"shopd/internal/orders"
)

type Kafka struct {
	Producer *kafkax.Producer
	Service  string
}

func (n *Kafka) Notify(o *orders.Order, event string) {
	items := make([]orders.NotificationItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orders.NotificationItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.StringFixed(2),
		})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     event,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      n.Service,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderNotificationPayload{
			OrderID:     o.ID,
			UserID:      o.UserID,
			Status:      string(o.Status),
			TotalAmount: o.TotalAmount.StringFixed(2),
			Items:       items,
		}),
	}
	n.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(event)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
