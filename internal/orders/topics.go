package orders

const TopicOrderNotifications = "order.notifications"

// Partition key = order_id, so all events of one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
