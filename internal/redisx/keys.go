package redisx

import "time"

const (
	// Cache for the machine-to-machine status endpoint:
	// order_status:{order_id} -> status token
	KeyOrderStatus = "order_status:%s"

	// Dedup for notification processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
