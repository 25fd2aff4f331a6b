package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"shopd/internal/orders"
)

// OrderStatus reads the bare status token of an order over the
// machine-to-machine endpoint of the orders service.
type OrderStatus struct {
	BaseURL      string
	ServiceToken string
	HTTP         *http.Client
}

func (c *OrderStatus) GetOrderStatus(ctx context.Context, orderID string) (string, error) {
	u := c.BaseURL + "/api/internal/orders/" + orderID + "/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set(headerServiceToken, c.ServiceToken)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("order status: %v: %w", err, orders.ErrUpstream)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", orders.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("order status returned %d: %w", resp.StatusCode, orders.ErrUpstream)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return "", fmt.Errorf("order status: %v: %w", err, orders.ErrUpstream)
	}
	return strings.TrimSpace(string(b)), nil
}
