package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"shopd/internal/orders"
)

// Products talks to the products service: catalog reads with the caller's
// bearer credential, stock mutation over the trusted internal endpoints.
type Products struct {
	BaseURL      string
	ServiceToken string
	HTTP         *http.Client
}

func (c *Products) GetProducts(ctx context.Context, credential string, ids []string) ([]orders.ProductInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	u := c.BaseURL + "/api/products/batch?ids=" + url.QueryEscape(strings.Join(ids, ","))
	var out []orders.ProductInfo
	code, err := getJSON(ctx, c.HTTP, u, bearer(credential), &out)
	if err != nil {
		return nil, fmt.Errorf("catalog: %v: %w", err, orders.ErrUpstream)
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("catalog returned %d: %w", code, orders.ErrUpstream)
	}
	return out, nil
}

type stockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Reserve asks the ledger for an atomic conditional decrement. A 409 is the
// ledger saying "insufficient stock"; everything else non-2xx is transport.
func (c *Products) Reserve(ctx context.Context, productID string, qty int) error {
	code, body, err := postJSON(ctx, c.HTTP, c.BaseURL+"/api/internal/stock/reserve",
		map[string]string{headerServiceToken: c.ServiceToken},
		stockRequest{ProductID: productID, Quantity: qty})
	if err != nil {
		return fmt.Errorf("inventory reserve: %v: %w", err, orders.ErrUpstream)
	}
	switch {
	case code == http.StatusConflict:
		return fmt.Errorf("product %s: %w", productID, orders.ErrInsufficientStock)
	case code < 200 || code >= 300:
		return fmt.Errorf("inventory reserve returned %d (%s): %w", code, strings.TrimSpace(string(body)), orders.ErrUpstream)
	}
	return nil
}

func (c *Products) Release(ctx context.Context, productID string, qty int) error {
	code, body, err := postJSON(ctx, c.HTTP, c.BaseURL+"/api/internal/stock/release",
		map[string]string{headerServiceToken: c.ServiceToken},
		stockRequest{ProductID: productID, Quantity: qty})
	if err != nil {
		return fmt.Errorf("inventory release: %v: %w", err, orders.ErrUpstream)
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("inventory release returned %d (%s): %w", code, strings.TrimSpace(string(body)), orders.ErrUpstream)
	}
	return nil
}
