package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"shopd/internal/orders"
)

// Users resolves a bearer credential to an identity via the user directory.
// Credential validation itself happens entirely on the directory's side;
// the token stays opaque here.
type Users struct {
	BaseURL string
	HTTP    *http.Client
}

type userResponse struct {
	ID   json.Number `json:"id"`
	Role string      `json:"role"`
}

func (c *Users) Resolve(ctx context.Context, credential string) (orders.Actor, error) {
	if credential == "" {
		return orders.Actor{}, orders.ErrInvalidCredential
	}
	var ur userResponse
	code, err := getJSON(ctx, c.HTTP, c.BaseURL+"/api/users/me", bearer(credential), &ur)
	if err != nil {
		return orders.Actor{}, fmt.Errorf("user directory: %v: %w", err, orders.ErrUpstream)
	}
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return orders.Actor{}, orders.ErrInvalidCredential
	case code != http.StatusOK:
		return orders.Actor{}, fmt.Errorf("user directory returned %d: %w", code, orders.ErrUpstream)
	}
	role := orders.RoleCustomer
	if strings.EqualFold(ur.Role, "ADMIN") || strings.EqualFold(ur.Role, "ROLE_ADMIN") {
		role = orders.RoleAdmin
	}
	return orders.Actor{UserID: ur.ID.String(), Role: role}, nil
}
