package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopd/internal/orders"
)

func TestUsersResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("maps directory roles", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/users/me", r.URL.Path)
			switch r.Header.Get("Authorization") {
			case "Bearer tok-admin":
				w.Write([]byte(`{"id": 7, "role": "ROLE_ADMIN"}`))
			case "Bearer tok-user":
				w.Write([]byte(`{"id": "42", "role": "CUSTOMER"}`))
			default:
				w.WriteHeader(http.StatusUnauthorized)
			}
		}))
		defer srv.Close()
		c := &Users{BaseURL: srv.URL, HTTP: srv.Client()}

		a, err := c.Resolve(ctx, "tok-admin")
		require.NoError(t, err)
		assert.Equal(t, "7", a.UserID)
		assert.Equal(t, orders.RoleAdmin, a.Role)

		a, err = c.Resolve(ctx, "tok-user")
		require.NoError(t, err)
		assert.Equal(t, "42", a.UserID)
		assert.Equal(t, orders.RoleCustomer, a.Role)

		_, err = c.Resolve(ctx, "tok-expired")
		assert.ErrorIs(t, err, orders.ErrInvalidCredential)
	})

	t.Run("empty credential short-circuits", func(t *testing.T) {
		c := &Users{BaseURL: "http://users.invalid", HTTP: NewHTTPClient(0)}
		_, err := c.Resolve(ctx, "")
		assert.ErrorIs(t, err, orders.ErrInvalidCredential)
	})

	t.Run("5xx is upstream, not unauthorized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()
		c := &Users{BaseURL: srv.URL, HTTP: srv.Client()}

		_, err := c.Resolve(ctx, "tok-user")
		assert.ErrorIs(t, err, orders.ErrUpstream)
	})
}

func TestProductsReserve(t *testing.T) {
	ctx := context.Background()

	t.Run("409 means insufficient stock", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/internal/stock/reserve", r.URL.Path)
			assert.Equal(t, "s3cret", r.Header.Get("X-Service-Token"))
			w.WriteHeader(http.StatusConflict)
		}))
		defer srv.Close()
		c := &Products{BaseURL: srv.URL, ServiceToken: "s3cret", HTTP: srv.Client()}

		err := c.Reserve(ctx, "p1", 2)
		assert.ErrorIs(t, err, orders.ErrInsufficientStock)
		assert.Contains(t, err.Error(), "p1")
	})

	t.Run("other failures are upstream", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()
		c := &Products{BaseURL: srv.URL, ServiceToken: "s3cret", HTTP: srv.Client()}

		err := c.Reserve(ctx, "p1", 2)
		assert.NotErrorIs(t, err, orders.ErrInsufficientStock)
		assert.ErrorIs(t, err, orders.ErrUpstream)
	})

	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()
		c := &Products{BaseURL: srv.URL, ServiceToken: "s3cret", HTTP: srv.Client()}

		assert.NoError(t, c.Reserve(ctx, "p1", 2))
		assert.NoError(t, c.Release(ctx, "p1", 2))
	})
}

func TestProductsGetProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/batch", r.URL.Path)
		assert.Equal(t, "p1,p2", r.URL.Query().Get("ids"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id":"p1","name":"Keyboard","price":"10.00","stock":5}]`))
	}))
	defer srv.Close()
	c := &Products{BaseURL: srv.URL, HTTP: srv.Client()}

	prods, err := c.GetProducts(context.Background(), "tok", []string{"p1", "p2"})
	require.NoError(t, err)
	require.Len(t, prods, 1)
	assert.Equal(t, "Keyboard", prods[0].Name)
	assert.Equal(t, "10.00", prods[0].UnitPrice.StringFixed(2))
}

func TestOrderStatusClient(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/internal/orders/o1/status":
			w.Write([]byte("DELIVERED\n"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	c := &OrderStatus{BaseURL: srv.URL, ServiceToken: "s3cret", HTTP: srv.Client()}

	st, err := c.GetOrderStatus(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "DELIVERED", st)

	_, err = c.GetOrderStatus(ctx, "missing")
	assert.ErrorIs(t, err, orders.ErrNotFound)
}
