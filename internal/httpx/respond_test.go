package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"shopd/internal/orders"
	"shopd/internal/reviews"
)

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", orders.Validationf("bad input"), http.StatusBadRequest},
		{"not found", orders.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", orders.ErrNotFound), http.StatusNotFound},
		{"products missing", orders.ErrProductsNotFound, http.StatusNotFound},
		{"wrapped products missing", fmt.Errorf("create order: %w", orders.ErrProductsNotFound), http.StatusNotFound},
		{"insufficient stock", fmt.Errorf("product x: %w", orders.ErrInsufficientStock), http.StatusConflict},
		{"finalized", orders.ErrOrderFinalized, http.StatusConflict},
		{"conflict", orders.ErrConflict, http.StatusConflict},
		{"illegal transition", &orders.TransitionError{From: orders.StatusPending, To: orders.StatusDelivered}, http.StatusConflict},
		{"authz", &orders.AuthzError{Role: orders.RoleCustomer, From: orders.StatusConfirmed, To: orders.StatusCancelled}, http.StatusConflict},
		{"already reviewed", reviews.ErrAlreadyReviewed, http.StatusConflict},
		{"not fulfilled", reviews.ErrOrderNotFulfilled, http.StatusConflict},
		{"product missing", reviews.ErrProductNotFound, http.StatusNotFound},
		{"bad credential", orders.ErrInvalidCredential, http.StatusUnauthorized},
		{"admin only", orders.ErrAdminOnly, http.StatusForbidden},
		{"upstream", fmt.Errorf("catalog returned 503: %w", orders.ErrUpstream), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, tc.err)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, errors.New("pq: secret table missing"))
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.Contains(t, rec.Body.String(), "internal error")
}

func TestPagination(t *testing.T) {
	get := func(q string) *http.Request {
		return httptest.NewRequest(http.MethodGet, "/orders?"+q, nil)
	}

	page, size := pagination(get(""))
	assert.Equal(t, 0, page)
	assert.Equal(t, 20, size)

	page, size = pagination(get("page=3&size=50"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, size)

	_, size = pagination(get("size=5000"))
	assert.Equal(t, 100, size)

	page, size = pagination(get("page=-1&size=0"))
	assert.Equal(t, 0, page)
	assert.Equal(t, 20, size)

	page, size = pagination(get("page=x&size=y"))
	assert.Equal(t, 0, page)
	assert.Equal(t, 20, size)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, BearerToken(r))

	r.Header.Set("Authorization", "Bearer tok-123")
	assert.Equal(t, "tok-123", BearerToken(r))

	r.Header.Set("Authorization", "Basic dXNlcg==")
	assert.Empty(t, BearerToken(r))
}

func TestRequireServiceToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guarded := RequireServiceToken("s3cret")(next)

	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Service-Token", "wrong")
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set("X-Service-Token", "s3cret")
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// An empty configured token locks the endpoint instead of opening it.
	rec = httptest.NewRecorder()
	RequireServiceToken("")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
