package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"shopd/internal/orders"
	"shopd/internal/redisx"
)

// OrdersHandler exposes the order orchestrator over HTTP. Redis is optional;
// when nil the internal status endpoint simply skips caching.
type OrdersHandler struct {
	Svc          *orders.Service
	Redis        *redis.Client
	ServiceToken string
	Log          *slog.Logger
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.listMine)
		r.Get("/all", h.listAll)
		r.Get("/{id}", h.getByID)
		r.Patch("/{id}/status", h.updateStatus)
	})
	r.Route("/api/internal/orders", func(r chi.Router) {
		r.Use(RequireServiceToken(h.ServiceToken))
		r.Get("/{id}/status", h.internalStatus)
	})
}

type createOrderRequest struct {
	Items []orders.NewItem `json:"items"`
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	cred := BearerToken(r)
	if cred == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Svc.CreateOrder(ctx, cred, req.Items)
	if err != nil {
		Error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	cred := BearerToken(r)
	if cred == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	page, size := pagination(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Svc.ListOrdersForUser(ctx, cred, page, size)
	if err != nil {
		Error(w, err)
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	cred := BearerToken(r)
	if cred == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	page, size := pagination(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Svc.ListAllOrders(ctx, cred, page, size)
	if err != nil {
		Error(w, err)
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) getByID(w http.ResponseWriter, r *http.Request) {
	cred := BearerToken(r)
	if cred == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.GetOrderByID(ctx, cred, chi.URLParam(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	cred := BearerToken(r)
	if cred == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	to, err := orders.ParseStatus(req.Status)
	if err != nil {
		Error(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	o, err := h.Svc.UpdateOrderStatus(ctx, cred, chi.URLParam(r, "id"), to)
	if err != nil {
		Error(w, err)
		return
	}
	h.cacheStatus(ctx, o.ID, string(o.Status))
	writeJSON(w, http.StatusOK, o)
}

// internalStatus returns the bare status token as plain text, with a short
// redis cache in front of the database.
func (h *OrdersHandler) internalStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.Redis != nil {
		if cached, err := h.Redis.Get(ctx, fmt.Sprintf(redisx.KeyOrderStatus, id)).Result(); err == nil {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(cached))
			return
		}
	}

	st, err := h.Svc.GetOrderStatus(ctx, id)
	if err != nil {
		Error(w, err)
		return
	}
	h.cacheStatus(ctx, id, string(st))

	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(st))
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, id, status string) {
	if h.Redis == nil {
		return
	}
	if err := h.Redis.Set(ctx, fmt.Sprintf(redisx.KeyOrderStatus, id), status, redisx.TTLStatusCache).Err(); err != nil && h.Log != nil {
		h.Log.Warn("status cache write failed", "order_id", id, "err", err)
	}
}
