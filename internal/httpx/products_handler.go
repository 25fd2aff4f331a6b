package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"shopd/internal/catalog"
	"shopd/internal/inventory"
	"shopd/internal/orders"
	"shopd/internal/reviews"
)

// ProductsHandler serves the catalog read surface, the review endpoints and
// the trusted stock ledger routes.
type ProductsHandler struct {
	Catalog      *catalog.Repo
	Ledger       *inventory.Ledger
	Reviews      *reviews.Service
	Users        orders.UserDirectory
	ServiceToken string
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/batch", h.batch)
		r.Get("/{id}", h.getProduct)
		r.Post("/{id}/reviews", h.createReview)
		r.Get("/{id}/reviews", h.listReviews)
	})
	r.Route("/api/internal/stock", func(r chi.Router) {
		r.Use(RequireServiceToken(h.ServiceToken))
		r.Post("/reserve", h.reserve)
		r.Post("/release", h.release)
		r.Get("/available-count", h.availableCount)
	})
}

func (h *ProductsHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Catalog.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		Error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// batch resolves a comma separated id list in one round trip. Missing ids are
// simply absent from the result; the caller owns the shortfall policy.
func (h *ProductsHandler) batch(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "ids query parameter is required")
		return
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	prods, err := h.Catalog.GetByIDs(ctx, ids)
	if err != nil {
		Error(w, err)
		return
	}
	if prods == nil {
		prods = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, prods)
}

func (h *ProductsHandler) createReview(w http.ResponseWriter, r *http.Request) {
	cred := BearerToken(r)
	if cred == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	var req reviews.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ProductID = chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	actor, err := h.Users.Resolve(ctx, cred)
	if err != nil {
		Error(w, err)
		return
	}
	rv, err := h.Reviews.Create(ctx, actor, req)
	if err != nil {
		Error(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *ProductsHandler) listReviews(w http.ResponseWriter, r *http.Request) {
	page, size := pagination(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reviews.ListByProduct(ctx, chi.URLParam(r, "id"), page, size)
	if err != nil {
		Error(w, err)
		return
	}
	if list == nil {
		list = []reviews.Review{}
	}
	writeJSON(w, http.StatusOK, list)
}

type stockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *ProductsHandler) reserve(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Ledger.Reserve(ctx, req.ProductID, req.Quantity)
	if err != nil {
		Error(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusConflict, "insufficient stock")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reserved"})
}

func (h *ProductsHandler) release(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.Release(ctx, req.ProductID, req.Quantity); err != nil {
		Error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "released"})
}

func (h *ProductsHandler) availableCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	n, err := h.Ledger.CountAvailable(ctx)
	if err != nil {
		Error(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"available_products": n})
}
