package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"shopd/internal/catalog"
	"shopd/internal/orders"
	"shopd/internal/reviews"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Error maps a domain error onto an HTTP status. Unknown errors become an
// opaque 500 so internals never leak to callers.
func Error(w http.ResponseWriter, err error) {
	var verr *orders.ValidationError
	var terr *orders.TransitionError
	var aerr *orders.AuthzError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, orders.ErrNotFound),
		errors.Is(err, orders.ErrProductsNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, reviews.ErrProductNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orders.ErrInsufficientStock),
		errors.Is(err, orders.ErrOrderFinalized),
		errors.Is(err, orders.ErrConflict),
		errors.Is(err, reviews.ErrAlreadyReviewed),
		errors.Is(err, reviews.ErrOrderNotFulfilled),
		errors.As(err, &terr),
		errors.As(err, &aerr):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, orders.ErrInvalidCredential):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, orders.ErrAdminOnly):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, orders.ErrUpstream):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// pagination reads page/size query params; size is capped to keep list
// endpoints bounded.
func pagination(r *http.Request) (page, size int) {
	page, size = 0, 20
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n >= 0 {
		page = n
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && n > 0 {
		size = n
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
