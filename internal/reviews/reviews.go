// Package reviews gates product reviews behind proof of purchase: the
// referenced order must have actually been delivered to the reviewer.
package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shopd/internal/orders"
)

var (
	ErrAlreadyReviewed   = errors.New("review already exists for this order")
	ErrOrderNotFulfilled = errors.New("order not yet fulfilled")
	ErrProductNotFound   = errors.New("product not found")
)

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	OrderID   string    `json:"order_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateRequest struct {
	ProductID string `json:"product_id"`
	OrderID   string `json:"order_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type Store interface {
	Exists(ctx context.Context, userID, productID, orderID string) (bool, error)
	Create(ctx context.Context, rv *Review) error
	ListByProduct(ctx context.Context, productID string, page, size int) ([]Review, error)
}

// ProductChecker answers whether a product exists in the catalog.
type ProductChecker interface {
	Exists(ctx context.Context, productID string) (bool, error)
}

// OrderStatusClient fetches the bare status token over the
// machine-to-machine orders endpoint.
type OrderStatusClient interface {
	GetOrderStatus(ctx context.Context, orderID string) (string, error)
}

type Service struct {
	store    Store
	products ProductChecker
	ordersvc OrderStatusClient
	log      *slog.Logger
}

func NewService(store Store, products ProductChecker, ordersvc OrderStatusClient, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, products: products, ordersvc: ordersvc, log: log}
}

// Create verifies purchase before accepting the review: the (user, product,
// order) triple must be new, and the order must be in a qualifying terminal
// state. Any transport failure on the status check rejects the attempt.
func (s *Service) Create(ctx context.Context, actor orders.Actor, req CreateRequest) (*Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, orders.Validationf("rating must be between 1 and 5")
	}
	if req.ProductID == "" || req.OrderID == "" {
		return nil, orders.Validationf("product_id and order_id are required")
	}

	ok, err := s.products.Exists(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProductNotFound
	}

	dup, err := s.store.Exists(ctx, actor.UserID, req.ProductID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrAlreadyReviewed
	}

	status, err := s.ordersvc.GetOrderStatus(ctx, req.OrderID)
	if err != nil {
		s.log.Warn("order status check failed", "order_id", req.OrderID, "err", err)
		return nil, err
	}
	// COMPLETED is accepted for orders ingested from the legacy system.
	if status != string(orders.StatusDelivered) && status != "COMPLETED" {
		return nil, ErrOrderNotFulfilled
	}

	rv := &Review{
		ID:        uuid.NewString(),
		UserID:    actor.UserID,
		ProductID: req.ProductID,
		OrderID:   req.OrderID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Create(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *Service) ListByProduct(ctx context.Context, productID string, page, size int) ([]Review, error) {
	return s.store.ListByProduct(ctx, productID, page, size)
}
