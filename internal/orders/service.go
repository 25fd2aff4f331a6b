package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopd/internal/money"
)

// Store is the order persistence surface consumed by the orchestrator.
type Store interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*Order, error)
	ListByUser(ctx context.Context, userID string, page, size int) ([]Order, error)
	ListAll(ctx context.Context, page, size int) ([]Order, error)
	GetStatus(ctx context.Context, id string) (Status, error)
	UpdateStatusFrom(ctx context.Context, id string, from, to Status) (bool, error)
}

// InventoryClient is the ledger owned by the products service. Reserve
// returns ErrInsufficientStock as a business refusal; anything else is a
// transport fault.
type InventoryClient interface {
	Reserve(ctx context.Context, productID string, qty int) error
	Release(ctx context.Context, productID string, qty int) error
}

type CatalogClient interface {
	GetProducts(ctx context.Context, credential string, ids []string) ([]ProductInfo, error)
}

type UserDirectory interface {
	Resolve(ctx context.Context, credential string) (Actor, error)
}

// Notifier is fire-and-forget: implementations must never block or fail the
// calling operation.
type Notifier interface {
	Notify(o *Order, event string)
}

// Service coordinates order creation and status changes across services,
// with compensating stock releases on partial failure.
type Service struct {
	store    Store
	inv      InventoryClient
	catalog  CatalogClient
	users    UserDirectory
	notifier Notifier
	log      *slog.Logger
}

func NewService(store Store, inv InventoryClient, catalog CatalogClient, users UserDirectory, notifier Notifier, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, inv: inv, catalog: catalog, users: users, notifier: notifier, log: log}
}

// CreateOrder drives the fulfillment path: validate, resolve the caller,
// price from the catalog, reserve stock per line, persist, notify. Every
// reservation granted before a failure is released before the error is
// returned, so a multi-item order never keeps a partial hold.
func (s *Service) CreateOrder(ctx context.Context, credential string, items []NewItem) (*Order, error) {
	if len(items) == 0 {
		return nil, Validationf("order must contain at least one item")
	}
	for _, it := range items {
		if it.ProductID == "" {
			return nil, Validationf("item is missing product_id")
		}
		if it.Quantity <= 0 {
			return nil, Validationf("quantity for product %s must be positive", it.ProductID)
		}
	}

	actor, err := s.users.Resolve(ctx, credential)
	if err != nil {
		return nil, err
	}

	ids := distinctProductIDs(items)
	prods, err := s.catalog.GetProducts(ctx, credential, ids)
	if err != nil {
		return nil, err
	}
	// All-or-nothing existence check: a shortfall means some product ids
	// do not exist, and nothing has been reserved yet.
	if len(prods) != len(ids) {
		return nil, ErrProductsNotFound
	}
	byID := make(map[string]ProductInfo, len(prods))
	for _, p := range prods {
		byID[p.ID] = p
	}

	var granted []NewItem
	for _, it := range items {
		if err := s.inv.Reserve(ctx, it.ProductID, it.Quantity); err != nil {
			s.compensate(ctx, granted)
			return nil, err
		}
		granted = append(granted, it)
	}

	now := time.Now().UTC()
	o := &Order{
		ID:        uuid.NewString(),
		UserID:    actor.UserID,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	total := decimal.Zero
	for _, it := range items {
		// The length check above does not rule out a response carrying
		// duplicate or unrequested ids; never snapshot a zero-value product.
		p, ok := byID[it.ProductID]
		if !ok {
			s.compensate(ctx, granted)
			return nil, ErrProductsNotFound
		}
		o.Items = append(o.Items, OrderItem{
			ID:          uuid.NewString(),
			OrderID:     o.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   money.Norm(p.UnitPrice),
		})
		total = total.Add(money.Line(p.UnitPrice, it.Quantity))
	}
	o.TotalAmount = money.Norm(total)

	if err := s.store.Create(ctx, o); err != nil {
		// Reserved but not persisted: unwind the whole hold.
		s.compensate(ctx, granted)
		return nil, fmt.Errorf("persist order: %w", err)
	}

	s.notifier.Notify(o, EventOrderCreated)
	return o, nil
}

// compensate releases every granted reservation. Failures here are logged
// and swallowed: the original error still reaches the caller, at the price
// of an acknowledged inventory inconsistency window.
func (s *Service) compensate(ctx context.Context, granted []NewItem) {
	for _, it := range granted {
		if err := s.inv.Release(ctx, it.ProductID, it.Quantity); err != nil {
			s.log.Error("compensating release failed",
				"product_id", it.ProductID, "quantity", it.Quantity, "err", err)
		}
	}
}

// UpdateOrderStatus applies the role and transition rules, releasing stock
// when an order moves into CANCELLED for the first time.
func (s *Service) UpdateOrderStatus(ctx context.Context, credential, orderID string, to Status) (*Order, error) {
	actor, err := s.users.Resolve(ctx, credential)
	if err != nil {
		return nil, err
	}

	var ord *Order
	if actor.IsAdmin() {
		ord, err = s.store.GetByID(ctx, orderID)
	} else {
		ord, err = s.store.GetByIDForUser(ctx, orderID, actor.UserID)
	}
	if err != nil {
		return nil, err
	}

	// Same-state request: accepted, no side effects, no release.
	if ord.Status == to {
		return ord, nil
	}

	if err := AuthorizeTransition(actor.Role, ord.Status, to); err != nil {
		return nil, err
	}
	if err := ValidateTransition(ord.Status, to); err != nil {
		return nil, err
	}

	// The only release trigger: entering CANCELLED from a non-cancelled
	// state. Release happens before the status write; a release failure is
	// logged and does not block the cancellation.
	if to == StatusCancelled {
		for _, it := range ord.Items {
			if err := s.inv.Release(ctx, it.ProductID, it.Quantity); err != nil {
				s.log.Error("stock release on cancel failed",
					"order_id", ord.ID, "product_id", it.ProductID, "err", err)
			}
		}
	}

	ok, err := s.store.UpdateStatusFrom(ctx, ord.ID, ord.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	ord.Status = to
	ord.UpdatedAt = time.Now().UTC()

	s.notifier.Notify(ord, EventOrderStatusChanged)
	return ord, nil
}

// GetOrderByID is ownership-scoped: a customer asking for someone else's
// order gets not-found, never forbidden.
func (s *Service) GetOrderByID(ctx context.Context, credential, orderID string) (*Order, error) {
	actor, err := s.users.Resolve(ctx, credential)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return s.store.GetByID(ctx, orderID)
	}
	return s.store.GetByIDForUser(ctx, orderID, actor.UserID)
}

func (s *Service) ListOrdersForUser(ctx context.Context, credential string, page, size int) ([]Order, error) {
	actor, err := s.users.Resolve(ctx, credential)
	if err != nil {
		return nil, err
	}
	return s.store.ListByUser(ctx, actor.UserID, page, size)
}

func (s *Service) ListAllOrders(ctx context.Context, credential string, page, size int) ([]Order, error) {
	actor, err := s.users.Resolve(ctx, credential)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	return s.store.ListAll(ctx, page, size)
}

// GetOrderStatus backs the machine-to-machine status endpoint; no user
// identity beyond service trust.
func (s *Service) GetOrderStatus(ctx context.Context, orderID string) (Status, error) {
	return s.store.GetStatus(ctx, orderID)
}

func distinctProductIDs(items []NewItem) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			out = append(out, it.ProductID)
		}
	}
	return out
}
