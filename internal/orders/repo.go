package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopd/internal/money"
)

type Repo struct{ DB *pgxpool.Pool }

// Create persists the order and its line items as one local transaction.
func (r *Repo) Create(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, status, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.UserID, string(o.Status), o.TotalAmount.StringFixed(2), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return err
	}

	for _, it := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, product_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, o.ID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice.StringFixed(2),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

const orderCols = `id, user_id, status, total_amount::text, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var status, total string
	if err := row.Scan(&o.ID, &o.UserID, &status, &total, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	o.Status = Status(status)
	amt, err := money.Parse(total)
	if err != nil {
		return nil, fmt.Errorf("bad total_amount for order %s: %w", o.ID, err)
	}
	o.TotalAmount = amt
	return &o, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	return o, r.loadItems(ctx, []*Order{o})
}

// GetByIDForUser scopes the read by owner; a mismatch reads as not found.
func (r *Repo) GetByIDForUser(ctx context.Context, id, userID string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id=$1 AND user_id=$2`, id, userID))
	if err != nil {
		return nil, err
	}
	return o, r.loadItems(ctx, []*Order{o})
}

func (r *Repo) ListByUser(ctx context.Context, userID string, page, size int) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE user_id=$1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, size, page*size)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

func (r *Repo) ListAll(ctx context.Context, page, size int) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+orderCols+` FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, size, page*size)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

func (r *Repo) collect(ctx context.Context, rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	refs := make([]*Order, len(out))
	for i := range out {
		refs[i] = &out[i]
	}
	return out, r.loadItems(ctx, refs)
}

func (r *Repo) loadItems(ctx context.Context, ords []*Order) error {
	if len(ords) == 0 {
		return nil
	}
	ids := make([]string, 0, len(ords))
	byID := make(map[string]*Order, len(ords))
	for _, o := range ords {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price::text
		FROM order_items WHERE order_id = ANY($1)
		ORDER BY id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		var price string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &price); err != nil {
			return err
		}
		if it.UnitPrice, err = money.Parse(price); err != nil {
			return fmt.Errorf("bad unit_price for item %s: %w", it.ID, err)
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *Repo) GetStatus(ctx context.Context, id string) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, id).Scan(&s)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return Status(s), nil
}

// UpdateStatusFrom persists the new status only if the order is still in the
// expected state; false means a concurrent writer got there first.
func (r *Repo) UpdateStatusFrom(ctx context.Context, id string, from, to Status) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$3, updated_at=now()
		WHERE id=$1 AND status=$2`, id, string(from), string(to))
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}
