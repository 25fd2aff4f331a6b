// Package inventory is the authoritative stock ledger of the products
// service. All mutation goes through single atomic statements; there is no
// read-then-write anywhere, so concurrent reservations cannot both win the
// last units.
package inventory

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Ledger struct{ DB *pgxpool.Pool }

// Reserve decrements stock by qty only if enough is available. One affected
// row means the reservation was granted; zero means insufficient stock,
// which is a business refusal, not an error.
func (l *Ledger) Reserve(ctx context.Context, productID string, qty int) (bool, error) {
	ct, err := l.DB.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`, productID, qty)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// Release unconditionally returns qty units to stock. Not idempotent:
// callers must invoke it at most once per cancelled order.
func (l *Ledger) Release(ctx context.Context, productID string, qty int) error {
	_, err := l.DB.Exec(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id = $1`, productID, qty)
	return err
}

// CountAvailable reports how many products still have stock, for dashboards.
// It is only eventually consistent with in-flight reservations.
func (l *Ledger) CountAvailable(ctx context.Context) (int64, error) {
	var n int64
	err := l.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE stock > 0`).Scan(&n)
	return n, err
}
