// Package catalog is the read surface of the products service consumed by
// the order orchestrator. Catalog management itself (create/update/search)
// lives elsewhere; stock mutation belongs to the inventory ledger.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"shopd/internal/money"
)

var ErrNotFound = errors.New("product not found")

type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Image     string          `json:"image,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, name, price::text, stock, COALESCE(image, ''), created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var price string
	if err := row.Scan(&p.ID, &p.Name, &price, &p.Stock, &p.Image, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var err error
	if p.Price, err = money.Parse(price); err != nil {
		return nil, fmt.Errorf("bad price for product %s: %w", p.ID, err)
	}
	return &p, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Product, error) {
	return scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
}

func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE id=$1`, id).Scan(&n)
	return n > 0, err
}

// GetByIDs returns the products that exist among ids; callers decide what a
// shortfall means.
func (r *Repo) GetByIDs(ctx context.Context, ids []string) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
