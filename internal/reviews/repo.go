package reviews

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Exists(ctx context.Context, userID, productID, orderID string) (bool, error) {
	var n int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM reviews
		WHERE user_id=$1 AND product_id=$2 AND order_id=$3`,
		userID, productID, orderID).Scan(&n)
	return n > 0, err
}

func (r *Repo) Create(ctx context.Context, rv *Review) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO reviews(id, user_id, product_id, order_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rv.ID, rv.UserID, rv.ProductID, rv.OrderID, rv.Rating, rv.Comment, rv.CreatedAt)
	return err
}

func (r *Repo) ListByProduct(ctx context.Context, productID string, page, size int) ([]Review, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, product_id, order_id, rating, COALESCE(comment, ''), created_at
		FROM reviews WHERE product_id=$1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, productID, size, page*size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.OrderID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
