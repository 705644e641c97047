package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chicommerce/catalog-api/internal/database"
	"github.com/chicommerce/catalog-api/internal/utils"
)

// now truncates to microseconds, the precision PostgreSQL keeps.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func notFound(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return utils.NotFound(entity)
	}
	return err
}

// lockProduct verifies the product exists and, on PostgreSQL, holds its row
// lock until the surrounding transaction ends. Every template write and the
// product deletion take this lock first, so they serialize per product.
func lockProduct(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) error {
	var got uuid.UUID
	query := q.Rebind(`SELECT id FROM products WHERE id = ?` + database.ForUpdate(q))
	if err := sqlx.GetContext(ctx, q, &got, query, id); err != nil {
		return notFound(err, "product")
	}
	return nil
}

func productExists(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) error {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, q.Rebind(`SELECT COUNT(1) FROM products WHERE id = ?`), id); err != nil {
		return err
	}
	if n == 0 {
		return utils.NotFound("product")
	}
	return nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func affectedOrNotFound(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return utils.NotFound(entity)
	}
	return nil
}
