package repository

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chicommerce/catalog-api/internal/database"
	"github.com/chicommerce/catalog-api/internal/models"
	"github.com/chicommerce/catalog-api/internal/utils"
)

// maxListOffset bounds the OFFSET of a product list query.
const maxListOffset = math.MaxInt32

const productColumns = `id, name, description, base_price, media, is_active, created_at, updated_at`

// ProductRepository handles data access for products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product. ID and timestamps are assigned here.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	q := r.db.Rebind(`
		INSERT INTO products (` + productColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q,
		p.ID, p.Name, p.Description, p.BasePrice, p.Media, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID returns a product by id.
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	stmt, err := r.db.PreparexContext(ctx, r.db.Rebind(`SELECT `+productColumns+` FROM products WHERE id = ?`))
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var p models.Product
	if err := stmt.GetContext(ctx, &p, id); err != nil {
		return nil, notFound(err, "product")
	}
	return &p, nil
}

// List returns a page of products ordered by name, plus the unpaged total.
func (r *ProductRepository) List(ctx context.Context, filter models.ProductFilter) (*models.ProductListResult, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	// Pages past maxListOffset are empty anyway; clamping keeps the offset
	// from overflowing.
	if lastPage := maxListOffset/filter.Limit + 1; filter.Page > lastPage {
		filter.Page = lastPage
	}
	offset := (filter.Page - 1) * filter.Limit

	where := ` WHERE 1=1`
	args := []interface{}{}
	if filter.ActiveOnly {
		where += ` AND is_active = TRUE`
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where += ` AND LOWER(name) LIKE ?`
		args = append(args, "%"+strings.ToLower(s)+"%")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(1) FROM products`+where), args...); err != nil {
		return nil, err
	}

	listQuery := r.db.Rebind(`SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY name, id LIMIT ? OFFSET ?`)
	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, listQuery, append(args, filter.Limit, offset)...); err != nil {
		return nil, err
	}

	return &models.ProductListResult{
		Products:   products,
		TotalItems: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// Update writes every mutable field of p and refreshes UpdatedAt.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = now()
	q := r.db.Rebind(`
		UPDATE products
		SET name = ?, description = ?, base_price = ?, media = ?, is_active = ?, updated_at = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, q,
		p.Name, p.Description, p.BasePrice, p.Media, p.IsActive, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, "product")
}

// Delete removes a product that no cart item references. Customization
// sessions for the product are removed first; templates, zones, option sets
// and options go with the product through ON DELETE CASCADE.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockProduct(ctx, tx, id); err != nil {
			return err
		}

		var inUse int
		if err := tx.GetContext(ctx, &inUse, tx.Rebind(`SELECT COUNT(1) FROM cart_items WHERE product_id = ?`), id); err != nil {
			return err
		}
		if inUse > 0 {
			return &utils.ProductInUseError{Count: inUse}
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM customization_sessions WHERE product_id = ?`), id); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM products WHERE id = ?`), id)
		if err != nil {
			return err
		}
		return affectedOrNotFound(res, "product")
	})
}

// ListForExport returns every product with its template and option set counts.
func (r *ProductRepository) ListForExport(ctx context.Context) ([]models.ProductExportRow, error) {
	const q = `
		SELECT
			p.id, p.name, p.description, p.base_price, p.media, p.is_active, p.created_at, p.updated_at,
			(SELECT COUNT(1) FROM templates t WHERE t.product_id = p.id) AS template_count,
			(SELECT COUNT(1) FROM option_sets o WHERE o.product_id = p.id) AS option_set_count
		FROM products p
		ORDER BY p.name, p.id`

	rows := []models.ProductExportRow{}
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetManyByID returns the products with the given ids keyed by id.
func (r *ProductRepository) GetManyByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	return productsByID(ctx, r.db, ids)
}

func productsByID(ctx context.Context, q sqlx.ExtContext, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE id IN (?)`, idStrings(ids))
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := sqlx.SelectContext(ctx, q, &products, q.Rebind(query), args...); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}
