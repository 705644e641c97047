package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chicommerce/catalog-api/internal/database"
	"github.com/chicommerce/catalog-api/internal/models"
)

const (
	optionSetColumns = `id, product_id, name, description, is_required, display_order, config, is_active, created_at, updated_at`
	optionColumns    = `id, option_set_id, name, value, display_order, additional_price, is_default, config, created_at, updated_at`
)

// OptionSetRepository handles option sets and their options.
type OptionSetRepository struct {
	db *sqlx.DB
}

// NewOptionSetRepository creates a new OptionSetRepository.
func NewOptionSetRepository(db *sqlx.DB) *OptionSetRepository {
	return &OptionSetRepository{db: db}
}

// ListByProduct returns a product's option sets with their options, ordered
// by display order then name.
func (r *OptionSetRepository) ListByProduct(ctx context.Context, productID uuid.UUID, activeOnly bool) ([]models.OptionSet, error) {
	query := `SELECT ` + optionSetColumns + ` FROM option_sets WHERE product_id = ?`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY display_order, name`

	sets := []models.OptionSet{}
	if err := r.db.SelectContext(ctx, &sets, r.db.Rebind(query), productID); err != nil {
		return nil, err
	}

	ptrs := make([]*models.OptionSet, len(sets))
	for i := range sets {
		ptrs[i] = &sets[i]
	}
	if err := attachOptions(ctx, r.db, ptrs); err != nil {
		return nil, err
	}
	return sets, nil
}

// Create inserts an option set and any inline options in one transaction.
func (r *OptionSetRepository) Create(ctx context.Context, set *models.OptionSet, options []models.Option) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := productExists(ctx, tx, set.ProductID); err != nil {
			return err
		}

		ts := now()
		set.ID = uuid.New()
		set.CreatedAt, set.UpdatedAt = ts, ts
		q := tx.Rebind(`INSERT INTO option_sets (` + optionSetColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, q,
			set.ID, set.ProductID, set.Name, set.Description, set.IsRequired, set.DisplayOrder,
			set.Config, set.IsActive, set.CreatedAt, set.UpdatedAt,
		); err != nil {
			return err
		}

		set.Options = make([]models.Option, 0, len(options))
		for i := range options {
			o := options[i]
			o.OptionSetID = set.ID
			if err := insertOption(ctx, tx, &o, ts); err != nil {
				return err
			}
			set.Options = append(set.Options, o)
		}
		return nil
	})
}

// GetByID returns an option set with its options and product name.
func (r *OptionSetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.OptionSet, error) {
	var set models.OptionSet
	if err := r.db.GetContext(ctx, &set, r.db.Rebind(`SELECT `+optionSetColumns+` FROM option_sets WHERE id = ?`), id); err != nil {
		return nil, notFound(err, "option set")
	}
	if err := r.db.GetContext(ctx, &set.ProductName, r.db.Rebind(`SELECT name FROM products WHERE id = ?`), set.ProductID); err != nil {
		return nil, err
	}
	if err := attachOptions(ctx, r.db, []*models.OptionSet{&set}); err != nil {
		return nil, err
	}
	return &set, nil
}

// Update writes every mutable field of the option set.
func (r *OptionSetRepository) Update(ctx context.Context, set *models.OptionSet) error {
	set.UpdatedAt = now()
	q := r.db.Rebind(`
		UPDATE option_sets
		SET name = ?, description = ?, is_required = ?, display_order = ?, config = ?, is_active = ?, updated_at = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, q,
		set.Name, set.Description, set.IsRequired, set.DisplayOrder, set.Config, set.IsActive, set.UpdatedAt, set.ID,
	)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, "option set")
}

// Delete removes an option set; its options cascade.
func (r *OptionSetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM option_sets WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, "option set")
}

// ListOptions returns the options of a set ordered by display order.
func (r *OptionSetRepository) ListOptions(ctx context.Context, setID uuid.UUID) ([]models.Option, error) {
	if err := r.ensureSet(ctx, r.db, setID); err != nil {
		return nil, err
	}
	options := []models.Option{}
	q := r.db.Rebind(`SELECT ` + optionColumns + ` FROM options WHERE option_set_id = ? ORDER BY display_order, name`)
	if err := r.db.SelectContext(ctx, &options, q, setID); err != nil {
		return nil, err
	}
	return options, nil
}

// CreateOption adds an option to an existing set.
func (r *OptionSetRepository) CreateOption(ctx context.Context, o *models.Option) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := r.ensureSet(ctx, tx, o.OptionSetID); err != nil {
			return err
		}
		return insertOption(ctx, tx, o, now())
	})
}

// GetOption returns a single option.
func (r *OptionSetRepository) GetOption(ctx context.Context, id uuid.UUID) (*models.Option, error) {
	var o models.Option
	if err := r.db.GetContext(ctx, &o, r.db.Rebind(`SELECT `+optionColumns+` FROM options WHERE id = ?`), id); err != nil {
		return nil, notFound(err, "option")
	}
	return &o, nil
}

// UpdateOption writes every mutable field of the option.
func (r *OptionSetRepository) UpdateOption(ctx context.Context, o *models.Option) error {
	o.UpdatedAt = now()
	q := r.db.Rebind(`
		UPDATE options
		SET name = ?, value = ?, display_order = ?, additional_price = ?, is_default = ?, config = ?, updated_at = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, q,
		o.Name, o.Value, o.DisplayOrder, o.AdditionalPrice, o.IsDefault, o.Config, o.UpdatedAt, o.ID,
	)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, "option")
}

// DeleteOption removes a single option.
func (r *OptionSetRepository) DeleteOption(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM options WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, "option")
}

func (r *OptionSetRepository) ensureSet(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) error {
	var got uuid.UUID
	if err := sqlx.GetContext(ctx, q, &got, q.Rebind(`SELECT id FROM option_sets WHERE id = ?`), id); err != nil {
		return notFound(err, "option set")
	}
	return nil
}

func insertOption(ctx context.Context, q sqlx.ExtContext, o *models.Option, ts time.Time) error {
	o.ID = uuid.New()
	o.CreatedAt, o.UpdatedAt = ts, ts
	query := q.Rebind(`INSERT INTO options (` + optionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := q.ExecContext(ctx, query,
		o.ID, o.OptionSetID, o.Name, o.Value, o.DisplayOrder, o.AdditionalPrice, o.IsDefault, o.Config, o.CreatedAt, o.UpdatedAt,
	)
	return err
}

func attachOptions(ctx context.Context, q sqlx.ExtContext, sets []*models.OptionSet) error {
	if len(sets) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(sets))
	byID := make(map[uuid.UUID]*models.OptionSet, len(sets))
	for i, s := range sets {
		ids[i] = s.ID
		s.Options = []models.Option{}
		byID[s.ID] = s
	}

	query, args, err := sqlx.In(`SELECT `+optionColumns+` FROM options WHERE option_set_id IN (?) ORDER BY display_order, name`, idStrings(ids))
	if err != nil {
		return err
	}
	var options []models.Option
	if err := sqlx.SelectContext(ctx, q, &options, q.Rebind(query), args...); err != nil {
		return err
	}
	for _, o := range options {
		if s, ok := byID[o.OptionSetID]; ok {
			s.Options = append(s.Options, o)
		}
	}
	return nil
}
