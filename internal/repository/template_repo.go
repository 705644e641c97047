package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/chicommerce/catalog-api/internal/database"
	"github.com/chicommerce/catalog-api/internal/models"
	"github.com/chicommerce/catalog-api/internal/utils"
)

const (
	templateColumns = `id, product_id, version, definition, is_default, created_at, updated_at`
	zoneColumns     = `id, template_id, zone_key, type, config, order_index, created_at, updated_at`
)

// CreateTemplateParams carries an already validated template create request.
// A nil Version takes the next version after the product's current maximum.
type CreateTemplateParams struct {
	ProductID  uuid.UUID
	Version    *int
	Definition types.JSONText
	IsDefault  bool
	Zones      []models.ZoneInput
}

// UpdateTemplateParams carries a partial update. Nil fields stay unchanged;
// a non-nil Zones replaces every zone record of the template.
type UpdateTemplateParams struct {
	Version    *int
	Definition types.JSONText
	IsDefault  *bool
	Zones      *[]models.ZoneInput
}

// TemplateRepository owns template rows and the one-default-per-product rule.
type TemplateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository creates a new TemplateRepository.
func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create inserts a template and its zones in one transaction. The first
// template of a product always becomes the default; requesting IsDefault
// moves the default flag from its current holder.
func (r *TemplateRepository) Create(ctx context.Context, in CreateTemplateParams) (*models.Template, error) {
	var t *models.Template
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockProduct(ctx, tx, in.ProductID); err != nil {
			return err
		}

		version, err := r.resolveVersion(ctx, tx, in.ProductID, in.Version)
		if err != nil {
			return err
		}

		hasDefault, err := countDefaults(ctx, tx, in.ProductID, uuid.Nil)
		if err != nil {
			return err
		}

		isDefault := in.IsDefault || hasDefault == 0
		ts := now()
		if isDefault && hasDefault > 0 {
			if err := clearDefaults(ctx, tx, in.ProductID, ts); err != nil {
				return err
			}
		}

		t = &models.Template{
			ID:         uuid.New(),
			ProductID:  in.ProductID,
			Version:    version,
			Definition: in.Definition,
			IsDefault:  isDefault,
			CreatedAt:  ts,
			UpdatedAt:  ts,
		}
		q := tx.Rebind(`INSERT INTO templates (` + templateColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, q,
			t.ID, t.ProductID, t.Version, t.Definition, t.IsDefault, t.CreatedAt, t.UpdatedAt,
		); err != nil {
			return mapTemplateWriteErr(err, version)
		}

		t.Zones, err = insertZones(ctx, tx, t.ID, in.Zones, ts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TemplateRepository) resolveVersion(ctx context.Context, tx *sqlx.Tx, productID uuid.UUID, requested *int) (int, error) {
	if requested == nil {
		var max int
		q := tx.Rebind(`SELECT COALESCE(MAX(version), 0) FROM templates WHERE product_id = ?`)
		if err := tx.GetContext(ctx, &max, q, productID); err != nil {
			return 0, err
		}
		return max + 1, nil
	}
	if err := ensureVersionFree(ctx, tx, productID, *requested, uuid.Nil); err != nil {
		return 0, err
	}
	return *requested, nil
}

// GetByID returns a template with its zones.
func (r *TemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	t, err := getTemplate(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	if err := attachZones(ctx, r.db, []*models.Template{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// GetDefault returns the product's default template with its zones.
func (r *TemplateRepository) GetDefault(ctx context.Context, productID uuid.UUID) (*models.Template, error) {
	var t models.Template
	q := r.db.Rebind(`SELECT ` + templateColumns + ` FROM templates WHERE product_id = ? AND is_default = TRUE`)
	if err := r.db.GetContext(ctx, &t, q, productID); err != nil {
		return nil, notFound(err, "default template")
	}
	if err := attachZones(ctx, r.db, []*models.Template{&t}); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByProduct returns every template of a product, newest version first.
func (r *TemplateRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Template, error) {
	templates := []models.Template{}
	q := r.db.Rebind(`SELECT ` + templateColumns + ` FROM templates WHERE product_id = ? ORDER BY version DESC`)
	if err := r.db.SelectContext(ctx, &templates, q, productID); err != nil {
		return nil, err
	}

	ptrs := make([]*models.Template, len(templates))
	for i := range templates {
		ptrs[i] = &templates[i]
	}
	if err := attachZones(ctx, r.db, ptrs); err != nil {
		return nil, err
	}
	return templates, nil
}

// Update applies a partial update inside one transaction.
func (r *TemplateRepository) Update(ctx context.Context, id uuid.UUID, in UpdateTemplateParams) (*models.Template, error) {
	var t *models.Template
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		current, err := getTemplate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := lockProduct(ctx, tx, current.ProductID); err != nil {
			return err
		}
		// Re-read under the product lock.
		if t, err = getTemplate(ctx, tx, id); err != nil {
			return err
		}

		ts := now()
		if in.Version != nil && *in.Version != t.Version {
			if err := ensureVersionFree(ctx, tx, t.ProductID, *in.Version, t.ID); err != nil {
				return err
			}
			t.Version = *in.Version
		}

		if in.IsDefault != nil && *in.IsDefault != t.IsDefault {
			if *in.IsDefault {
				if err := clearDefaults(ctx, tx, t.ProductID, ts); err != nil {
					return err
				}
				t.IsDefault = true
			} else {
				others, err := countDefaults(ctx, tx, t.ProductID, t.ID)
				if err != nil {
					return err
				}
				if others == 0 {
					return fmt.Errorf("%w: at least one template must be marked as default", utils.ErrLastDefaultRemoval)
				}
				t.IsDefault = false
			}
		}

		if in.Definition != nil {
			t.Definition = in.Definition
		}
		t.UpdatedAt = ts

		q := tx.Rebind(`UPDATE templates SET version = ?, definition = ?, is_default = ?, updated_at = ? WHERE id = ?`)
		if _, err := tx.ExecContext(ctx, q, t.Version, t.Definition, t.IsDefault, t.UpdatedAt, t.ID); err != nil {
			return mapTemplateWriteErr(err, t.Version)
		}

		if in.Zones != nil {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM customization_zones WHERE template_id = ?`), t.ID); err != nil {
				return err
			}
			if t.Zones, err = insertZones(ctx, tx, t.ID, *in.Zones, ts); err != nil {
				return err
			}
			return nil
		}
		return attachZones(ctx, tx, []*models.Template{t})
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a template. The last template of a product cannot be
// removed. When the default is removed, the remaining template with the
// highest version (then lowest id) becomes the default.
func (r *TemplateRepository) Delete(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	var t *models.Template
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		current, err := getTemplate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := lockProduct(ctx, tx, current.ProductID); err != nil {
			return err
		}
		if t, err = getTemplate(ctx, tx, id); err != nil {
			return err
		}

		var count int
		if err := tx.GetContext(ctx, &count, tx.Rebind(`SELECT COUNT(1) FROM templates WHERE product_id = ?`), t.ProductID); err != nil {
			return err
		}
		if count <= 1 {
			return fmt.Errorf("%w: cannot delete the only template for a product", utils.ErrLastTemplateRemoval)
		}

		// Delete before promoting so the partial unique index never sees two defaults.
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM templates WHERE id = ?`), t.ID); err != nil {
			return err
		}

		if !t.IsDefault {
			return nil
		}
		var successor uuid.UUID
		q := tx.Rebind(`SELECT id FROM templates WHERE product_id = ? ORDER BY version DESC, id ASC LIMIT 1`)
		if err := tx.GetContext(ctx, &successor, q, t.ProductID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE templates SET is_default = TRUE, updated_at = ? WHERE id = ?`), now(), successor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func getTemplate(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (*models.Template, error) {
	var t models.Template
	if err := sqlx.GetContext(ctx, q, &t, q.Rebind(`SELECT `+templateColumns+` FROM templates WHERE id = ?`), id); err != nil {
		return nil, notFound(err, "template")
	}
	return &t, nil
}

// countDefaults counts default templates of a product, ignoring exclude.
func countDefaults(ctx context.Context, q sqlx.ExtContext, productID, exclude uuid.UUID) (int, error) {
	var n int
	query := q.Rebind(`SELECT COUNT(1) FROM templates WHERE product_id = ? AND is_default = TRUE AND id <> ?`)
	err := sqlx.GetContext(ctx, q, &n, query, productID, exclude)
	return n, err
}

func clearDefaults(ctx context.Context, q sqlx.ExtContext, productID uuid.UUID, ts time.Time) error {
	query := q.Rebind(`UPDATE templates SET is_default = FALSE, updated_at = ? WHERE product_id = ? AND is_default = TRUE`)
	_, err := q.ExecContext(ctx, query, ts, productID)
	return err
}

func ensureVersionFree(ctx context.Context, q sqlx.ExtContext, productID uuid.UUID, version int, exclude uuid.UUID) error {
	var n int
	query := q.Rebind(`SELECT COUNT(1) FROM templates WHERE product_id = ? AND version = ? AND id <> ?`)
	if err := sqlx.GetContext(ctx, q, &n, query, productID, version, exclude); err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: template version %d already exists for this product", utils.ErrDuplicateVersion, version)
	}
	return nil
}

func mapTemplateWriteErr(err error, version int) error {
	if database.IsUniqueViolation(err, "uq_template_product_version") {
		return fmt.Errorf("%w: template version %d already exists for this product", utils.ErrDuplicateVersion, version)
	}
	return err
}

func insertZones(ctx context.Context, q sqlx.ExtContext, templateID uuid.UUID, inputs []models.ZoneInput, ts time.Time) ([]models.CustomizationZone, error) {
	zones := make([]models.CustomizationZone, 0, len(inputs))
	query := q.Rebind(`INSERT INTO customization_zones (` + zoneColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, in := range inputs {
		z := models.CustomizationZone{
			ID:         uuid.New(),
			TemplateID: templateID,
			Key:        in.Key,
			Type:       in.Type,
			Config:     in.Config,
			OrderIndex: i,
			CreatedAt:  ts,
			UpdatedAt:  ts,
		}
		if len(z.Config) == 0 {
			z.Config = types.JSONText("{}")
		}
		if in.OrderIndex != nil {
			z.OrderIndex = *in.OrderIndex
		}
		if _, err := q.ExecContext(ctx, query,
			z.ID, z.TemplateID, z.Key, z.Type, z.Config, z.OrderIndex, ts, ts,
		); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	sortZones(zones)
	return zones, nil
}
