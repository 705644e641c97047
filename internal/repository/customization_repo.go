package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/chicommerce/catalog-api/internal/database"
	"github.com/chicommerce/catalog-api/internal/models"
)

const sessionColumns = `id, session_id, product_id, customization_data, is_active, created_at, updated_at`

// UpdateSessionParams carries a partial customization session update.
type UpdateSessionParams struct {
	CustomizationData types.JSONText
	IsActive          *bool
}

// CustomizationSessionRepository stores in-progress customizations.
type CustomizationSessionRepository struct {
	db *sqlx.DB
}

// NewCustomizationSessionRepository creates a new CustomizationSessionRepository.
func NewCustomizationSessionRepository(db *sqlx.DB) *CustomizationSessionRepository {
	return &CustomizationSessionRepository{db: db}
}

// Activate deactivates any active session for (sessionID, productID) and
// inserts a new active one. The newest write wins; data is not merged.
func (r *CustomizationSessionRepository) Activate(ctx context.Context, sessionID string, productID uuid.UUID, data types.JSONText) (*models.CustomizationSession, error) {
	var s *models.CustomizationSession
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockProduct(ctx, tx, productID); err != nil {
			return err
		}

		ts := now()
		if err := deactivateSessions(ctx, tx, sessionID, productID, ts); err != nil {
			return err
		}

		s = &models.CustomizationSession{
			ID:                uuid.New(),
			SessionID:         sessionID,
			ProductID:         productID,
			CustomizationData: data,
			IsActive:          true,
			CreatedAt:         ts,
			UpdatedAt:         ts,
		}
		q := tx.Rebind(`INSERT INTO customization_sessions (` + sessionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		_, err := tx.ExecContext(ctx, q,
			s.ID, s.SessionID, s.ProductID, s.CustomizationData, s.IsActive, s.CreatedAt, s.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetActive returns the active session for the pair.
func (r *CustomizationSessionRepository) GetActive(ctx context.Context, sessionID string, productID uuid.UUID) (*models.CustomizationSession, error) {
	var s models.CustomizationSession
	q := r.db.Rebind(`SELECT ` + sessionColumns + ` FROM customization_sessions
		WHERE session_id = ? AND product_id = ? AND is_active = TRUE`)
	if err := r.db.GetContext(ctx, &s, q, sessionID, productID); err != nil {
		return nil, notFound(err, "customization session")
	}
	return &s, nil
}

// ListBySession returns every session row for a client session, newest first.
func (r *CustomizationSessionRepository) ListBySession(ctx context.Context, sessionID string) ([]models.CustomizationSession, error) {
	out := []models.CustomizationSession{}
	q := r.db.Rebind(`SELECT ` + sessionColumns + ` FROM customization_sessions WHERE session_id = ? ORDER BY created_at DESC, id`)
	if err := r.db.SelectContext(ctx, &out, q, sessionID); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes a session's data and/or active flag. Reactivating a
// session deactivates whichever session currently holds the pair.
func (r *CustomizationSessionRepository) Update(ctx context.Context, id uuid.UUID, in UpdateSessionParams) (*models.CustomizationSession, error) {
	var s models.CustomizationSession
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`SELECT ` + sessionColumns + ` FROM customization_sessions WHERE id = ?`)
		if err := tx.GetContext(ctx, &s, q, id); err != nil {
			return notFound(err, "customization session")
		}

		ts := now()
		if in.IsActive != nil {
			if *in.IsActive && !s.IsActive {
				if err := deactivateSessions(ctx, tx, s.SessionID, s.ProductID, ts); err != nil {
					return err
				}
			}
			s.IsActive = *in.IsActive
		}
		if in.CustomizationData != nil {
			s.CustomizationData = in.CustomizationData
		}
		s.UpdatedAt = ts

		upd := tx.Rebind(`UPDATE customization_sessions SET customization_data = ?, is_active = ?, updated_at = ? WHERE id = ?`)
		_, err := tx.ExecContext(ctx, upd, s.CustomizationData, s.IsActive, s.UpdatedAt, s.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func deactivateSessions(ctx context.Context, q sqlx.ExtContext, sessionID string, productID uuid.UUID, ts time.Time) error {
	query := q.Rebind(`UPDATE customization_sessions SET is_active = FALSE, updated_at = ?
		WHERE session_id = ? AND product_id = ? AND is_active = TRUE`)
	_, err := q.ExecContext(ctx, query, ts, sessionID, productID)
	return err
}
