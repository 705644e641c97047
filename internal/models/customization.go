package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// CustomizationSession holds in-progress customization choices for one
// product within one client session. At most one is active per pair.
type CustomizationSession struct {
	ID                uuid.UUID      `db:"id" json:"id"`
	SessionID         string         `db:"session_id" json:"sessionId"`
	ProductID         uuid.UUID      `db:"product_id" json:"productId"`
	CustomizationData types.JSONText `db:"customization_data" json:"customizationData"`
	IsActive          bool           `db:"is_active" json:"isActive"`
	CreatedAt         time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updatedAt"`
}
