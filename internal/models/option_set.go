package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// OptionSet groups selectable options for a product, e.g. "Size".
type OptionSet struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	ProductID    uuid.UUID      `db:"product_id" json:"productId"`
	Name         string         `db:"name" json:"name"`
	Description  *string        `db:"description" json:"description,omitempty"`
	IsRequired   bool           `db:"is_required" json:"isRequired"`
	DisplayOrder int            `db:"display_order" json:"displayOrder"`
	Config       types.JSONText `db:"config" json:"config"`
	IsActive     bool           `db:"is_active" json:"isActive"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`

	ProductName string   `db:"-" json:"productName,omitempty"`
	Options     []Option `db:"-" json:"options"`
}

// Option is a single choice within an option set. AdditionalPrice is in cents.
type Option struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	OptionSetID     uuid.UUID      `db:"option_set_id" json:"optionSetId"`
	Name            string         `db:"name" json:"name"`
	Value           string         `db:"value" json:"value"`
	DisplayOrder    int            `db:"display_order" json:"displayOrder"`
	AdditionalPrice int            `db:"additional_price" json:"additionalPrice"`
	IsDefault       bool           `db:"is_default" json:"isDefault"`
	Config          types.JSONText `db:"config" json:"config"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}
