package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// Product represents a customizable product in the catalog.
// Fields are tagged for both DB scanning and JSON serialization.
type Product struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description *string         `db:"description" json:"description,omitempty"`
	BasePrice   decimal.Decimal `db:"base_price" json:"basePrice"`
	Media       types.JSONText  `db:"media" json:"media"`
	IsActive    bool            `db:"is_active" json:"isActive"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// ProductDetail is a product together with its current default template.
type ProductDetail struct {
	Product
	DefaultTemplate *Template `json:"defaultTemplate"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	ActiveOnly bool
	Search     string
	Page       int
	Limit      int
}

// ProductListResult is a page of products plus the unpaged total.
type ProductListResult struct {
	Products   []Product
	TotalItems int
	Page       int
	Limit      int
}

// ProductExportRow is one line of the admin spreadsheet export.
type ProductExportRow struct {
	Product
	TemplateCount  int `db:"template_count"`
	OptionSetCount int `db:"option_set_count"`
}
