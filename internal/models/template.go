package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// ZoneType enumerates the kinds of customization zones a template may declare.
type ZoneType string

const (
	ZoneTypeText  ZoneType = "text"
	ZoneTypeImage ZoneType = "image"
	ZoneTypeColor ZoneType = "color"
	ZoneTypeShape ZoneType = "shape"
)

// Valid reports whether t is one of the known zone types.
func (t ZoneType) Valid() bool {
	switch t {
	case ZoneTypeText, ZoneTypeImage, ZoneTypeColor, ZoneTypeShape:
		return true
	}
	return false
}

// Template is one version of a product's customization layout.
// At most one template per product has IsDefault set.
type Template struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	ProductID  uuid.UUID      `db:"product_id" json:"productId"`
	Version    int            `db:"version" json:"version"`
	Definition types.JSONText `db:"definition" json:"definition"`
	IsDefault  bool           `db:"is_default" json:"isDefault"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updatedAt"`

	Zones []CustomizationZone `db:"-" json:"customizationZones"`
}

// CustomizationZone is a persisted zone record belonging to a template.
type CustomizationZone struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	TemplateID uuid.UUID      `db:"template_id" json:"templateId"`
	Key        string         `db:"zone_key" json:"key"`
	Type       ZoneType       `db:"type" json:"type"`
	Config     types.JSONText `db:"config" json:"config"`
	OrderIndex int            `db:"order_index" json:"orderIndex"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updatedAt"`
}

// ZoneInput describes a zone record supplied alongside a definition.
// A nil OrderIndex takes the zone's position in the request.
type ZoneInput struct {
	Key        string         `json:"key" binding:"required"`
	Type       ZoneType       `json:"type" binding:"required"`
	Config     types.JSONText `json:"config"`
	OrderIndex *int           `json:"orderIndex"`
}

// TemplateDefinition is the typed view of a template's definition document.
type TemplateDefinition struct {
	Zones map[string]ZoneSpec
}

// ZoneSpec is a single zone entry in a definition. Only the constraint
// matching Type is meaningful: MaxLength for text, Formats for image.
type ZoneSpec struct {
	Type      ZoneType
	MaxLength *int
	Formats   []string
}

// ZoneKeys returns the definition's zone keys in sorted order.
func (d *TemplateDefinition) ZoneKeys() []string {
	keys := make([]string, 0, len(d.Zones))
	for k := range d.Zones {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
