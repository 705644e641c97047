package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// Cart belongs to an anonymous session and optionally to a user.
type Cart struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	UserID    uuid.NullUUID `db:"user_id" json:"userId"`
	SessionID string        `db:"session_id" json:"sessionId"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `db:"updated_at" json:"updatedAt"`
}

// CartItem is one line of a cart. Two lines for the same product are
// distinct only when their customization data differs.
type CartItem struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	CartID            uuid.UUID       `db:"cart_id" json:"cartId"`
	ProductID         uuid.UUID       `db:"product_id" json:"productId"`
	Quantity          int             `db:"quantity" json:"quantity"`
	UnitPrice         decimal.Decimal `db:"unit_price" json:"unitPrice"`
	CustomizationData types.JSONText  `db:"customization_data" json:"customizationData"`
	CreatedAt         time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updatedAt"`

	Product *Product `db:"-" json:"product,omitempty"`
}

// LineTotal is quantity times unit price.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartView is a cart with its items and computed totals.
type CartView struct {
	Cart
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// NewCartView computes totals over items.
func NewCartView(cart Cart, items []CartItem) *CartView {
	v := &CartView{Cart: cart, Items: items, Subtotal: decimal.Zero}
	if v.Items == nil {
		v.Items = []CartItem{}
	}
	for _, it := range items {
		v.TotalItems += it.Quantity
		v.Subtotal = v.Subtotal.Add(it.LineTotal())
	}
	return v
}
