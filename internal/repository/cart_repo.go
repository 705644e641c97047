package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"

	"github.com/chicommerce/catalog-api/internal/database"
	"github.com/chicommerce/catalog-api/internal/models"
	"github.com/chicommerce/catalog-api/internal/utils"
)

const (
	cartColumns     = `id, user_id, session_id, created_at, updated_at`
	cartItemColumns = `id, cart_id, product_id, quantity, unit_price, customization_data, created_at, updated_at`
)

// AddItemParams carries a validated add-to-cart request.
type AddItemParams struct {
	ProductID         uuid.UUID
	Quantity          int
	UnitPrice         decimal.Decimal
	CustomizationData types.JSONText
}

// UpdateItemParams carries a partial cart item update.
type UpdateItemParams struct {
	Quantity          *int
	CustomizationData types.JSONText
}

// CartRepository handles carts and their items.
type CartRepository struct {
	db *sqlx.DB
}

// NewCartRepository creates a new CartRepository.
func NewCartRepository(db *sqlx.DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetBySession returns the cart for a session identifier.
func (r *CartRepository) GetBySession(ctx context.Context, sessionID string) (*models.Cart, error) {
	var c models.Cart
	q := r.db.Rebind(`SELECT ` + cartColumns + ` FROM carts WHERE session_id = ?`)
	if err := r.db.GetContext(ctx, &c, q, sessionID); err != nil {
		return nil, notFound(err, "cart")
	}
	return &c, nil
}

// GetOrCreateBySession returns the session's cart, creating an empty one
// on first use.
func (r *CartRepository) GetOrCreateBySession(ctx context.Context, sessionID string) (*models.Cart, error) {
	c, err := r.GetBySession(ctx, sessionID)
	if err == nil {
		return c, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	ts := now()
	c = &models.Cart{ID: uuid.New(), SessionID: sessionID, CreatedAt: ts, UpdatedAt: ts}
	q := r.db.Rebind(`INSERT INTO carts (` + cartColumns + `) VALUES (?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, q, c.ID, c.UserID, c.SessionID, c.CreatedAt, c.UpdatedAt); err != nil {
		// Another request created it first.
		if database.IsUniqueViolation(err, "") {
			return r.GetBySession(ctx, sessionID)
		}
		return nil, err
	}
	return c, nil
}

// ListItems returns a cart's items in insertion order with their products.
func (r *CartRepository) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	items := []models.CartItem{}
	q := r.db.Rebind(`SELECT ` + cartItemColumns + ` FROM cart_items WHERE cart_id = ? ORDER BY created_at, id`)
	if err := r.db.SelectContext(ctx, &items, q, cartID); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := productsByID(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if p, ok := products[items[i].ProductID]; ok {
			p := p
			items[i].Product = &p
		}
	}
	return items, nil
}

// AddItem adds a line to the cart. When a line for the same product with
// equal customization data already exists, its quantity is increased
// instead of inserting a new row. The cart row is locked for the duration.
func (r *CartRepository) AddItem(ctx context.Context, cartID uuid.UUID, in AddItemParams) (*models.CartItem, error) {
	var item *models.CartItem
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockCart(ctx, tx, cartID); err != nil {
			return err
		}
		if err := productExists(ctx, tx, in.ProductID); err != nil {
			return err
		}

		var existing []models.CartItem
		q := tx.Rebind(`SELECT ` + cartItemColumns + ` FROM cart_items WHERE cart_id = ? AND product_id = ? ORDER BY created_at, id`)
		if err := tx.SelectContext(ctx, &existing, q, cartID, in.ProductID); err != nil {
			return err
		}

		ts := now()
		for i := range existing {
			if !sameCustomization(existing[i].CustomizationData, in.CustomizationData) {
				continue
			}
			item = &existing[i]
			item.Quantity += in.Quantity
			item.UpdatedAt = ts
			upd := tx.Rebind(`UPDATE cart_items SET quantity = quantity + ?, updated_at = ? WHERE id = ?`)
			if _, err := tx.ExecContext(ctx, upd, in.Quantity, ts, item.ID); err != nil {
				return err
			}
			return touchCart(ctx, tx, cartID, ts)
		}

		item = &models.CartItem{
			ID:                uuid.New(),
			CartID:            cartID,
			ProductID:         in.ProductID,
			Quantity:          in.Quantity,
			UnitPrice:         in.UnitPrice,
			CustomizationData: in.CustomizationData,
			CreatedAt:         ts,
			UpdatedAt:         ts,
		}
		ins := tx.Rebind(`INSERT INTO cart_items (` + cartItemColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, ins,
			item.ID, item.CartID, item.ProductID, item.Quantity, item.UnitPrice, item.CustomizationData, item.CreatedAt, item.UpdatedAt,
		); err != nil {
			return err
		}
		return touchCart(ctx, tx, cartID, ts)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem returns an item only if it belongs to the given cart.
func (r *CartRepository) GetItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	return getCartItem(ctx, r.db, cartID, itemID)
}

// UpdateItem changes an item's quantity and/or customization data. When the
// new data makes the item equal to another line of the same product, the two
// lines are folded into that line and the updated row is removed.
func (r *CartRepository) UpdateItem(ctx context.Context, cartID, itemID uuid.UUID, in UpdateItemParams) (*models.CartItem, error) {
	var item *models.CartItem
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockCart(ctx, tx, cartID); err != nil {
			return err
		}
		var err error
		if item, err = getCartItem(ctx, tx, cartID, itemID); err != nil {
			return err
		}
		if in.Quantity != nil {
			item.Quantity = *in.Quantity
		}
		if in.CustomizationData != nil {
			item.CustomizationData = in.CustomizationData
		}
		item.UpdatedAt = now()

		if in.CustomizationData != nil {
			sibling, err := findSibling(ctx, tx, item)
			if err != nil {
				return err
			}
			if sibling != nil {
				sibling.Quantity += item.Quantity
				sibling.UpdatedAt = item.UpdatedAt
				upd := tx.Rebind(`UPDATE cart_items SET quantity = ?, updated_at = ? WHERE id = ?`)
				if _, err := tx.ExecContext(ctx, upd, sibling.Quantity, sibling.UpdatedAt, sibling.ID); err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM cart_items WHERE id = ?`), item.ID); err != nil {
					return err
				}
				item = sibling
				return touchCart(ctx, tx, cartID, item.UpdatedAt)
			}
		}

		q := tx.Rebind(`UPDATE cart_items SET quantity = ?, customization_data = ?, updated_at = ? WHERE id = ?`)
		if _, err := tx.ExecContext(ctx, q, item.Quantity, item.CustomizationData, item.UpdatedAt, item.ID); err != nil {
			return err
		}
		return touchCart(ctx, tx, cartID, item.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// findSibling returns the oldest other line of the same cart and product
// whose customization equals item's, or nil.
func findSibling(ctx context.Context, tx *sqlx.Tx, item *models.CartItem) (*models.CartItem, error) {
	var lines []models.CartItem
	q := tx.Rebind(`SELECT ` + cartItemColumns + ` FROM cart_items WHERE cart_id = ? AND product_id = ? AND id <> ? ORDER BY created_at, id`)
	if err := tx.SelectContext(ctx, &lines, q, item.CartID, item.ProductID, item.ID); err != nil {
		return nil, err
	}
	for i := range lines {
		if sameCustomization(lines[i].CustomizationData, item.CustomizationData) {
			return &lines[i], nil
		}
	}
	return nil, nil
}

// RemoveItem deletes one item from the cart.
func (r *CartRepository) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	q := r.db.Rebind(`DELETE FROM cart_items WHERE id = ? AND cart_id = ?`)
	res, err := r.db.ExecContext(ctx, q, itemID, cartID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res, "cart item")
}

// Clear deletes every item of the cart in one statement and keeps the cart.
// Clearing an empty cart is not an error.
func (r *CartRepository) Clear(ctx context.Context, cartID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cart_items WHERE cart_id = ?`), cartID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func getCartItem(ctx context.Context, q sqlx.ExtContext, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var it models.CartItem
	query := q.Rebind(`SELECT ` + cartItemColumns + ` FROM cart_items WHERE id = ? AND cart_id = ?`)
	if err := sqlx.GetContext(ctx, q, &it, query, itemID, cartID); err != nil {
		return nil, notFound(err, "cart item")
	}
	return &it, nil
}

func lockCart(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) error {
	var got uuid.UUID
	query := q.Rebind(`SELECT id FROM carts WHERE id = ?` + database.ForUpdate(q))
	if err := sqlx.GetContext(ctx, q, &got, query, id); err != nil {
		return notFound(err, "cart")
	}
	return nil
}

func touchCart(ctx context.Context, q sqlx.ExtContext, id uuid.UUID, ts time.Time) error {
	_, err := q.ExecContext(ctx, q.Rebind(`UPDATE carts SET updated_at = ? WHERE id = ?`), ts, id)
	return err
}

// sameCustomization compares two JSON documents structurally, so key order
// and whitespace do not matter. Absent data equals an empty object.
func sameCustomization(a, b types.JSONText) bool {
	var va, vb interface{}
	if err := json.Unmarshal(orEmptyObject(a), &va); err != nil {
		return bytes.Equal(a, b)
	}
	if err := json.Unmarshal(orEmptyObject(b), &vb); err != nil {
		return bytes.Equal(a, b)
	}
	return reflect.DeepEqual(va, vb)
}

func orEmptyObject(raw types.JSONText) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []byte("{}")
	}
	return trimmed
}

func isNotFound(err error) bool {
	return errors.Is(err, utils.ErrNotFound)
}
