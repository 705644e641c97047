package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/chicommerce/catalog-api/internal/models"
	"github.com/chicommerce/catalog-api/internal/repository"
	"github.com/chicommerce/catalog-api/internal/validation"
)

// CartService manages the cart bound to a client session.
type CartService struct {
	cartRepo *repository.CartRepository
}

// NewCartService constructs a CartService.
func NewCartService(cartRepo *repository.CartRepository) *CartService {
	return &CartService{cartRepo: cartRepo}
}

// AddCartItemRequest adds a product line to the cart.
type AddCartItemRequest struct {
	ProductID         uuid.UUID       `json:"productId" binding:"required"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	CustomizationData types.JSONText  `json:"customizationData"`
}

// UpdateCartItemRequest changes a cart line.
type UpdateCartItemRequest struct {
	Quantity          *int           `json:"quantity"`
	CustomizationData types.JSONText `json:"customizationData"`
}

// GetCart returns the session's cart, creating it on first access.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*models.CartView, error) {
	cart, err := s.cartRepo.GetOrCreateBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// AddItem validates the line and merges it into the session's cart.
func (s *CartService) AddItem(ctx context.Context, sessionID string, req *AddCartItemRequest) (*models.CartItem, error) {
	if err := validation.ValidateCartLine(req.Quantity, req.UnitPrice); err != nil {
		return nil, err
	}
	data, err := validation.ObjectJSON("customizationData", req.CustomizationData)
	if err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetOrCreateBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.AddItem(ctx, cart.ID, repository.AddItemParams{
		ProductID:         req.ProductID,
		Quantity:          req.Quantity,
		UnitPrice:         req.UnitPrice,
		CustomizationData: data,
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("cart_id", cart.ID.String()).Str("item_id", item.ID.String()).Int("quantity", item.Quantity).Msg("cart item added")
	return item, nil
}

// UpdateItem changes quantity and/or customization of a line in the session's cart.
// If the new customization equals another line of the same product, the
// returned line is that one, now carrying both quantities.
func (s *CartService) UpdateItem(ctx context.Context, sessionID string, itemID uuid.UUID, req *UpdateCartItemRequest) (*models.CartItem, error) {
	if req.Quantity != nil {
		if err := validation.ValidateQuantity(*req.Quantity); err != nil {
			return nil, err
		}
	}
	params := repository.UpdateItemParams{Quantity: req.Quantity}
	if req.CustomizationData != nil {
		data, err := validation.ObjectJSON("customizationData", req.CustomizationData)
		if err != nil {
			return nil, err
		}
		params.CustomizationData = data
	}

	cart, err := s.cartRepo.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.cartRepo.UpdateItem(ctx, cart.ID, itemID, params)
}

// RemoveItem deletes a line from the session's cart.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, itemID uuid.UUID) error {
	cart, err := s.cartRepo.GetBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.cartRepo.RemoveItem(ctx, cart.ID, itemID)
}

// ClearCart empties the session's cart and returns the empty view.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) (*models.CartView, error) {
	cart, err := s.cartRepo.GetOrCreateBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	n, err := s.cartRepo.Clear(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("cart_id", cart.ID.String()).Int64("removed", n).Msg("cart cleared")
	return s.view(ctx, cart)
}

func (s *CartService) view(ctx context.Context, cart *models.Cart) (*models.CartView, error) {
	items, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	return models.NewCartView(*cart, items), nil
}
