package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

	"github.com/chicommerce/catalog-api/internal/models"
	"github.com/chicommerce/catalog-api/internal/repository"
	"github.com/chicommerce/catalog-api/internal/validation"
)

// CustomizationService manages in-progress customizations per client session.
type CustomizationService struct {
	repo *repository.CustomizationSessionRepository
}

// NewCustomizationService constructs a CustomizationService.
func NewCustomizationService(repo *repository.CustomizationSessionRepository) *CustomizationService {
	return &CustomizationService{repo: repo}
}

// StartSessionRequest starts a customization for a product.
type StartSessionRequest struct {
	ProductID         uuid.UUID      `json:"productId" binding:"required"`
	CustomizationData types.JSONText `json:"customizationData"`
}

// UpdateSessionRequest changes the active customization for a product.
type UpdateSessionRequest struct {
	CustomizationData types.JSONText `json:"customizationData"`
	IsActive          *bool          `json:"isActive"`
}

// StartSession replaces any active customization for the pair with a new one.
func (s *CustomizationService) StartSession(ctx context.Context, sessionID string, req *StartSessionRequest) (*models.CustomizationSession, error) {
	data, err := validation.ObjectJSON("customizationData", req.CustomizationData)
	if err != nil {
		return nil, err
	}
	return s.repo.Activate(ctx, sessionID, req.ProductID, data)
}

// GetActive returns the active customization for a product.
func (s *CustomizationService) GetActive(ctx context.Context, sessionID string, productID uuid.UUID) (*models.CustomizationSession, error) {
	return s.repo.GetActive(ctx, sessionID, productID)
}

// UpdateActive updates the active customization for a product.
func (s *CustomizationService) UpdateActive(ctx context.Context, sessionID string, productID uuid.UUID, req *UpdateSessionRequest) (*models.CustomizationSession, error) {
	params := repository.UpdateSessionParams{IsActive: req.IsActive}
	if req.CustomizationData != nil {
		data, err := validation.ObjectJSON("customizationData", req.CustomizationData)
		if err != nil {
			return nil, err
		}
		params.CustomizationData = data
	}

	current, err := s.repo.GetActive(ctx, sessionID, productID)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, current.ID, params)
}
