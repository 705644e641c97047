package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog/log"

	"github.com/chicommerce/catalog-api/internal/models"
	"github.com/chicommerce/catalog-api/internal/repository"
	"github.com/chicommerce/catalog-api/internal/validation"
)

const (
	maxOptionSetNameLength = 100
	maxOptionNameLength    = 100
	maxOptionValueLength   = 255
)

// OptionSetService handles option sets and options.
type OptionSetService struct {
	repo *repository.OptionSetRepository
}

// NewOptionSetService constructs an OptionSetService.
func NewOptionSetService(repo *repository.OptionSetRepository) *OptionSetService {
	return &OptionSetService{repo: repo}
}

// CreateOptionSetRequest creates an option set, optionally with its options.
type CreateOptionSetRequest struct {
	Name         string                `json:"name" binding:"required"`
	Description  *string               `json:"description"`
	IsRequired   *bool                 `json:"isRequired"`
	DisplayOrder int                   `json:"displayOrder"`
	Config       types.JSONText        `json:"config"`
	IsActive     *bool                 `json:"isActive"`
	Options      []CreateOptionRequest `json:"options"`
}

// UpdateOptionSetRequest is a partial option set update.
type UpdateOptionSetRequest struct {
	Name         *string        `json:"name"`
	Description  *string        `json:"description"`
	IsRequired   *bool          `json:"isRequired"`
	DisplayOrder *int           `json:"displayOrder"`
	Config       types.JSONText `json:"config"`
	IsActive     *bool          `json:"isActive"`
}

// CreateOptionRequest creates a single option.
type CreateOptionRequest struct {
	Name            string         `json:"name" binding:"required"`
	Value           string         `json:"value" binding:"required"`
	DisplayOrder    int            `json:"displayOrder"`
	AdditionalPrice int            `json:"additionalPrice"`
	IsDefault       bool           `json:"isDefault"`
	Config          types.JSONText `json:"config"`
}

// UpdateOptionRequest is a partial option update.
type UpdateOptionRequest struct {
	Name            *string        `json:"name"`
	Value           *string        `json:"value"`
	DisplayOrder    *int           `json:"displayOrder"`
	AdditionalPrice *int           `json:"additionalPrice"`
	IsDefault       *bool          `json:"isDefault"`
	Config          types.JSONText `json:"config"`
}

// ListOptionSets returns the option sets of a product.
func (s *OptionSetService) ListOptionSets(ctx context.Context, productID uuid.UUID, activeOnly bool) ([]models.OptionSet, error) {
	return s.repo.ListByProduct(ctx, productID, activeOnly)
}

// CreateOptionSet stores an option set and its inline options atomically.
func (s *OptionSetService) CreateOptionSet(ctx context.Context, productID uuid.UUID, req *CreateOptionSetRequest) (*models.OptionSet, error) {
	name, err := validation.ValidateName("name", req.Name, maxOptionSetNameLength)
	if err != nil {
		return nil, err
	}
	config, err := validation.ObjectJSON("config", req.Config)
	if err != nil {
		return nil, err
	}

	options := make([]models.Option, 0, len(req.Options))
	for i := range req.Options {
		o, err := buildOption(&req.Options[i])
		if err != nil {
			return nil, err
		}
		options = append(options, *o)
	}

	set := &models.OptionSet{
		ProductID:    productID,
		Name:         name,
		Description:  req.Description,
		IsRequired:   true,
		DisplayOrder: req.DisplayOrder,
		Config:       config,
		IsActive:     true,
	}
	if req.IsRequired != nil {
		set.IsRequired = *req.IsRequired
	}
	if req.IsActive != nil {
		set.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, set, options); err != nil {
		return nil, err
	}
	log.Info().Str("option_set_id", set.ID.String()).Str("product_id", productID.String()).Int("options", len(set.Options)).Msg("option set created")
	return set, nil
}

// GetOptionSet returns an option set with its options.
func (s *OptionSetService) GetOptionSet(ctx context.Context, id uuid.UUID) (*models.OptionSet, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateOptionSet applies a partial update.
func (s *OptionSetService) UpdateOptionSet(ctx context.Context, id uuid.UUID, req *UpdateOptionSetRequest) (*models.OptionSet, error) {
	set, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if set.Name, err = validation.ValidateName("name", *req.Name, maxOptionSetNameLength); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		set.Description = req.Description
	}
	if req.IsRequired != nil {
		set.IsRequired = *req.IsRequired
	}
	if req.DisplayOrder != nil {
		set.DisplayOrder = *req.DisplayOrder
	}
	if req.Config != nil {
		if set.Config, err = validation.ObjectJSON("config", req.Config); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		set.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

// DeleteOptionSet removes an option set and its options.
func (s *OptionSetService) DeleteOptionSet(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("option_set_id", id.String()).Msg("option set deleted")
	return nil
}

// ListOptions returns the options of a set.
func (s *OptionSetService) ListOptions(ctx context.Context, setID uuid.UUID) ([]models.Option, error) {
	return s.repo.ListOptions(ctx, setID)
}

// CreateOption adds an option to a set.
func (s *OptionSetService) CreateOption(ctx context.Context, setID uuid.UUID, req *CreateOptionRequest) (*models.Option, error) {
	o, err := buildOption(req)
	if err != nil {
		return nil, err
	}
	o.OptionSetID = setID
	if err := s.repo.CreateOption(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetOption returns a single option.
func (s *OptionSetService) GetOption(ctx context.Context, id uuid.UUID) (*models.Option, error) {
	return s.repo.GetOption(ctx, id)
}

// UpdateOption applies a partial update.
func (s *OptionSetService) UpdateOption(ctx context.Context, id uuid.UUID, req *UpdateOptionRequest) (*models.Option, error) {
	o, err := s.repo.GetOption(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if o.Name, err = validation.ValidateName("name", *req.Name, maxOptionNameLength); err != nil {
			return nil, err
		}
	}
	if req.Value != nil {
		if o.Value, err = validation.ValidateName("value", *req.Value, maxOptionValueLength); err != nil {
			return nil, err
		}
	}
	if req.DisplayOrder != nil {
		o.DisplayOrder = *req.DisplayOrder
	}
	if req.AdditionalPrice != nil {
		o.AdditionalPrice = *req.AdditionalPrice
	}
	if req.IsDefault != nil {
		o.IsDefault = *req.IsDefault
	}
	if req.Config != nil {
		if o.Config, err = validation.ObjectJSON("config", req.Config); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateOption(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// DeleteOption removes a single option.
func (s *OptionSetService) DeleteOption(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteOption(ctx, id)
}

func buildOption(req *CreateOptionRequest) (*models.Option, error) {
	name, err := validation.ValidateName("name", req.Name, maxOptionNameLength)
	if err != nil {
		return nil, err
	}
	value, err := validation.ValidateName("value", req.Value, maxOptionValueLength)
	if err != nil {
		return nil, err
	}
	config, err := validation.ObjectJSON("config", req.Config)
	if err != nil {
		return nil, err
	}
	return &models.Option{
		Name:            name,
		Value:           value,
		DisplayOrder:    req.DisplayOrder,
		AdditionalPrice: req.AdditionalPrice,
		IsDefault:       req.IsDefault,
		Config:          config,
	}, nil
}
