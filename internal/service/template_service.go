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

// TemplateService validates template payloads and delegates the
// default-template bookkeeping to the repository.
type TemplateService struct {
	templateRepo *repository.TemplateRepository
	cache        ProductDetailCache
}

// NewTemplateService constructs a TemplateService. cache may be nil.
func NewTemplateService(templateRepo *repository.TemplateRepository, cache ProductDetailCache) *TemplateService {
	return &TemplateService{templateRepo: templateRepo, cache: cache}
}

// CreateTemplateRequest represents the request to create a template version.
type CreateTemplateRequest struct {
	ProductID          uuid.UUID          `json:"productId" binding:"required"`
	Version            *int               `json:"version"`
	Definition         types.JSONText     `json:"definition"`
	IsDefault          bool               `json:"isDefault"`
	CustomizationZones []models.ZoneInput `json:"customizationZones"`
}

// UpdateTemplateRequest represents a partial template update. A present
// customizationZones list replaces the template's zone records.
type UpdateTemplateRequest struct {
	Version            *int                `json:"version"`
	Definition         types.JSONText      `json:"definition"`
	IsDefault          *bool               `json:"isDefault"`
	CustomizationZones *[]models.ZoneInput `json:"customizationZones"`
}

// CreateTemplate validates the definition and zones, then stores the template.
func (s *TemplateService) CreateTemplate(ctx context.Context, req *CreateTemplateRequest) (*models.Template, error) {
	if req.Version != nil {
		if err := validation.ValidateVersion(*req.Version); err != nil {
			return nil, err
		}
	}
	def, err := validation.ParseDefinition(req.Definition)
	if err != nil {
		return nil, err
	}
	zones := req.CustomizationZones
	if len(zones) > 0 {
		if zones, err = validateZones(def, zones); err != nil {
			return nil, err
		}
	}

	t, err := s.templateRepo.Create(ctx, repository.CreateTemplateParams{
		ProductID:  req.ProductID,
		Version:    req.Version,
		Definition: req.Definition,
		IsDefault:  req.IsDefault,
		Zones:      zones,
	})
	if err != nil {
		return nil, err
	}

	invalidateProduct(ctx, s.cache, t.ProductID)
	log.Info().
		Str("template_id", t.ID.String()).
		Str("product_id", t.ProductID.String()).
		Int("version", t.Version).
		Bool("is_default", t.IsDefault).
		Msg("template created")
	return t, nil
}

// GetTemplate returns a template with its zones.
func (s *TemplateService) GetTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	return s.templateRepo.GetByID(ctx, id)
}

// ListTemplates returns a product's templates, newest version first.
func (s *TemplateService) ListTemplates(ctx context.Context, productID uuid.UUID) ([]models.Template, error) {
	return s.templateRepo.ListByProduct(ctx, productID)
}

// UpdateTemplate applies a partial update. Zone records, whether replaced
// or kept, must match the effective definition.
func (s *TemplateService) UpdateTemplate(ctx context.Context, id uuid.UUID, req *UpdateTemplateRequest) (*models.Template, error) {
	if req.Version != nil {
		if err := validation.ValidateVersion(*req.Version); err != nil {
			return nil, err
		}
	}

	replaced := req.CustomizationZones
	if req.Definition != nil || req.CustomizationZones != nil {
		current, err := s.templateRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		raw := current.Definition
		if req.Definition != nil {
			raw = req.Definition
		}
		def, err := validation.ParseDefinition(raw)
		if err != nil {
			return nil, err
		}

		zones := zoneInputs(current.Zones)
		if req.CustomizationZones != nil {
			zones = *req.CustomizationZones
		}
		if len(zones) > 0 {
			if zones, err = validateZones(def, zones); err != nil {
				return nil, err
			}
			if replaced != nil || keysRespelled(current.Zones, zones) {
				replaced = &zones
			}
		}
	}

	t, err := s.templateRepo.Update(ctx, id, repository.UpdateTemplateParams{
		Version:    req.Version,
		Definition: req.Definition,
		IsDefault:  req.IsDefault,
		Zones:      replaced,
	})
	if err != nil {
		return nil, err
	}

	invalidateProduct(ctx, s.cache, t.ProductID)
	log.Info().Str("template_id", t.ID.String()).Int("version", t.Version).Bool("is_default", t.IsDefault).Msg("template updated")
	return t, nil
}

// DeleteTemplate removes a template, promoting a successor when needed.
func (s *TemplateService) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	t, err := s.templateRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	invalidateProduct(ctx, s.cache, t.ProductID)
	log.Info().Str("template_id", id.String()).Str("product_id", t.ProductID.String()).Bool("was_default", t.IsDefault).Msg("template deleted")
	return nil
}

// validateZones checks zone records against def and returns them with keys
// spelled as the definition spells them, which is the form that is stored.
func validateZones(def *models.TemplateDefinition, zones []models.ZoneInput) ([]models.ZoneInput, error) {
	if err := validation.ValidateZoneInputs(zones); err != nil {
		return nil, err
	}
	if err := validation.CheckZoneKeys(def, zones); err != nil {
		return nil, err
	}
	return validation.CanonicalZoneKeys(def, zones), nil
}

// keysRespelled reports whether a new definition spells a kept zone key
// differently, in which case the stored zones are rewritten.
func keysRespelled(stored []models.CustomizationZone, zones []models.ZoneInput) bool {
	for i := range stored {
		if stored[i].Key != zones[i].Key {
			return true
		}
	}
	return false
}

func zoneInputs(zones []models.CustomizationZone) []models.ZoneInput {
	out := make([]models.ZoneInput, len(zones))
	for i, z := range zones {
		idx := z.OrderIndex
		out[i] = models.ZoneInput{Key: z.Key, Type: z.Type, Config: z.Config, OrderIndex: &idx}
	}
	return out
}
