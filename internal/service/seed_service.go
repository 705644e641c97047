package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/chicommerce/catalog-api/internal/models"
)

// SeedFile is the YAML fixture format loaded by `catalogctl seed`.
type SeedFile struct {
	Products []SeedProduct `yaml:"products"`
}

// SeedProduct is one product with its templates and option sets.
type SeedProduct struct {
	Name        string          `yaml:"name"`
	Description *string         `yaml:"description"`
	BasePrice   string          `yaml:"base_price"`
	Media       map[string]any  `yaml:"media"`
	IsActive    *bool           `yaml:"is_active"`
	Templates   []SeedTemplate  `yaml:"templates"`
	OptionSets  []SeedOptionSet `yaml:"option_sets"`
}

// SeedTemplate is a template version and its zone records.
type SeedTemplate struct {
	Version    *int           `yaml:"version"`
	IsDefault  bool           `yaml:"is_default"`
	Definition map[string]any `yaml:"definition"`
	Zones      []SeedZone     `yaml:"customization_zones"`
}

// SeedZone is a customization zone record.
type SeedZone struct {
	Key        string         `yaml:"key"`
	Type       string         `yaml:"type"`
	Config     map[string]any `yaml:"config"`
	OrderIndex *int           `yaml:"order_index"`
}

// SeedOptionSet is an option set with inline options.
type SeedOptionSet struct {
	Name         string         `yaml:"name"`
	Description  *string        `yaml:"description"`
	IsRequired   *bool          `yaml:"is_required"`
	DisplayOrder int            `yaml:"display_order"`
	Config       map[string]any `yaml:"config"`
	Options      []SeedOption   `yaml:"options"`
}

// SeedOption is a single option.
type SeedOption struct {
	Name            string         `yaml:"name"`
	Value           string         `yaml:"value"`
	DisplayOrder    int            `yaml:"display_order"`
	AdditionalPrice int            `yaml:"additional_price"`
	IsDefault       bool           `yaml:"is_default"`
	Config          map[string]any `yaml:"config"`
}

// SeedReport counts what a seed run created.
type SeedReport struct {
	Products   int
	Templates  int
	OptionSets int
	Options    int
}

// SeedService loads fixture catalogs through the regular services so every
// write goes through the same validation and default-template rules.
type SeedService struct {
	products   *ProductService
	templates  *TemplateService
	optionSets *OptionSetService
}

// NewSeedService constructs a SeedService.
func NewSeedService(products *ProductService, templates *TemplateService, optionSets *OptionSetService) *SeedService {
	return &SeedService{products: products, templates: templates, optionSets: optionSets}
}

// ParseSeed decodes a YAML seed document.
func ParseSeed(r io.Reader) (*SeedFile, error) {
	var f SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Apply creates every product in f. It stops at the first failure; rows
// created before the failure are kept.
func (s *SeedService) Apply(ctx context.Context, f *SeedFile) (*SeedReport, error) {
	report := &SeedReport{}
	for i := range f.Products {
		if err := s.applyProduct(ctx, &f.Products[i], report); err != nil {
			return report, fmt.Errorf("product %q: %w", f.Products[i].Name, err)
		}
	}
	log.Info().
		Int("products", report.Products).
		Int("templates", report.Templates).
		Int("option_sets", report.OptionSets).
		Int("options", report.Options).
		Msg("seed applied")
	return report, nil
}

func (s *SeedService) applyProduct(ctx context.Context, sp *SeedProduct, report *SeedReport) error {
	price, err := decimal.NewFromString(sp.BasePrice)
	if err != nil {
		return fmt.Errorf("base_price %q: %w", sp.BasePrice, err)
	}
	media, err := toJSONText(sp.Media)
	if err != nil {
		return err
	}

	product, err := s.products.CreateProduct(ctx, &CreateProductRequest{
		Name:        sp.Name,
		Description: sp.Description,
		BasePrice:   &price,
		Media:       media,
		IsActive:    sp.IsActive,
	})
	if err != nil {
		return err
	}
	report.Products++

	for i, st := range sp.Templates {
		definition, err := toJSONText(st.Definition)
		if err != nil {
			return err
		}
		zones := make([]models.ZoneInput, 0, len(st.Zones))
		for _, z := range st.Zones {
			config, err := toJSONText(z.Config)
			if err != nil {
				return err
			}
			zones = append(zones, models.ZoneInput{
				Key:        z.Key,
				Type:       models.ZoneType(z.Type),
				Config:     config,
				OrderIndex: z.OrderIndex,
			})
		}
		if _, err := s.templates.CreateTemplate(ctx, &CreateTemplateRequest{
			ProductID:          product.ID,
			Version:            st.Version,
			Definition:         definition,
			IsDefault:          st.IsDefault,
			CustomizationZones: zones,
		}); err != nil {
			return fmt.Errorf("template %d: %w", i+1, err)
		}
		report.Templates++
	}

	for _, so := range sp.OptionSets {
		config, err := toJSONText(so.Config)
		if err != nil {
			return err
		}
		req := &CreateOptionSetRequest{
			Name:         so.Name,
			Description:  so.Description,
			IsRequired:   so.IsRequired,
			DisplayOrder: so.DisplayOrder,
			Config:       config,
		}
		for _, o := range so.Options {
			oc, err := toJSONText(o.Config)
			if err != nil {
				return err
			}
			req.Options = append(req.Options, CreateOptionRequest{
				Name:            o.Name,
				Value:           o.Value,
				DisplayOrder:    o.DisplayOrder,
				AdditionalPrice: o.AdditionalPrice,
				IsDefault:       o.IsDefault,
				Config:          oc,
			})
		}
		set, err := s.optionSets.CreateOptionSet(ctx, product.ID, req)
		if err != nil {
			return fmt.Errorf("option set %q: %w", so.Name, err)
		}
		report.OptionSets++
		report.Options += len(set.Options)
	}
	return nil
}

// toJSONText re-encodes a YAML mapping as JSON. A nil map stays nil so the
// callers apply their own defaults.
func toJSONText(v map[string]any) (types.JSONText, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return types.JSONText(b), nil
}
