package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicommerce/catalog-api/internal/models"
	"github.com/chicommerce/catalog-api/internal/utils"
)

func TestTemplateService_CreateTemplate(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	p := s.mustProduct(t, "Shirt", "20.00")

	tpl, err := s.templates.CreateTemplate(ctx, &CreateTemplateRequest{
		ProductID:  p.ID,
		Definition: textDefinition("front", "back"),
		CustomizationZones: []models.ZoneInput{
			{Key: "front", Type: models.ZoneTypeText},
			{Key: "back", Type: models.ZoneTypeText},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tpl.Version)
	assert.True(t, tpl.IsDefault)
	require.Len(t, tpl.Zones, 2)
	assert.Equal(t, "front", tpl.Zones[0].Key)
	assert.Contains(t, s.cache.invalidated, p.ID)

	// Zones may be omitted entirely.
	tpl, err = s.templates.CreateTemplate(ctx, &CreateTemplateRequest{ProductID: p.ID, Definition: textDefinition("front")})
	require.NoError(t, err)
	assert.Equal(t, 2, tpl.Version)
	assert.False(t, tpl.IsDefault)
}

func TestTemplateService_CreateTemplateRejects(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	p := s.mustProduct(t, "Shirt", "20.00")
	zero := 0

	tests := []struct {
		name string
		req  CreateTemplateRequest
		want error
	}{
		{
			name: "empty definition",
			req:  CreateTemplateRequest{ProductID: p.ID, Definition: types.JSONText(`{}`)},
			want: utils.ErrInvalidDefinition,
		},
		{
			name: "zero version",
			req:  CreateTemplateRequest{ProductID: p.ID, Version: &zero, Definition: textDefinition("a")},
			want: utils.ErrInvalidRequest,
		},
		{
			name: "zone mismatch",
			req: CreateTemplateRequest{
				ProductID:          p.ID,
				Definition:         textDefinition("a", "b"),
				CustomizationZones: []models.ZoneInput{{Key: "a", Type: models.ZoneTypeText}, {Key: "c", Type: models.ZoneTypeText}},
			},
			want: utils.ErrZoneMismatch,
		},
		{
			name: "bad zone type",
			req: CreateTemplateRequest{
				ProductID:          p.ID,
				Definition:         textDefinition("a"),
				CustomizationZones: []models.ZoneInput{{Key: "a", Type: "hologram"}},
			},
			want: utils.ErrInvalidDefinition,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.templates.CreateTemplate(ctx, &tt.req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	templates, err := s.templates.ListTemplates(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestTemplateService_UpdateChecksEffectiveDefinition(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	p := s.mustProduct(t, "Shirt", "20.00")
	tpl, err := s.templates.CreateTemplate(ctx, &CreateTemplateRequest{
		ProductID:          p.ID,
		Definition:         textDefinition("front"),
		CustomizationZones: []models.ZoneInput{{Key: "front", Type: models.ZoneTypeText}},
	})
	require.NoError(t, err)

	// A new definition that no longer matches the stored zones is rejected.
	_, err = s.templates.UpdateTemplate(ctx, tpl.ID, &UpdateTemplateRequest{Definition: textDefinition("sleeve")})
	var mismatch *utils.ZoneMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, []string{"sleeve"}, mismatch.Missing)
	assert.Equal(t, []string{"front"}, mismatch.Extra)

	zones := []models.ZoneInput{{Key: "sleeve", Type: models.ZoneTypeText}}
	updated, err := s.templates.UpdateTemplate(ctx, tpl.ID, &UpdateTemplateRequest{
		Definition:         textDefinition("sleeve"),
		CustomizationZones: &zones,
	})
	require.NoError(t, err)
	require.Len(t, updated.Zones, 1)
	assert.Equal(t, "sleeve", updated.Zones[0].Key)

	off := false
	_, err = s.templates.UpdateTemplate(ctx, tpl.ID, &UpdateTemplateRequest{IsDefault: &off})
	assert.True(t, errors.Is(err, utils.ErrLastDefaultRemoval))
}

func TestTemplateService_DeleteTemplate(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	p := s.mustProduct(t, "Shirt", "20.00")
	v1, err := s.templates.CreateTemplate(ctx, &CreateTemplateRequest{ProductID: p.ID, Definition: textDefinition("a")})
	require.NoError(t, err)
	v2, err := s.templates.CreateTemplate(ctx, &CreateTemplateRequest{ProductID: p.ID, Definition: textDefinition("a")})
	require.NoError(t, err)

	require.NoError(t, s.templates.DeleteTemplate(ctx, v1.ID))
	promoted, err := s.templates.GetTemplate(ctx, v2.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsDefault)

	err = s.templates.DeleteTemplate(ctx, v2.ID)
	assert.True(t, errors.Is(err, utils.ErrLastTemplateRemoval))
}

func TestTemplateService_ZoneKeysStoredAsDefined(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	p := s.mustProduct(t, "Shirt", "20.00")

	tpl, err := s.templates.CreateTemplate(ctx, &CreateTemplateRequest{
		ProductID:  p.ID,
		Definition: types.JSONText(`{"zones": {"front": {"type": "text"}, "caf\u00e9": {"type": "text"}}}`),
		CustomizationZones: []models.ZoneInput{
			{Key: " front ", Type: models.ZoneTypeText},
			{Key: "cafe\u0301", Type: models.ZoneTypeText},
		},
	})
	require.NoError(t, err)

	stored, err := s.templates.GetTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	keys := map[string]bool{}
	for _, z := range stored.Zones {
		keys[z.Key] = true
	}
	assert.Equal(t, map[string]bool{"front": true, "caf\u00e9": true}, keys)

	zones := []models.ZoneInput{{Key: "\tfront", Type: models.ZoneTypeText}, {Key: "cafe\u0301 ", Type: models.ZoneTypeText}}
	_, err = s.templates.UpdateTemplate(ctx, tpl.ID, &UpdateTemplateRequest{CustomizationZones: &zones})
	require.NoError(t, err)

	stored, err = s.templates.GetTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	require.Len(t, stored.Zones, 2)
	for _, z := range stored.Zones {
		assert.Contains(t, []string{"front", "caf\u00e9"}, z.Key)
	}
}
