package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicommerce/catalog-api/internal/utils"
)

func TestOptionSetService_CreateWithOptions(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	p := s.mustProduct(t, "Shirt", "20.00")

	set, err := s.optionSets.CreateOptionSet(ctx, p.ID, &CreateOptionSetRequest{
		Name: "Size",
		Options: []CreateOptionRequest{
			{Name: "Small", Value: "S", DisplayOrder: 0},
			{Name: "Large", Value: "L", DisplayOrder: 1, AdditionalPrice: 300},
		},
	})
	require.NoError(t, err)
	assert.True(t, set.IsRequired)
	assert.True(t, set.IsActive)
	assert.Len(t, set.Options, 2)

	sets, err := s.optionSets.ListOptionSets(ctx, p.ID, true)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "Large", sets[0].Options[1].Name)
}

func TestOptionSetService_Validation(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	p := s.mustProduct(t, "Shirt", "20.00")

	_, err := s.optionSets.CreateOptionSet(ctx, p.ID, &CreateOptionSetRequest{Name: strings.Repeat("x", 101)})
	assert.True(t, errors.Is(err, utils.ErrInvalidRequest))

	_, err = s.optionSets.CreateOptionSet(ctx, p.ID, &CreateOptionSetRequest{
		Name:    "Size",
		Options: []CreateOptionRequest{{Name: "Small", Value: ""}},
	})
	assert.True(t, errors.Is(err, utils.ErrInvalidRequest))

	_, err = s.optionSets.CreateOptionSet(ctx, uuid.New(), &CreateOptionSetRequest{Name: "Size"})
	assert.True(t, errors.Is(err, utils.ErrNotFound))

	// Nothing was stored by the failed attempts.
	sets, err := s.optionSets.ListOptionSets(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func TestOptionSetService_UpdateAndDelete(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	p := s.mustProduct(t, "Shirt", "20.00")
	set, err := s.optionSets.CreateOptionSet(ctx, p.ID, &CreateOptionSetRequest{Name: "Size"})
	require.NoError(t, err)

	name := "Fit"
	off := false
	updated, err := s.optionSets.UpdateOptionSet(ctx, set.ID, &UpdateOptionSetRequest{Name: &name, IsActive: &off})
	require.NoError(t, err)
	assert.Equal(t, "Fit", updated.Name)
	assert.False(t, updated.IsActive)

	active, err := s.optionSets.ListOptionSets(ctx, p.ID, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	opt, err := s.optionSets.CreateOption(ctx, set.ID, &CreateOptionRequest{Name: "Slim", Value: "slim"})
	require.NoError(t, err)
	price := 150
	opt, err = s.optionSets.UpdateOption(ctx, opt.ID, &UpdateOptionRequest{AdditionalPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, 150, opt.AdditionalPrice)
	assert.Equal(t, "Slim", opt.Name)

	options, err := s.optionSets.ListOptions(ctx, set.ID)
	require.NoError(t, err)
	assert.Len(t, options, 1)

	require.NoError(t, s.optionSets.DeleteOptionSet(ctx, set.ID))
	_, err = s.optionSets.GetOption(ctx, opt.ID)
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}
