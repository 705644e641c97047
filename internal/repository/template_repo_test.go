package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicommerce/catalog-api/internal/models"
	"github.com/chicommerce/catalog-api/internal/testutil"
	"github.com/chicommerce/catalog-api/internal/utils"
)

func defaults(t *testing.T, repo *TemplateRepository, productID uuid.UUID) map[int]bool {
	t.Helper()
	templates, err := repo.ListByProduct(context.Background(), productID)
	require.NoError(t, err)
	out := make(map[int]bool, len(templates))
	for _, tpl := range templates {
		out[tpl.Version] = tpl.IsDefault
	}
	return out
}

func TestTemplateRepository_FirstTemplateBecomesDefault(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTemplateRepository(db)
	p := createProduct(t, db, "Mug")

	first := createTemplate(t, db, p, 1, false)
	assert.True(t, first.IsDefault)

	second := createTemplate(t, db, p, 2, false)
	assert.False(t, second.IsDefault)
	assert.Equal(t, map[int]bool{1: true, 2: false}, defaults(t, repo, p.ID))
}

func TestTemplateRepository_CreateDefaultMovesFlag(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTemplateRepository(db)
	p := createProduct(t, db, "Mug")

	createTemplate(t, db, p, 1, true)
	createTemplate(t, db, p, 2, true)

	assert.Equal(t, map[int]bool{1: false, 2: true}, defaults(t, repo, p.ID))

	def, err := repo.GetDefault(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, def.Version)
	require.Len(t, def.Zones, 1)
	assert.Equal(t, "front", def.Zones[0].Key)
}

func TestTemplateRepository_CreateAssignsNextVersion(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTemplateRepository(db)
	p := createProduct(t, db, "Mug")
	createTemplate(t, db, p, 3, true)

	tpl, err := repo.Create(context.Background(), CreateTemplateParams{
		ProductID:  p.ID,
		Definition: types.JSONText(`{"zones": {}}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, tpl.Version)
	assert.Empty(t, tpl.Zones)
}

func TestTemplateRepository_DuplicateVersion(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTemplateRepository(db)
	p := createProduct(t, db, "Mug")
	createTemplate(t, db, p, 1, true)
	v2 := createTemplate(t, db, p, 2, false)

	version := 1
	_, err := repo.Create(context.Background(), CreateTemplateParams{
		ProductID: p.ID, Version: &version, Definition: types.JSONText(`{"zones": {}}`),
	})
	assert.True(t, errors.Is(err, utils.ErrDuplicateVersion))

	_, err = repo.Update(context.Background(), v2.ID, UpdateTemplateParams{Version: &version})
	assert.True(t, errors.Is(err, utils.ErrDuplicateVersion))

	// Same product, other product's versions are independent.
	other := createProduct(t, db, "Tote")
	createTemplate(t, db, other, 1, true)
}

func TestTemplateRepository_CreateUnknownProduct(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := NewTemplateRepository(db).Create(context.Background(), CreateTemplateParams{
		ProductID: uuid.New(), Definition: types.JSONText(`{"zones": {}}`),
	})
	var nf *utils.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "product", nf.Entity)
}

func TestTemplateRepository_UpdateDefaultFlag(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()
	p := createProduct(t, db, "Mug")
	v1 := createTemplate(t, db, p, 1, true)
	v2 := createTemplate(t, db, p, 2, false)

	off := false
	_, err := repo.Update(ctx, v1.ID, UpdateTemplateParams{IsDefault: &off})
	assert.True(t, errors.Is(err, utils.ErrLastDefaultRemoval))
	assert.Equal(t, map[int]bool{1: true, 2: false}, defaults(t, repo, p.ID))

	on := true
	updated, err := repo.Update(ctx, v2.ID, UpdateTemplateParams{IsDefault: &on})
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)
	assert.Equal(t, map[int]bool{1: false, 2: true}, defaults(t, repo, p.ID))

	// Setting the flag on the current default is a no-op.
	_, err = repo.Update(ctx, v2.ID, UpdateTemplateParams{IsDefault: &on})
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: false, 2: true}, defaults(t, repo, p.ID))
}

func TestTemplateRepository_UpdateReplacesZones(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()
	p := createProduct(t, db, "Mug")
	tpl := createTemplate(t, db, p, 1, true)

	zones := []models.ZoneInput{
		{Key: "back", Type: models.ZoneTypeImage, OrderIndex: intPtr(1)},
		{Key: "front", Type: models.ZoneTypeText, OrderIndex: intPtr(0)},
	}
	updated, err := repo.Update(ctx, tpl.ID, UpdateTemplateParams{
		Definition: types.JSONText(`{"zones": {"front": {"type": "text"}, "back": {"type": "image"}}}`),
		Zones:      &zones,
	})
	require.NoError(t, err)
	require.Len(t, updated.Zones, 2)
	assert.Equal(t, "front", updated.Zones[0].Key)
	assert.Equal(t, "back", updated.Zones[1].Key)

	got, err := repo.GetByID(ctx, tpl.ID)
	require.NoError(t, err)
	require.Len(t, got.Zones, 2)
	assert.JSONEq(t, `{"zones": {"front": {"type": "text"}, "back": {"type": "image"}}}`, string(got.Definition))

	// Without Zones the existing records are returned untouched.
	v := 5
	got, err = repo.Update(ctx, tpl.ID, UpdateTemplateParams{Version: &v})
	require.NoError(t, err)
	assert.Equal(t, 5, got.Version)
	assert.Len(t, got.Zones, 2)
}

func TestTemplateRepository_DeletePromotesHighestVersion(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()
	p := createProduct(t, db, "Mug")
	v1 := createTemplate(t, db, p, 1, true)
	createTemplate(t, db, p, 2, false)
	createTemplate(t, db, p, 3, false)

	deleted, err := repo.Delete(ctx, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted.Version)
	assert.Equal(t, map[int]bool{2: false, 3: true}, defaults(t, repo, p.ID))
}

func TestTemplateRepository_DeleteLastTemplate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()
	p := createProduct(t, db, "Mug")
	v1 := createTemplate(t, db, p, 1, true)
	v2 := createTemplate(t, db, p, 2, false)

	_, err := repo.Delete(ctx, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{2: true}, defaults(t, repo, p.ID))

	_, err = repo.Delete(ctx, v2.ID)
	assert.True(t, errors.Is(err, utils.ErrLastTemplateRemoval))
	assert.Equal(t, map[int]bool{2: true}, defaults(t, repo, p.ID))

	kept, err := repo.GetByID(ctx, v2.ID)
	require.NoError(t, err)
	assert.True(t, kept.IsDefault)
	require.Len(t, kept.Zones, 1)
	assert.Equal(t, "front", kept.Zones[0].Key)
	assert.Equal(t, models.ZoneTypeText, kept.Zones[0].Type)

	_, err = repo.Delete(ctx, uuid.New())
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestTemplateRepository_DeleteNonDefaultKeepsDefault(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTemplateRepository(db)
	p := createProduct(t, db, "Mug")
	createTemplate(t, db, p, 1, true)
	v2 := createTemplate(t, db, p, 2, false)

	_, err := repo.Delete(context.Background(), v2.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true}, defaults(t, repo, p.ID))
}

func intPtr(i int) *int { return &i }
