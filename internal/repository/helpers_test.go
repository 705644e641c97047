package repository

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/chicommerce/catalog-api/internal/models"
)

func createProduct(t *testing.T, db *sqlx.DB, name string) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:      name,
		BasePrice: decimal.RequireFromString("19.99"),
		Media:     types.JSONText(`{}`),
		IsActive:  true,
	}
	require.NoError(t, NewProductRepository(db).Create(context.Background(), p))
	return p
}

func createTemplate(t *testing.T, db *sqlx.DB, p *models.Product, version int, isDefault bool) *models.Template {
	t.Helper()
	tpl, err := NewTemplateRepository(db).Create(context.Background(), CreateTemplateParams{
		ProductID:  p.ID,
		Version:    &version,
		Definition: types.JSONText(`{"zones": {"front": {"type": "text"}}}`),
		IsDefault:  isDefault,
		Zones:      []models.ZoneInput{{Key: "front", Type: models.ZoneTypeText}},
	})
	require.NoError(t, err)
	return tpl
}
