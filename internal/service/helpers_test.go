package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/chicommerce/catalog-api/internal/models"
	"github.com/chicommerce/catalog-api/internal/repository"
	"github.com/chicommerce/catalog-api/internal/testutil"
	"github.com/chicommerce/catalog-api/internal/utils"
)

// memCache is an in-process ProductDetailCache that records invalidations.
type memCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID]*models.ProductDetail
	invalidated []uuid.UUID
	gets        int
}

func newMemCache() *memCache {
	return &memCache{entries: map[uuid.UUID]*models.ProductDetail{}}
}

func (c *memCache) Get(_ context.Context, id uuid.UUID) (*models.ProductDetail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if d, ok := c.entries[id]; ok {
		return d, nil
	}
	return nil, utils.ErrNotFound
}

func (c *memCache) Set(_ context.Context, d *models.ProductDetail) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[d.ID] = d
	return nil
}

func (c *memCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

func (c *memCache) cached(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

type services struct {
	db            *sqlx.DB
	cache         *memCache
	products      *ProductService
	templates     *TemplateService
	optionSets    *OptionSetService
	carts         *CartService
	customization *CustomizationService
	export        *ExportService
	seed          *SeedService
}

func newServices(t *testing.T) *services {
	t.Helper()
	db := testutil.NewDB(t)
	c := newMemCache()

	productRepo := repository.NewProductRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	optionSetRepo := repository.NewOptionSetRepository(db)

	s := &services{
		db:            db,
		cache:         c,
		products:      NewProductService(productRepo, templateRepo, c),
		templates:     NewTemplateService(templateRepo, c),
		optionSets:    NewOptionSetService(optionSetRepo),
		carts:         NewCartService(repository.NewCartRepository(db)),
		customization: NewCustomizationService(repository.NewCustomizationSessionRepository(db)),
		export:        NewExportService(productRepo),
	}
	s.seed = NewSeedService(s.products, s.templates, s.optionSets)
	return s
}

func (s *services) mustProduct(t *testing.T, name, price string) *models.Product {
	t.Helper()
	p := decimal.RequireFromString(price)
	product, err := s.products.CreateProduct(context.Background(), &CreateProductRequest{Name: name, BasePrice: &p})
	require.NoError(t, err)
	return product
}

func textDefinition(keys ...string) types.JSONText {
	out := `{"zones": {`
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += `"` + k + `": {"type": "text"}`
	}
	return types.JSONText(out + `}}`)
}
