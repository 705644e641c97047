package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/chicommerce/catalog-api/internal/config"
	"github.com/chicommerce/catalog-api/internal/middleware"
	"github.com/chicommerce/catalog-api/internal/repository"
	"github.com/chicommerce/catalog-api/internal/service"
	"github.com/chicommerce/catalog-api/internal/testutil"
)

const (
	testPrefix   = "/api/v1"
	testAdminKey = "test-admin-key"
	cookieName   = "session_id"
)

type testServer struct {
	t      *testing.T
	db     *sqlx.DB
	router *gin.Engine
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID  string `json:"requestId"`
		Pagination *struct {
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			TotalItems int `json:"totalItems"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	} `json:"meta"`
}

func newTestServer(t *testing.T, invalidKeyLimit int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)

	productRepo := repository.NewProductRepository(db)
	templateRepo := repository.NewTemplateRepository(db)

	productService := service.NewProductService(productRepo, templateRepo, nil)
	h := &Handlers{
		Health:        NewHealthHandler(repository.NewStatsRepository(db), nil, testPrefix),
		Product:       NewProductHandler(productService, service.NewExportService(productRepo)),
		Template:      NewTemplateHandler(service.NewTemplateService(templateRepo, nil)),
		OptionSet:     NewOptionSetHandler(service.NewOptionSetService(repository.NewOptionSetRepository(db))),
		Cart:          NewCartHandler(service.NewCartService(repository.NewCartRepository(db))),
		Customization: NewCustomizationHandler(service.NewCustomizationService(repository.NewCustomizationSessionRepository(db))),
	}
	mw := &Middlewares{
		Admin: middleware.NewAdminAuthMiddleware(testAdminKey, invalidKeyLimit),
		Session: middleware.NewSessionMiddleware(config.SessionConfig{
			Secret:     "test-secret",
			CookieName: cookieName,
			TTL:        time.Hour,
		}),
	}

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	SetupRoutes(router, testPrefix, h, mw)
	return &testServer{t: t, db: db, router: router}
}

type requestOption func(*http.Request)

func asAdmin(r *http.Request) { r.Header.Set(middleware.APIKeyHeader, testAdminKey) }

func withKey(key string) requestOption {
	return func(r *http.Request) { r.Header.Set(middleware.APIKeyHeader, key) }
}

func withCookie(c *http.Cookie) requestOption {
	return func(r *http.Request) { r.AddCookie(c) }
}

func (s *testServer) do(method, path string, body interface{}, opts ...requestOption) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(s.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, testPrefix+path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) envelope {
	t.Helper()
	env := decode(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
	return env
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatalf("response carries no %s cookie", cookieName)
	return nil
}

// createProduct creates a product through the API and returns its id.
func (s *testServer) createProduct(name, price string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/products", map[string]interface{}{"name": name, "basePrice": price}, asAdmin)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var p struct {
		ID string `json:"id"`
	}
	decodeData(s.t, rec, &p)
	return p.ID
}

// createTemplate creates a template with a single text zone "front".
func (s *testServer) createTemplate(productID string, version int, isDefault bool) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/templates", map[string]interface{}{
		"productId":          productID,
		"version":            version,
		"isDefault":          isDefault,
		"definition":         map[string]interface{}{"zones": map[string]interface{}{"front": map[string]string{"type": "text"}}},
		"customizationZones": []map[string]interface{}{{"key": "front", "type": "text"}},
	}, asAdmin)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var tpl struct {
		ID string `json:"id"`
	}
	decodeData(s.t, rec, &tpl)
	return tpl.ID
}
