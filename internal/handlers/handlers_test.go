package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"variations-service/internal/middleware"
	"variations-service/internal/models"
	"variations-service/internal/services"
	"variations-service/internal/variations"
)

type MockVariationService struct {
	mock.Mock
}

var _ VariationService = (*MockVariationService)(nil)

func (m *MockVariationService) CreateProduct(ctx context.Context, tenantID, actorID string, req models.CreateProductRequest) (*models.Product, error) {
	args := m.Called(tenantID, actorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockVariationService) GetProduct(ctx context.Context, tenantID string, productID uuid.UUID) (*models.Product, error) {
	args := m.Called(tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockVariationService) ListProducts(ctx context.Context, tenantID string, req models.ListProductsRequest) ([]models.Product, int64, models.ListProductsRequest, error) {
	args := m.Called(tenantID, req)
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Get(2).(models.ListProductsRequest), args.Error(3)
}

func (m *MockVariationService) UpdateProduct(ctx context.Context, tenantID string, productID uuid.UUID, req models.UpdateProductRequest) (*models.Product, error) {
	args := m.Called(tenantID, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockVariationService) DeleteProduct(ctx context.Context, tenantID string, productID uuid.UUID) error {
	return m.Called(tenantID, productID).Error(0)
}

func (m *MockVariationService) CreateVariationType(ctx context.Context, tenantID, actorID string, productID uuid.UUID, req models.CreateVariationTypeRequest) (*models.VariationType, error) {
	args := m.Called(tenantID, actorID, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VariationType), args.Error(1)
}

func (m *MockVariationService) UpdateVariationType(ctx context.Context, tenantID, actorID string, productID, typeID uuid.UUID, req models.UpdateVariationTypeRequest) (*models.VariationType, error) {
	args := m.Called(tenantID, actorID, productID, typeID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VariationType), args.Error(1)
}

func (m *MockVariationService) DeleteVariationType(ctx context.Context, tenantID, actorID string, productID, typeID uuid.UUID) error {
	return m.Called(tenantID, actorID, productID, typeID).Error(0)
}

func (m *MockVariationService) CreateVariationOption(ctx context.Context, tenantID, actorID string, productID, typeID uuid.UUID, req models.VariationOptionRequest) (*models.VariationOption, error) {
	args := m.Called(tenantID, actorID, productID, typeID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VariationOption), args.Error(1)
}

func (m *MockVariationService) UpdateVariationOption(ctx context.Context, tenantID, actorID string, productID, typeID, optionID uuid.UUID, req models.VariationOptionRequest) (*models.VariationOption, error) {
	args := m.Called(tenantID, actorID, productID, typeID, optionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VariationOption), args.Error(1)
}

func (m *MockVariationService) DeleteVariationOption(ctx context.Context, tenantID, actorID string, productID, typeID, optionID uuid.UUID) error {
	return m.Called(tenantID, actorID, productID, typeID, optionID).Error(0)
}

func (m *MockVariationService) GetVariationGrid(ctx context.Context, tenantID string, productID uuid.UUID) (*services.VariationGrid, error) {
	args := m.Called(tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.VariationGrid), args.Error(1)
}

func (m *MockVariationService) SaveVariations(ctx context.Context, tenantID, actorID string, productID uuid.UUID, rows []models.VariationRow) (*services.SaveResult, error) {
	args := m.Called(tenantID, actorID, productID, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SaveResult), args.Error(1)
}

func (m *MockVariationService) ExportVariationSheet(ctx context.Context, tenantID string, productID uuid.UUID) ([]byte, string, error) {
	args := m.Called(tenantID, productID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockVariationService) ImportVariationSheet(ctx context.Context, tenantID, actorID string, productID uuid.UUID, r io.Reader) (*models.ImportResult, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(tenantID, actorID, productID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportResult), args.Error(1)
}

func (m *MockVariationService) ResolveSelection(ctx context.Context, tenantID string, productID uuid.UUID, selection variations.Selection) (*variations.Resolution, error) {
	args := m.Called(tenantID, productID, selection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*variations.Resolution), args.Error(1)
}

func (m *MockVariationService) GetStorefrontProduct(ctx context.Context, tenantID string, productID uuid.UUID, requested variations.Selection) (*services.StorefrontProduct, error) {
	args := m.Called(tenantID, productID, requested)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.StorefrontProduct), args.Error(1)
}

func (m *MockVariationService) QuoteCartLine(ctx context.Context, tenantID string, productID uuid.UUID, selection variations.Selection, quantity int) (*services.CartQuote, error) {
	args := m.Called(tenantID, productID, selection, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CartQuote), args.Error(1)
}

const (
	testTenant = "tenant-1"
	testUser   = "user-1"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter mounts the handlers the way main does, with fixed auth context
func newTestRouter(svc VariationService) *gin.Engine {
	router := gin.New()
	products := NewProductsHandler(svc)
	variationsHandler := NewVariationsHandler(svc)
	storefront := NewStorefrontHandler(svc)

	api := router.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set("tenant_id", testTenant)
		c.Set("user_id", testUser)
	})
	api.GET("/products", products.GetProducts)
	api.POST("/products", products.CreateProduct)
	api.GET("/products/:id", products.GetProduct)
	api.PUT("/products/:id", products.UpdateProduct)
	api.DELETE("/products/:id", products.DeleteProduct)
	api.POST("/products/:id/variation-types", variationsHandler.CreateVariationType)
	api.DELETE("/products/:id/variation-types/:typeId/options/:optionId", variationsHandler.DeleteVariationOption)
	api.GET("/products/:id/variations", variationsHandler.GetVariations)
	api.PUT("/products/:id/variations", variationsHandler.SaveVariations)
	api.GET("/products/:id/variations/export", variationsHandler.ExportVariations)
	api.POST("/products/:id/variations/import", variationsHandler.ImportVariations)

	sf := router.Group("/api/v1/storefront")
	sf.Use(middleware.TenantMiddleware())
	sf.GET("/products/:id", storefront.GetProduct)
	sf.POST("/products/:id/resolve", storefront.ResolveSelection)
	sf.POST("/products/:id/cart-quote", storefront.QuoteCartLine)
	return router
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, _ := json.Marshal(b)
			reader = bytes.NewBuffer(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", testTenant)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	return resp
}

func TestCreateProduct(t *testing.T) {
	svc := new(MockVariationService)
	router := newTestRouter(svc)
	productID := uuid.New()

	svc.On("CreateProduct", testTenant, testUser, mock.MatchedBy(func(req models.CreateProductRequest) bool {
		return req.Name == "Tee" && req.Price.Equal(decimal.RequireFromString("19.99"))
	})).Return(&models.Product{ID: productID, Name: "Tee"}, nil)

	w := doRequest(router, http.MethodPost, "/api/v1/products", `{"name":"Tee","price":"19.99"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp models.ProductResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, productID, resp.Data.ID)
	svc.AssertExpectations(t)
}

func TestCreateProduct_MissingName(t *testing.T) {
	svc := new(MockVariationService)
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodPost, "/api/v1/products", `{"price":"1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Error.Code)
	svc.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetProducts_Pagination(t *testing.T) {
	svc := new(MockVariationService)
	router := newTestRouter(svc)
	status := models.ProductStatusPublished

	svc.On("ListProducts", testTenant, models.ListProductsRequest{Page: 2, Limit: 10, Status: &status}).
		Return([]models.Product{{Name: "Tee"}}, int64(25), models.ListProductsRequest{Page: 2, Limit: 10}, nil)

	w := doRequest(router, http.MethodGet, "/api/v1/products?page=2&limit=10&status=PUBLISHED", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ProductListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasNext)
	assert.True(t, resp.Pagination.HasPrevious)
}

func TestErrorMapping(t *testing.T) {
	productID := uuid.New()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", services.ErrProductNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped not found", fmt.Errorf("loading: %w", services.ErrVariationTypeNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"unpublished", services.ErrProductNotPublished, http.StatusNotFound, "NOT_FOUND"},
		{"invalid", fmt.Errorf("%w: name is required", services.ErrInvalidInput), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"limit", services.ErrLimitExceeded, http.StatusBadRequest, "LIMIT_EXCEEDED"},
		{"save failed", fmt.Errorf("%w: deadlock", services.ErrSaveFailed), http.StatusInternalServerError, "SAVE_FAILED"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "FETCH_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockVariationService)
			router := newTestRouter(svc)
			svc.On("GetVariationGrid", testTenant, productID).Return(nil, tt.err)

			w := doRequest(router, http.MethodGet, "/api/v1/products/"+productID.String()+"/variations", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, resp.Error.Message, "deadlock")
			}
		})
	}
}

func TestInvalidPathID(t *testing.T) {
	svc := new(MockVariationService)
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/v1/products/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id", decodeError(t, w).Error.Field)
}

func TestSaveVariations(t *testing.T) {
	svc := new(MockVariationService)
	router := newTestRouter(svc)
	productID, axisID, optionID := uuid.New(), uuid.New(), uuid.New()

	body := fmt.Sprintf(`{"variations":[
		{"options":{"%s":{"id":"%s","name":"Red"}},"price":"12.50","quantity":null},
		{"variation_type_%s":{"name":"Blue"}}
	]}`, axisID, optionID, axisID)

	svc.On("SaveVariations", testTenant, testUser, productID, mock.MatchedBy(func(rows []models.VariationRow) bool {
		if len(rows) != 2 {
			return false
		}
		first, second := rows[0], rows[1]
		return *first.Options[axisID].ID == optionID &&
			first.Price.Present && first.Price.Value.Equal(decimal.RequireFromString("12.5")) &&
			first.Quantity.Present && first.Quantity.Value == nil &&
			second.Options[axisID].Name == "Blue" && !second.Price.Present
	})).Return(&services.SaveResult{Saved: 2, Skipped: []variations.SkippedRow{}}, nil)

	w := doRequest(router, http.MethodPut, "/api/v1/products/"+productID.String()+"/variations", body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"saved":2,"skipped":[]}}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestSaveVariations_BlankOptionIDStillSaves(t *testing.T) {
	svc := new(MockVariationService)
	router := newTestRouter(svc)
	productID, axisID, optionID := uuid.New(), uuid.New(), uuid.New()

	body := fmt.Sprintf(`{"variations":[
		{"variation_type_%s":{"id":"%s","name":"Red"},"quantity":3},
		{"variation_type_%s":{"id":"","name":"Blue"},"quantity":5}
	]}`, axisID, optionID, axisID)

	svc.On("SaveVariations", testTenant, testUser, productID, mock.MatchedBy(func(rows []models.VariationRow) bool {
		return len(rows) == 2 &&
			*rows[0].Options[axisID].ID == optionID &&
			rows[1].Options[axisID].ID == nil && rows[1].Options[axisID].Name == "Blue" &&
			len(rows[1].Malformed) == 0
	})).Return(&services.SaveResult{Saved: 2, Skipped: []variations.SkippedRow{}}, nil)

	w := doRequest(router, http.MethodPut, "/api/v1/products/"+productID.String()+"/variations", body)

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestCreateVariationType(t *testing.T) {
	svc := new(MockVariationService)
	router := newTestRouter(svc)
	productID := uuid.New()

	svc.On("CreateVariationType", testTenant, testUser, productID, mock.MatchedBy(func(req models.CreateVariationTypeRequest) bool {
		return req.Name == "Size" && req.Kind == models.DisplayKindRadio && len(req.Options) == 2
	})).Return(&models.VariationType{ID: uuid.New(), Name: "Size"}, nil)

	w := doRequest(router, http.MethodPost, "/api/v1/products/"+productID.String()+"/variation-types",
		`{"name":"Size","type":"Radio","options":[{"name":"S"},{"name":"M"}]}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestDeleteVariationOption(t *testing.T) {
	svc := new(MockVariationService)
	router := newTestRouter(svc)
	productID, typeID, optionID := uuid.New(), uuid.New(), uuid.New()

	svc.On("DeleteVariationOption", testTenant, testUser, productID, typeID, optionID).Return(services.ErrOptionNotFound)

	w := doRequest(router, http.MethodDelete,
		fmt.Sprintf("/api/v1/products/%s/variation-types/%s/options/%s", productID, typeID, optionID), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportVariations(t *testing.T) {
	svc := new(MockVariationService)
	router := newTestRouter(svc)
	productID := uuid.New()

	svc.On("ExportVariationSheet", testTenant, productID).Return([]byte("xlsx-bytes"), "tee-variations.xlsx", nil)

	w := doRequest(router, http.MethodGet, "/api/v1/products/"+productID.String()+"/variations/export", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=tee-variations.xlsx", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "xlsx-bytes", w.Body.String())
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestImportVariations(t *testing.T) {
	productID := uuid.New()
	path := "/api/v1/products/" + productID.String() + "/variations/import"

	t.Run("xlsx upload", func(t *testing.T) {
		svc := new(MockVariationService)
		router := newTestRouter(svc)
		svc.On("ImportVariationSheet", testTenant, testUser, productID, []byte("sheet")).
			Return(&models.ImportResult{Success: true, TotalRows: 4, SavedCount: 4}, nil)

		body, contentType := multipartUpload(t, "grid.XLSX", []byte("sheet"))
		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("wrong extension", func(t *testing.T) {
		svc := new(MockVariationService)
		router := newTestRouter(svc)

		body, contentType := multipartUpload(t, "grid.csv", []byte("a,b"))
		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_FORMAT", decodeError(t, w).Error.Code)
	})

	t.Run("no file", func(t *testing.T) {
		svc := new(MockVariationService)
		router := newTestRouter(svc)

		w := doRequest(router, http.MethodPost, path, `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, w).Error.Code)
	})
}

func TestStorefrontGetProduct_ParsesOptions(t *testing.T) {
	svc := new(MockVariationService)
	router := newTestRouter(svc)
	productID, axisID, optionID := uuid.New(), uuid.New(), uuid.New()

	svc.On("GetStorefrontProduct", testTenant, productID, variations.Selection{axisID: optionID}).
		Return(&services.StorefrontProduct{Product: &models.Product{ID: productID}}, nil)

	path := fmt.Sprintf("/api/v1/storefront/products/%s?options[%s]=%s&options[bogus]=x", productID, axisID, optionID)
	w := doRequest(router, http.MethodGet, path, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestStorefront_RequiresTenant(t *testing.T) {
	svc := new(MockVariationService)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/storefront/products/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResolveSelection(t *testing.T) {
	svc := new(MockVariationService)
	router := newTestRouter(svc)
	productID, axisID, optionID := uuid.New(), uuid.New(), uuid.New()

	svc.On("ResolveSelection", testTenant, productID, variations.Selection{axisID: optionID}).
		Return(&variations.Resolution{Price: decimal.RequireFromString("25"), Quantity: 3, InStock: true, LowStock: true, MaxOrderQuantity: 3}, nil)

	w := doRequest(router, http.MethodPost, "/api/v1/storefront/products/"+productID.String()+"/resolve",
		fmt.Sprintf(`{"options":{"%s":"%s"}}`, axisID, optionID))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data variations.Resolution `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.MaxOrderQuantity)
	assert.True(t, resp.Data.LowStock)
}

func TestQuoteCartLine(t *testing.T) {
	productID, axisID, optionID := uuid.New(), uuid.New(), uuid.New()
	path := "/api/v1/storefront/products/" + productID.String() + "/cart-quote"
	body := fmt.Sprintf(`{"option_ids":{"%s":"%s"},"quantity":2}`, axisID, optionID)

	t.Run("priced", func(t *testing.T) {
		svc := new(MockVariationService)
		router := newTestRouter(svc)
		svc.On("QuoteCartLine", testTenant, productID, variations.Selection{axisID: optionID}, 2).
			Return(&services.CartQuote{ProductID: productID, Quantity: 2, LineTotal: decimal.RequireFromString("50")}, nil)

		w := doRequest(router, http.MethodPost, path, body)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not enough stock", func(t *testing.T) {
		svc := new(MockVariationService)
		router := newTestRouter(svc)
		svc.On("QuoteCartLine", testTenant, productID, variations.Selection{axisID: optionID}, 2).
			Return(nil, fmt.Errorf("%w: 2 requested, at most 1", services.ErrQuantityUnavailable))

		w := doRequest(router, http.MethodPost, path, body)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "QUANTITY_UNAVAILABLE", decodeError(t, w).Error.Code)
	})

	t.Run("incomplete", func(t *testing.T) {
		svc := new(MockVariationService)
		router := newTestRouter(svc)
		svc.On("QuoteCartLine", testTenant, productID, variations.Selection{axisID: optionID}, 2).
			Return(nil, services.ErrIncompleteSelection)

		w := doRequest(router, http.MethodPost, path, body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INCOMPLETE_SELECTION", decodeError(t, w).Error.Code)
	})

	t.Run("zero quantity", func(t *testing.T) {
		svc := new(MockVariationService)
		router := newTestRouter(svc)

		w := doRequest(router, http.MethodPost, path, fmt.Sprintf(`{"option_ids":{"%s":"%s"},"quantity":0}`, axisID, optionID))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "QuoteCartLine", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	router := gin.New()
	healthy := NewHealthHandler(stubPinger{})
	down := NewHealthHandler(stubPinger{err: errors.New("database: connection refused")})
	router.GET("/health", healthy.HealthCheck)
	router.GET("/ready", healthy.ReadinessCheck)
	router.GET("/ready-down", down.ReadinessCheck)

	for path, want := range map[string]int{"/health": http.StatusOK, "/ready": http.StatusOK, "/ready-down": http.StatusServiceUnavailable} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}
