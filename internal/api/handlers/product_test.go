package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/testutils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupProductTest() (*mocks.ProductRepository, *handlers.ProductHandler) {
	mockRepo := new(mocks.ProductRepository)
	handler := handlers.NewProductHandler(service.NewProductService(mockRepo))
	return mockRepo, handler
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder, data any) response.APIResponse {
	t.Helper()

	var raw struct {
		Success bool                    `json:"success"`
		Data    json.RawMessage         `json:"data"`
		Error   *response.ErrorResponse `json:"error"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &raw))

	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}

	return response.APIResponse{Success: raw.Success, Error: raw.Error}
}

func TestGetProduct(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockRepo, handler := setupProductTest()
		product := &models.Product{ID: 3, Name: "Smart Watch", Price: decimal.RequireFromString("199.99")}
		mockRepo.On("GetProductByID", mock.Anything, int64(3)).Return(product, nil).Once()

		req := testutils.CreateTestRequest(http.MethodGet, "/api/v1/products/3", nil, map[string]string{"id": "3"})
		recorder := httptest.NewRecorder()

		// Act
		handler.GetProduct()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
		var got models.Product
		resp := decodeResponse(t, recorder, &got)
		assert.True(t, resp.Success)
		assert.Equal(t, "Smart Watch", got.Name)
		assert.True(t, got.Price.Equal(product.Price))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Not found", func(t *testing.T) {
		mockRepo, handler := setupProductTest()
		mockRepo.On("GetProductByID", mock.Anything, int64(99)).Return(nil, repository.ErrProductNotFound).Once()

		req := testutils.CreateTestRequest(http.MethodGet, "/api/v1/products/99", nil, map[string]string{"id": "99"})
		recorder := httptest.NewRecorder()

		handler.GetProduct()(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		resp := decodeResponse(t, recorder, nil)
		assert.False(t, resp.Success)
		assert.Equal(t, appErrors.ErrCodeNotFound, resp.Error.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Invalid id", func(t *testing.T) {
		mockRepo, handler := setupProductTest()

		req := testutils.CreateTestRequest(http.MethodGet, "/api/v1/products/abc", nil, map[string]string{"id": "abc"})
		recorder := httptest.NewRecorder()

		handler.GetProduct()(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		resp := decodeResponse(t, recorder, nil)
		assert.Equal(t, appErrors.ErrCodeValidation, resp.Error.Code)
		mockRepo.AssertNotCalled(t, "GetProductByID", mock.Anything, mock.Anything)
	})
}

func TestListProducts(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockRepo, handler := setupProductTest()
		mockRepo.On("ListProducts", mock.Anything).Return(repository.DefaultProducts(), nil).Once()

		req := testutils.CreateTestRequest(http.MethodGet, "/api/v1/products", nil, nil)
		recorder := httptest.NewRecorder()

		handler.ListProducts()(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		var got []models.Product
		resp := decodeResponse(t, recorder, &got)
		assert.True(t, resp.Success)
		assert.Len(t, got, len(repository.DefaultProducts()))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Repository failure", func(t *testing.T) {
		mockRepo, handler := setupProductTest()
		mockRepo.On("ListProducts", mock.Anything).Return(nil, errors.New("connection refused")).Once()

		req := testutils.CreateTestRequest(http.MethodGet, "/api/v1/products", nil, nil)
		recorder := httptest.NewRecorder()

		handler.ListProducts()(recorder, req)

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		resp := decodeResponse(t, recorder, nil)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, resp.Error.Code)
	})
}
