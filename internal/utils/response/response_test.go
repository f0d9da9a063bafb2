package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, recorder *httptest.ResponseRecorder) response.APIResponse {
	t.Helper()

	var resp response.APIResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))

	return resp
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name string
		req  any
		want string
	}{
		{name: "Required", req: models.AddItemRequest{}, want: "Field ProductID is required"},
		{name: "Greater than", req: models.AddItemRequest{ProductID: -1}, want: "Field ProductID must be greater than 0"},
		{name: "Numeric max", req: models.UpdateQuantityRequest{Quantity: 10000}, want: "Field Quantity must be at most 9999"},
		{name: "String max", req: models.ApplyCouponRequest{Code: string(make([]byte, 65))}, want: "Field Code must be at most 64 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var validationErrs validator.ValidationErrors
			require.ErrorAs(t, validator.New().Struct(tt.req), &validationErrs)

			recorder := httptest.NewRecorder()
			response.ValidationError(recorder, validationErrs)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			resp := decode(t, recorder)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, appErrors.ErrCodeValidation, resp.Error.Code)
			assert.Equal(t, []string{tt.want}, resp.Error.Details)
		})
	}
}

func TestError(t *testing.T) {
	t.Run("AppError keeps its status and code", func(t *testing.T) {
		recorder := httptest.NewRecorder()

		response.Error(recorder, appErrors.CouponInvalidError())

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		resp := decode(t, recorder)
		assert.Equal(t, appErrors.ErrCodeCouponInvalid, resp.Error.Code)
		assert.Equal(t, "Invalid coupon code", resp.Error.Message)
	})

	t.Run("Plain errors are hidden behind a 500", func(t *testing.T) {
		recorder := httptest.NewRecorder()

		response.Error(recorder, errors.New("dial tcp: refused"))

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		resp := decode(t, recorder)
		assert.Equal(t, appErrors.ErrCodeInternal, resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, "refused")
	})
}
