package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// CartHandler forwards cart actions to the cart store and answers every
// request with the priced cart summary.
type CartHandler struct {
	cartService     *service.CartService
	checkoutService *service.CheckoutService
	productService  service.ProductService
	validator       *validator.Validate
	sanitizer       *bluemonday.Policy
}

func NewCartHandler(cart *service.CartService, checkout *service.CheckoutService, products service.ProductService) *CartHandler {
	return &CartHandler{
		cartService:     cart,
		checkoutService: checkout,
		productService:  products,
		validator:       validator.New(),
		sanitizer:       bluemonday.StrictPolicy(),
	}
}

// GetCart godoc
//
//	@Summary		Get the cart
//	@Description	Returns the priced cart summary
//	@Tags			cart
//	@Produce		json
//	@Success		200	{object}	response.APIResponse{data=models.CartSummary}
//	@Router			/cart [get]
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, h.checkoutService.Summary())
	}
}

// AddItem godoc
//
//	@Summary		Add an item
//	@Description	Adds a product to the cart, merging into an existing line
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			request	body		models.AddItemRequest	true	"Request body"
//	@Success		200	{object}	response.APIResponse{data=models.CartSummary}
//	@Failure		400	{object}	response.APIResponse{error=response.ErrorResponse}
//	@Failure		404	{object}	response.APIResponse{error=response.ErrorResponse}
//	@Router			/cart/items [post]
func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.GetProductByID(r.Context(), req.ProductID)
		if err != nil {
			logger.Warn("Cannot add unknown product", slog.Int64("productId", req.ProductID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		h.cartService.AddToCart(r.Context(), *product, req.Quantity)

		logger.Info("Item added to cart", slog.Int64("productId", product.ID), slog.Int("quantity", req.Quantity))
		response.Success(w, http.StatusOK, h.checkoutService.Summary())

	}
}

// UpdateQuantity godoc
//
//	@Summary		Update quantity
//	@Description	Sets the quantity of a line item, zero or less removes it
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			id	path		int	true	"Product ID"
//	@Param			request	body		models.UpdateQuantityRequest	true	"Request body"
//	@Success		200	{object}	response.APIResponse{data=models.CartSummary}
//	@Failure		400	{object}	response.APIResponse{error=response.ErrorResponse}
//	@Router			/cart/items/{id} [put]
func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, ok := utils.PathID(w, r, "id")
		if !ok {
			return
		}

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		h.cartService.UpdateQuantity(r.Context(), id, req.Quantity)

		logger.Info("Cart quantity updated", slog.Int64("productId", id), slog.Int("quantity", req.Quantity))
		response.Success(w, http.StatusOK, h.checkoutService.Summary())

	}
}

// RemoveItem godoc
//
//	@Summary		Remove an item
//	@Description	Removes a line item, unknown products are ignored
//	@Tags			cart
//	@Produce		json
//	@Param			id	path		int	true	"Product ID"
//	@Success		200	{object}	response.APIResponse{data=models.CartSummary}
//	@Failure		400	{object}	response.APIResponse{error=response.ErrorResponse}
//	@Router			/cart/items/{id} [delete]
func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, ok := utils.PathID(w, r, "id")
		if !ok {
			return
		}

		h.cartService.RemoveFromCart(r.Context(), id)

		middleware.LoggerFromContext(r.Context()).Info("Item removed from cart", slog.Int64("productId", id))
		response.Success(w, http.StatusOK, h.checkoutService.Summary())

	}
}

// ClearCart godoc
//
//	@Summary		Clear the cart
//	@Description	Removes every line item and the applied coupon
//	@Tags			cart
//	@Produce		json
//	@Success		200	{object}	response.APIResponse{data=models.CartSummary}
//	@Router			/cart [delete]
func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		h.cartService.ClearCart(r.Context())

		middleware.LoggerFromContext(r.Context()).Info("Cart cleared")
		response.Success(w, http.StatusOK, h.checkoutService.Summary())

	}
}

// ApplyCoupon godoc
//
//	@Summary		Apply a coupon
//	@Description	Binds a coupon when at least one line item qualifies
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			request	body		models.ApplyCouponRequest	true	"Request body"
//	@Success		200	{object}	response.APIResponse{data=models.CartSummary}
//	@Failure		400	{object}	response.APIResponse{error=response.ErrorResponse}
//	@Failure		422	{object}	response.APIResponse{error=response.ErrorResponse}
//	@Router			/cart/coupon [post]
func (h *CartHandler) ApplyCoupon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.ApplyCouponRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		// codes are typed by users, strip any markup before they reach logs
		code := h.sanitizer.Sanitize(req.Code)

		if err := h.checkoutService.ApplyCoupon(r.Context(), code); err != nil {
			logger.Info("Coupon rejected", slog.String("code", code), slog.String("reason", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Coupon applied", slog.String("code", code))
		response.Success(w, http.StatusOK, h.checkoutService.Summary())

	}
}

// RemoveCoupon godoc
//
//	@Summary		Remove the coupon
//	@Description	Unbinds the applied coupon
//	@Tags			cart
//	@Produce		json
//	@Success		200	{object}	response.APIResponse{data=models.CartSummary}
//	@Router			/cart/coupon [delete]
func (h *CartHandler) RemoveCoupon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		h.cartService.RemoveCoupon(r.Context())

		middleware.LoggerFromContext(r.Context()).Info("Coupon removed")
		response.Success(w, http.StatusOK, h.checkoutService.Summary())

	}
}
