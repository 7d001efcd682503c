package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/cart/domain"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/cart/service"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/httputil"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/middleware"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints. The cart is always
// scoped to the authenticated user.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding an item to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id"`
	Name      string `json:"name" validate:"required,min=1,max=500"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0"`
	SalePrice *int64 `json:"sale_price" validate:"omitempty,gte=0"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
	ImageURL  string `json:"image_url"`
}

// UpdateQuantityRequest is the JSON request body for setting an item quantity.
// Zero removes the item.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// ShippingAddressRequest is the JSON request body for the address snapshot.
type ShippingAddressRequest struct {
	FullName    string `json:"full_name" validate:"required"`
	AddressLine string `json:"address_line" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state" validate:"required"`
	PostalCode  string `json:"postal_code" validate:"required"`
	Country     string `json:"country" validate:"required,len=2"`
	Phone       string `json:"phone"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.AddItem(r.Context(), middleware.UserIDFromContext(r.Context()), service.AddItemInput{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		SalePrice: req.SalePrice,
		Quantity:  req.Quantity,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// UpdateQuantity handles PUT /api/v1/cart/items/{productId}
// The variant, when relevant, is passed as the ?variant query parameter.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	variantID := r.URL.Query().Get("variant")

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(), middleware.UserIDFromContext(r.Context()), productID, variantID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	variantID := r.URL.Query().Get("variant")

	cart, err := h.service.RemoveItem(r.Context(), middleware.UserIDFromContext(r.Context()), productID, variantID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "cleared"}})
}

// OpenCart handles POST /api/v1/cart/open
func (h *CartHandler) OpenCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.Open(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// CloseCart handles POST /api/v1/cart/close
func (h *CartHandler) CloseCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.Close(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// SetShippingAddress handles PUT /api/v1/cart/shipping-address
func (h *CartHandler) SetShippingAddress(w http.ResponseWriter, r *http.Request) {
	var req ShippingAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.SetShippingAddress(r.Context(), middleware.UserIDFromContext(r.Context()), domain.Address{
		FullName:    req.FullName,
		AddressLine: req.AddressLine,
		City:        req.City,
		State:       req.State,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
		Phone:       req.Phone,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// Routes mounts the cart endpoints on the given router. Auth is applied by
// the caller.
func (h *CartHandler) Routes(r chi.Router) {
	r.Get("/", h.GetCart)
	r.Delete("/", h.ClearCart)
	r.Post("/open", h.OpenCart)
	r.Post("/close", h.CloseCart)
	r.Put("/shipping-address", h.SetShippingAddress)

	r.Post("/items", h.AddItem)
	r.Put("/items/{productId}", h.UpdateQuantity)
	r.Delete("/items/{productId}", h.RemoveItem)
}
