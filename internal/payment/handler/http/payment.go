package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/service"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/httputil"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/middleware"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/validator"
)

const adminRole = "admin"

// PaymentHandler handles HTTP requests for payment endpoints.
type PaymentHandler struct {
	service *service.PaymentService
	logger  *slog.Logger
}

// NewPaymentHandler creates a new payment HTTP handler.
func NewPaymentHandler(svc *service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateSessionRequest is the JSON request body for starting a payment
// session.
type CreateSessionRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid"`
}

// ConfirmCODRequest is the JSON request body for confirming a COD order.
type ConfirmCODRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid"`
}

// --- Handlers ---

// CreateSession handles POST /api/v1/payments/create-session
func (h *PaymentHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
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

	session, err := h.service.CreateSession(r.Context(), req.OrderID, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: session})
}

// VerifyCallback handles POST /api/v1/payments/verify
func (h *PaymentHandler) VerifyCallback(w http.ResponseWriter, r *http.Request) {
	var req service.VerifyInput
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

	payment, err := h.service.VerifyCallback(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: payment})
}

// ConfirmCOD handles POST /api/v1/payments/cod/confirm
func (h *PaymentHandler) ConfirmCOD(w http.ResponseWriter, r *http.Request) {
	var req ConfirmCODRequest
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

	payment, err := h.service.ConfirmCOD(r.Context(), req.OrderID, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: payment})
}

// GetPaymentByOrder handles GET /api/v1/payments/order/{orderId}
func (h *PaymentHandler) GetPaymentByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := httputil.ParseUUID(w, chi.URLParam(r, "orderId"))
	if !ok {
		return
	}

	ctx := r.Context()
	payment, err := h.service.GetPaymentByOrder(ctx, orderID.String(),
		middleware.UserIDFromContext(ctx), middleware.RoleFromContext(ctx) == adminRole)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: payment})
}

// Routes mounts the payment endpoints on the given router.
func (h *PaymentHandler) Routes(r chi.Router) {
	r.Post("/create-session", h.CreateSession)
	r.Post("/verify", h.VerifyCallback)
	r.Post("/cod/confirm", h.ConfirmCOD)
	r.Get("/order/{orderId}", h.GetPaymentByOrder)
}
