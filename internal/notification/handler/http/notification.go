package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/notification/service"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/httputil"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/middleware"
)

const adminRole = "admin"

// NotificationHandler exposes the notification audit trail. Customers see
// their own notifications; admins may inspect any recipient, including the
// admin broadcast channel.
type NotificationHandler struct {
	service *service.NotificationService
	logger  *slog.Logger
}

// NewNotificationHandler creates a new notification HTTP handler.
func NewNotificationHandler(svc *service.NotificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: svc,
		logger:  logger,
	}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recipient := middleware.UserIDFromContext(ctx)
	if v := r.URL.Query().Get("recipient"); v != "" {
		if middleware.RoleFromContext(ctx) != adminRole {
			httputil.WriteJSON(w, http.StatusForbidden, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "FORBIDDEN", Message: "only admins may inspect other recipients"},
			})
			return
		}
		recipient = v
	}

	page, perPage := 1, 20
	if v := r.URL.Query().Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "page must be a valid positive integer"},
			})
			return
		}
		page = p
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		pp, err := strconv.Atoi(v)
		if err != nil || pp < 1 || pp > 100 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "per_page must be a valid integer between 1 and 100"},
			})
			return
		}
		perPage = pp
	}

	notifications, total, err := h.service.ListByRecipient(ctx, recipient, page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(notifications, total, page, perPage))
}

// Routes mounts the notification endpoints on the given router.
func (h *NotificationHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
}
