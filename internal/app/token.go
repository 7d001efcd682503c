package app

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/auth"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/httputil"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/validator"
)

// TokenRequest is the JSON request body for the development token endpoint.
type TokenRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Email  string `json:"email" validate:"omitempty,email"`
	Role   string `json:"role" validate:"required,oneof=customer admin"`
}

// TokenResponse carries a freshly minted JWT.
type TokenResponse struct {
	Token string `json:"token"`
}

// devTokenHandler mints JWTs for local testing. It is only mounted when the
// environment is "development"; production deployments get tokens from the
// identity provider instead.
func devTokenHandler(manager *auth.JWTManager, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TokenRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
			})
			return
		}

		if err := validator.Validate(req); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}

		token, err := manager.GenerateToken(req.UserID, req.Email, req.Role)
		if err != nil {
			httputil.WriteError(w, r, err, logger)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: TokenResponse{Token: token}})
	}
}
