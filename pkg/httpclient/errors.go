package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/errors"
)

// providerErrorBody matches the error envelope most payment gateways return.
type providerErrorBody struct {
	Error *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// ParseResponseError reads the body of a non-2xx response from an upstream
// provider and translates it into an AppError. Structured gateway error
// bodies keep their code and description; anything else becomes a generic
// provider error with the raw body.
//
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, providerName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Provider(fmt.Sprintf("%s returned status %d (failed to read body: %v)", providerName, resp.StatusCode, err))
	}

	var body providerErrorBody
	if json.Unmarshal(bodyBytes, &body) == nil && body.Error != nil {
		return mapProviderError(resp.StatusCode, body.Error.Code, body.Error.Description, providerName)
	}

	return mapProviderError(resp.StatusCode, "", string(bodyBytes), providerName)
}

// mapProviderError keeps 4xx semantics where they matter to callers and folds
// everything else into a provider error.
func mapProviderError(status int, code, message, providerName string) error {
	qualified := fmt.Sprintf("%s: %s", providerName, message)
	if code != "" {
		qualified = fmt.Sprintf("%s: [%s] %s", providerName, code, message)
	}

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(providerName, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		// Bad credentials on our side, not the caller's fault.
		return apperrors.Provider(qualified)
	default:
		return apperrors.Provider(fmt.Sprintf("status %d: %s", status, qualified))
	}
}
