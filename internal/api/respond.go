package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/classiccarrry/classic-carrry-admin/internal/session"
	"github.com/classiccarrry/classic-carrry-admin/internal/storefront"
	"github.com/classiccarrry/classic-carrry-admin/internal/viewmodel"
)

const unreachableMessage = "Backend server is unreachable"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFailure maps an operation error to a response. fallback is the text
// used when err carries nothing the administrator should see.
func writeFailure(w http.ResponseWriter, err error, fallback string) {
	writeError(w, statusFor(err), messageFor(err, fallback))
}

func statusFor(err error) int {
	var (
		valErr  *storefront.ValidationError
		authErr *storefront.AuthorizationError
		apiErr  *storefront.APIError
		netErr  *storefront.NetworkError
	)
	switch {
	case errors.As(err, &valErr):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		return http.StatusForbidden
	case errors.Is(err, viewmodel.ErrNotConfirmed):
		return http.StatusPreconditionRequired
	case errors.Is(err, viewmodel.ErrUnsupported):
		return http.StatusMethodNotAllowed
	case errors.Is(err, session.ErrUnreachable):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiErr):
		return apiErr.Status
	case errors.As(err, &netErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func messageFor(err error, fallback string) string {
	switch {
	case errors.Is(err, session.ErrUnreachable):
		return unreachableMessage
	case errors.Is(err, viewmodel.ErrNotConfirmed), errors.Is(err, viewmodel.ErrUnsupported):
		return err.Error()
	}
	return storefront.UserMessage(err, fallback)
}

// decodeJSON reads the request body into dest, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}
