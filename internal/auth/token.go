package auth

import (
	"net/http"
	"strings"
)

// ExtractAccessToken returns the bearer token of a store-backend request.
func ExtractAccessToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	// Internal callers that cannot set Authorization
	return r.Header.Get("X-Service-Token")
}
