package handlers

import (
	"crypto/hmac"
	"net/http"
	"strings"
)

// AuthHandler gates another http.Handler behind a shared secret token.
// Callers provide the token as a bearer token in the Authorization header.
//
// An empty Token disables the gate. Whether an empty token is allowed at all
// is decided at startup: the server refuses to boot with an unset secret
// unless anonymous access was opted into explicitly.
type AuthHandler struct {
	BaseHandler

	// Token is the shared secret protecting .Handler
	Token string

	// Handler to run if the request is authenticated
	Handler http.Handler
}

// ServeHTTP implements http.Handler
func (h AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Token == "" {
		h.Handler.ServeHTTP(w, r)
		return
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		h.RespondError(w, http.StatusUnauthorized,
			"Authorization header must have a value")
		return
	}

	provided := strings.TrimPrefix(authHeader, "Bearer ")

	if !hmac.Equal([]byte(provided), []byte(h.Token)) {
		h.RespondError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	h.Handler.ServeHTTP(w, r)
}
