package api

import (
	"net/http"
	"strings"
)

// bearerPrefix is matched literally: case-sensitive, single trailing space.
const bearerPrefix = "Bearer "

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token string `json:"token"`
}

// Login authenticates the configured credential pair and issues a token.
// The failure message never says which field was wrong.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, _, err := h.tokens.Issue(req.Username, req.Password)
	if err != nil {
		h.metrics.AuthFailures.WithLabelValues("login").Inc()
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	writeSuccess(w, http.StatusOK, "Success", LoginResponse{Token: token})
}

// AuthMiddleware is the bearer-token gate in front of every route except
// login. Failures short-circuit with 401; the downstream handler is never
// invoked. Claims are deliberately not injected into the request context -
// no handler needs them.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			h.unauthorized(w, "missing_header")
			return
		}

		if !strings.HasPrefix(header, bearerPrefix) {
			h.unauthorized(w, "bad_scheme")
			return
		}

		if _, err := h.tokens.Verify(header[len(bearerPrefix):]); err != nil {
			h.unauthorized(w, "invalid_token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) unauthorized(w http.ResponseWriter, reason string) {
	h.metrics.AuthFailures.WithLabelValues(reason).Inc()
	writeError(w, http.StatusUnauthorized, "Unauthorized")
}
