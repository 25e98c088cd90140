package middleware

import (
	"context"
	"net/http"
	"strings"
)

// Context keys for request-scoped values.
type contextKey string

const tokenKey contextKey = "session_token"

// SessionToken returns middleware that extracts the caller's session token
// and stores it in the request context. The Authorization Bearer header takes
// precedence over the session cookie. Requests without a token pass through
// unchanged; the service layer decides whether one is required.
func SessionToken(cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := tokenFromRequest(r, cookieName); token != "" {
				r = r.WithContext(context.WithValue(r.Context(), tokenKey, token))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetToken returns the session token from context, or "".
func GetToken(ctx context.Context) string {
	if v := ctx.Value(tokenKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// BearerToken returns the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if token := BearerToken(r); token != "" {
		return token
	}
	if cookieName == "" {
		return ""
	}
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
