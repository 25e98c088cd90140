// Package accounts serves the sign-up, log-in and session endpoints.
package accounts

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/good-yellow-bee/curlhub/internal/api/middleware"
	"github.com/good-yellow-bee/curlhub/internal/api/render"
	"github.com/good-yellow-bee/curlhub/internal/models"
)

const maxBodyBytes = 1 << 20

// Service is the account behaviour the handler needs.
type Service interface {
	SignUp(ctx context.Context, current string, in models.Credentials) (string, error)
	LogIn(ctx context.Context, current string, in models.Credentials) (string, error)
	LogOut(ctx context.Context, token string)
	SessionStatus(ctx context.Context, token string) bool
	DeleteAccount(ctx context.Context, token string) error
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name string
	// Secure forces the Secure attribute; otherwise it follows the request scheme.
	Secure bool
	TTL    time.Duration
}

// Handler handles account endpoints.
type Handler struct {
	svc    Service
	cookie CookieConfig
}

// NewHandler creates a new accounts handler.
func NewHandler(svc Service, cookie CookieConfig) *Handler {
	return &Handler{svc: svc, cookie: cookie}
}

// SignUp creates an account and logs it in.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.svc.SignUp(r.Context(), middleware.GetToken(r.Context()), in)
	if err != nil {
		render.Fail(w, "signup", err)
		return
	}

	h.setCookie(w, r, token)
	render.Created(w, h.tokenResponse(token))
}

// LogIn verifies credentials and starts a new session.
func (h *Handler) LogIn(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.svc.LogIn(r.Context(), middleware.GetToken(r.Context()), in)
	if err != nil {
		render.Fail(w, "login", err)
		return
	}

	h.setCookie(w, r, token)
	render.OK(w, h.tokenResponse(token))
}

// LogOut ends the caller's session. It succeeds without a session.
func (h *Handler) LogOut(w http.ResponseWriter, r *http.Request) {
	if token := middleware.GetToken(r.Context()); token != "" {
		h.svc.LogOut(r.Context(), token)
	}
	h.clearCookie(w, r)
	render.NoContent(w)
}

// DeleteAccount deletes the caller's account.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAccount(r.Context(), middleware.GetToken(r.Context())); err != nil {
		render.Fail(w, "delete account", err)
		return
	}
	h.clearCookie(w, r)
	render.NoContent(w)
}

// Status reports whether the request carries a live session.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())
	loggedIn := token != "" && h.svc.SessionStatus(r.Context(), token)
	render.OK(w, render.StatusResponse{IsLoggedIn: loggedIn})
}

func (h *Handler) tokenResponse(token string) render.TokenResponse {
	return render.TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(h.cookie.TTL.Seconds()),
	}
}

func (h *Handler) setCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure || middleware.IsRequestSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.cookie.TTL.Seconds()),
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure || middleware.IsRequestSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (models.Credentials, bool) {
	var in models.Credentials
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		render.JSONError(w, render.NewBadRequest("invalid request body"))
		return in, false
	}
	return in, true
}
