package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/good-yellow-bee/curlhub/internal/api/middleware"
	"github.com/good-yellow-bee/curlhub/internal/errs"
	"github.com/good-yellow-bee/curlhub/internal/models"
)

const cookieName = "curlhub_session"

// mockService records calls and returns canned results.
type mockService struct {
	token     string
	err       error
	live      bool
	current   string
	got       models.Credentials
	loggedOut string
	deleted   string
}

func (m *mockService) SignUp(ctx context.Context, current string, in models.Credentials) (string, error) {
	m.current, m.got = current, in
	return m.token, m.err
}

func (m *mockService) LogIn(ctx context.Context, current string, in models.Credentials) (string, error) {
	m.current, m.got = current, in
	return m.token, m.err
}

func (m *mockService) LogOut(ctx context.Context, token string) {
	m.loggedOut = token
}

func (m *mockService) SessionStatus(ctx context.Context, token string) bool {
	return m.live
}

func (m *mockService) DeleteAccount(ctx context.Context, token string) error {
	m.deleted = token
	return m.err
}

func serve(t *testing.T, h http.HandlerFunc, method, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	middleware.SessionToken(cookieName)(h).ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

func newHandler(svc Service) *Handler {
	return NewHandler(svc, CookieConfig{Name: cookieName, TTL: time.Hour})
}

func TestSignUp(t *testing.T) {
	svc := &mockService{token: "tok-1"}
	rec := serve(t, newHandler(svc).SignUp, "POST", `{"username":"alice","password":"pw"}`, "old")

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if svc.got.Username != "alice" || svc.got.Password != "pw" {
		t.Errorf("credentials = %+v", svc.got)
	}
	if svc.current != "old" {
		t.Errorf("current token = %q, want old", svc.current)
	}

	var resp struct {
		Data struct {
			Token     string `json:"token"`
			TokenType string `json:"token_type"`
			ExpiresIn int    `json:"expires_in"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Token != "tok-1" || resp.Data.TokenType != "Bearer" || resp.Data.ExpiresIn != 3600 {
		t.Errorf("response = %+v", resp.Data)
	}

	c := sessionCookie(rec)
	if c == nil || c.Value != "tok-1" || !c.HttpOnly || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie = %+v", c)
	}
}

func TestSignUp_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed body", `{"username":`, nil, http.StatusBadRequest},
		{"taken", `{"username":"alice","password":"pw"}`, errs.E(errs.Conflict, "op", nil), http.StatusConflict},
		{"invalid", `{"username":"","password":"pw"}`, errs.E(errs.Invalid, "op", errors.New("username is required")), http.StatusBadRequest},
		{"storage", `{"username":"alice","password":"pw"}`, errs.E(errs.Storage, "op", errors.New("disk")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, newHandler(&mockService{err: tt.err}).SignUp, "POST", tt.body, "")
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if sessionCookie(rec) != nil {
				t.Error("cookie set on failure")
			}
		})
	}
}

func TestLogIn(t *testing.T) {
	svc := &mockService{token: "tok-2"}
	rec := serve(t, newHandler(svc).LogIn, "POST", `{"username":"alice","password":"pw"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if c := sessionCookie(rec); c == nil || c.Value != "tok-2" {
		t.Errorf("cookie = %+v", c)
	}

	svc = &mockService{err: errs.E(errs.InvalidCredential, "op", errors.New("wrong password"))}
	rec = serve(t, newHandler(svc).LogIn, "POST", `{"username":"alice","password":"nope"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "wrong password") {
		t.Errorf("failure reason leaked: %s", rec.Body.String())
	}
}

func TestLogOut(t *testing.T) {
	svc := &mockService{}
	rec := serve(t, newHandler(svc).LogOut, "POST", "", "tok-3")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if svc.loggedOut != "tok-3" {
		t.Errorf("logged out %q", svc.loggedOut)
	}
	if c := sessionCookie(rec); c == nil || c.MaxAge >= 0 {
		t.Errorf("cookie not cleared: %+v", c)
	}

	// Without a session it still succeeds.
	svc = &mockService{}
	rec = serve(t, newHandler(svc).LogOut, "POST", "", "")
	if rec.Code != http.StatusNoContent || svc.loggedOut != "" {
		t.Errorf("status = %d, loggedOut = %q", rec.Code, svc.loggedOut)
	}
}

func TestDeleteAccount(t *testing.T) {
	svc := &mockService{}
	rec := serve(t, newHandler(svc).DeleteAccount, "POST", "", "tok-4")
	if rec.Code != http.StatusNoContent || svc.deleted != "tok-4" {
		t.Errorf("status = %d, deleted = %q", rec.Code, svc.deleted)
	}

	svc = &mockService{err: errs.E(errs.Unauthenticated, "op", nil)}
	rec = serve(t, newHandler(svc).DeleteAccount, "POST", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name  string
		token string
		live  bool
		want  bool
	}{
		{"no token", "", true, false},
		{"live", "tok", true, true},
		{"stale", "tok", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, newHandler(&mockService{live: tt.live}).Status, "GET", "", tt.token)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			var resp struct {
				Data struct {
					IsLoggedIn bool `json:"is_logged_in"`
				} `json:"data"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Data.IsLoggedIn != tt.want {
				t.Errorf("is_logged_in = %v, want %v", resp.Data.IsLoggedIn, tt.want)
			}
		})
	}
}
