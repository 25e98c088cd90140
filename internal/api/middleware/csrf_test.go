package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

var testCSRFKey = []byte("0123456789abcdef0123456789abcdef")

func newCSRFHandler() http.Handler {
	return CSRF(CSRFConfig{Key: testCSRFKey, CookieName: "curlhub_session"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCSRF_CookieRequestWithoutTokenRejected(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/project", nil)
	req.AddCookie(&http.Cookie{Name: "curlhub_session", Value: "abc"})
	rec := httptest.NewRecorder()
	newCSRFHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestCSRF_BearerRequestSkipsCheck(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/project", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	newCSRFHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestCSRF_SafeMethodsPass(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/project", nil)
	rec := httptest.NewRecorder()
	newCSRFHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestCSRF_RequestWithoutSessionCookieSkipsCheck(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/log-in", nil)
	rec := httptest.NewRecorder()
	newCSRFHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
