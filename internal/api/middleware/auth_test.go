package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"none", "", "", ""},
		{"bearer", "Bearer abc", "", "abc"},
		{"bearer lowercase scheme", "bearer abc", "", "abc"},
		{"cookie", "", "from-cookie", "from-cookie"},
		{"bearer wins over cookie", "Bearer from-header", "from-cookie", "from-header"},
		{"basic ignored", "Basic dXNlcjpwYXNz", "", ""},
		{"malformed header falls back to cookie", "Bearer", "from-cookie", "from-cookie"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := SessionToken("curlhub_session")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = GetToken(r.Context())
			}))

			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "curlhub_session", Value: tt.cookie})
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionToken_OtherCookieIgnored(t *testing.T) {
	var got string
	handler := SessionToken("curlhub_session")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetToken(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "other", Value: "x"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "" {
		t.Errorf("token = %q, want empty", got)
	}
}
