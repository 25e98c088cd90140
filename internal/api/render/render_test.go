package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/good-yellow-bee/curlhub/internal/errs"
)

func TestFromErr(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unauthenticated", errs.E(errs.Unauthenticated, "op", nil), http.StatusUnauthorized, ErrCodeUnauthorized},
		{"invalid credential", errs.E(errs.InvalidCredential, "op", errors.New("unknown user")), http.StatusUnauthorized, ErrCodeUnauthorized},
		{"forbidden", errs.E(errs.Forbidden, "op", nil), http.StatusForbidden, ErrCodeForbidden},
		{"not found", errs.E(errs.NotFound, "op", nil), http.StatusNotFound, ErrCodeNotFound},
		{"conflict", errs.E(errs.Conflict, "op", nil), http.StatusConflict, ErrCodeConflict},
		{"invalid", errs.E(errs.Invalid, "op", errors.New("name is required")), http.StatusBadRequest, ErrCodeValidationFailed},
		{"storage", errs.E(errs.Storage, "op", errors.New("disk I/O error")), http.StatusInternalServerError, ErrCodeInternalError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
		{"wrapped", fmt.Errorf("outer: %w", errs.E(errs.NotFound, "op", nil)), http.StatusNotFound, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromErr(tt.err)
			if got.Status != tt.wantStatus || got.Code != tt.wantCode {
				t.Errorf("FromErr() = %d %s, want %d %s", got.Status, got.Code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestFromErr_Messages(t *testing.T) {
	// Unknown user and wrong password are indistinguishable.
	unknown := FromErr(errs.E(errs.InvalidCredential, "op", errors.New("unknown user")))
	wrong := FromErr(errs.E(errs.InvalidCredential, "op", errors.New("wrong password")))
	if *unknown != *wrong {
		t.Errorf("credential failures differ: %+v vs %+v", unknown, wrong)
	}

	if msg := FromErr(errs.E(errs.Storage, "op", errors.New("secret path /var/db"))).Message; msg != "Internal server error" {
		t.Errorf("storage message leaked: %q", msg)
	}

	if msg := FromErr(errs.E(errs.Invalid, "op", errors.New("name is required"))).Message; msg != "name is required" {
		t.Errorf("validation message = %q", msg)
	}
}

func TestJSONEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, IDResponse{ID: 3})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	var resp struct {
		Data IDResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.ID != 3 {
		t.Errorf("id = %d", resp.Data.ID)
	}

	rec = httptest.NewRecorder()
	JSONError(rec, ErrForbidden)
	var errResp Response
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusForbidden || errResp.Error == nil || errResp.Error.Code != ErrCodeForbidden {
		t.Errorf("error response = %d %+v", rec.Code, errResp.Error)
	}
}
