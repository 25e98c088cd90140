package service

import (
	"strings"
	"testing"

	"github.com/good-yellow-bee/curlhub/internal/errs"
	"github.com/good-yellow-bee/curlhub/internal/models"
)

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		wantErr string
	}{
		{"valid credentials", models.Credentials{Username: "alice", Password: "pw"}, ""},
		{"missing password", models.Credentials{Username: "alice"}, "password is required"},
		{"long name", models.Credentials{Username: strings.Repeat("a", 65), Password: "pw"}, "username must be at most 64 characters"},
		{"missing visibility", models.ProjectInput{Name: "api"}, "visibility is required"},
		{"empty member name", models.ProjectUpdate{
			ProjectInput: models.ProjectInput{Name: "api", Visibility: models.VisibilityPublic},
			Admins:       []string{""},
		}, "admins[0] is required"},
		{"group name", models.GroupInput{}, "name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateInput("test", tt.in)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errs.Is(err, errs.Invalid) {
				t.Fatalf("error = %v, want Invalid", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNormalizeNames(t *testing.T) {
	got := normalizeNames([]string{" bob", "alice", "", "bob", "  "})
	want := []string{"alice", "bob"}
	if len(got) != len(want) {
		t.Fatalf("normalizeNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("normalizeNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
