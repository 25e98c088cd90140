package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseVisibility(t *testing.T) {
	tests := []struct {
		in      string
		want    Visibility
		wantErr bool
	}{
		{"Public", VisibilityPublic, false},
		{"private", VisibilityPrivate, false},
		{" PUBLIC ", VisibilityPublic, false},
		{"", VisibilityUnset, true},
		{"internal", VisibilityUnset, true},
	}

	for _, tt := range tests {
		got, err := ParseVisibility(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVisibility(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVisibility(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVisibilityJSON(t *testing.T) {
	var in ProjectInput
	if err := json.Unmarshal([]byte(`{"name":"api","visibility":"Private"}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.Visibility != VisibilityPrivate {
		t.Errorf("visibility = %v, want Private", in.Visibility)
	}

	if err := json.Unmarshal([]byte(`{"name":"api","visibility":"Secret"}`), &in); err == nil {
		t.Error("expected error for unknown visibility")
	}

	out, err := json.Marshal(&Project{ID: 1, Name: "api", Visibility: VisibilityPublic})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"visibility":"Public"`) {
		t.Errorf("marshaled project = %s", out)
	}

	if _, err := json.Marshal(&Project{Name: "unset"}); err == nil {
		t.Error("expected error when marshaling unset visibility")
	}
}

func TestProjectDetailJSONFlattensProject(t *testing.T) {
	detail := ProjectDetail{
		Project: Project{ID: 7, Name: "api", Visibility: VisibilityPublic},
		Admins:  []string{"alice"},
	}
	out, err := json.Marshal(detail)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["id"] != float64(7) {
		t.Errorf("id = %v, want 7", decoded["id"])
	}
	if _, ok := decoded["admins"]; !ok {
		t.Error("admins missing")
	}
}
