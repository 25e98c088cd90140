package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, Other},
		{"plain", base, Other},
		{"classified", E(NotFound, "op", base), NotFound},
		{"wrapped", fmt.Errorf("outer: %w", E(Conflict, "op", base)), Conflict},
		{"nested keeps outermost", E(Forbidden, "outer", E(NotFound, "inner", nil)), Forbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := E(Unauthenticated, "session.Resolve", nil)
	if !Is(err, Unauthenticated) {
		t.Error("expected Unauthenticated")
	}
	if Is(err, Forbidden) {
		t.Error("did not expect Forbidden")
	}
	if Is(nil, Other) {
		t.Error("nil error must not match any kind")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := E(Storage, "storage.Create", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestWrap(t *testing.T) {
	if Wrap("op", nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}

	plain := errors.New("query failed")
	if got := KindOf(Wrap("op", plain)); got != Storage {
		t.Errorf("Wrap(plain) kind = %v, want storage", got)
	}

	classified := E(NotFound, "op", nil)
	if got := Wrap("other", classified); got != classified {
		t.Error("Wrap should keep an already classified error")
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Kind: NotFound, Op: "getProject", Err: errors.New("id 3")}, "getProject: not found: id 3"},
		{&Error{Kind: Invalid, Err: errors.New("bad name")}, "invalid: bad name"},
		{&Error{Kind: Forbidden, Op: "deleteProject"}, "deleteProject: forbidden"},
		{&Error{Kind: Conflict}, "conflict"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
