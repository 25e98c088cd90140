package auth

import (
	"strings"
	"testing"
)

// fastParams keeps tests quick; production uses DefaultArgon2Params.
var fastParams = Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1}

func TestArgon2Hasher_HashAndVerify(t *testing.T) {
	h := NewArgon2Hasher(fastParams)

	encoded, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Errorf("unexpected encoding %q", encoded)
	}

	if !h.Verify("correct horse", encoded) {
		t.Error("expected password to verify")
	}
	if h.Verify("battery staple", encoded) {
		t.Error("wrong password must not verify")
	}
}

func TestArgon2Hasher_SaltsDiffer(t *testing.T) {
	h := NewArgon2Hasher(fastParams)

	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Error("two hashes of the same password should differ")
	}
}

func TestArgon2Hasher_VerifyUsesStoredParams(t *testing.T) {
	old := NewArgon2Hasher(fastParams)
	encoded, err := old.Hash("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	current := NewArgon2Hasher(Argon2Params{Memory: 2048, Iterations: 2, Parallelism: 1})
	if !current.Verify("pw", encoded) {
		t.Error("hash made with older parameters should still verify")
	}
}

func TestArgon2Hasher_RejectsMalformed(t *testing.T) {
	h := NewArgon2Hasher(fastParams)

	inputs := []string{
		"",
		"plaintext",
		"$2a$10$abcdefghijklmnopqrstuv",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=1$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	}
	for _, in := range inputs {
		if h.Verify("pw", in) {
			t.Errorf("Verify(%q) should fail", in)
		}
	}
}

func TestArgon2Params_SetDefaults(t *testing.T) {
	var p Argon2Params
	p.SetDefaults()
	if p != DefaultArgon2Params() {
		t.Errorf("SetDefaults() = %+v, want %+v", p, DefaultArgon2Params())
	}

	p = Argon2Params{Memory: 1024}
	p.SetDefaults()
	if p.Memory != 1024 || p.Iterations != 3 {
		t.Errorf("SetDefaults() overwrote set fields: %+v", p)
	}
}
