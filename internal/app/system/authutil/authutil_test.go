package authutil

import (
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse 99")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct horse 99" {
		t.Error("hash must not equal plaintext")
	}
	if !CheckPassword("correct horse 99", hash) {
		t.Error("expected matching password to verify")
	}
	if CheckPassword("wrong password 1", hash) {
		t.Error("expected non-matching password to fail")
	}
}

func TestCheckPassword_BadHash(t *testing.T) {
	if CheckPassword("anything1", "not-a-bcrypt-hash") {
		t.Error("expected malformed hash to fail verification")
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		wantErr  bool
	}{
		{"goodpass1", false},
		{"short1", true},
		{"alllettersonly", true},
		{"123456789", true},
		{"", true},
	}
	for _, tc := range cases {
		err := ValidatePassword(tc.password)
		if tc.wantErr && err == nil {
			t.Errorf("ValidatePassword(%q): expected error", tc.password)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("ValidatePassword(%q): unexpected error %v", tc.password, err)
		}
	}
}

func TestGenerateTempPassword(t *testing.T) {
	p, err := GenerateTempPassword(12)
	if err != nil {
		t.Fatalf("GenerateTempPassword failed: %v", err)
	}
	if len(p) != 12 {
		t.Errorf("expected 12 characters, got %d", len(p))
	}
	for _, r := range p {
		if !strings.ContainsRune(tempPasswordAlphabet, r) {
			t.Errorf("unexpected character %q in generated password", r)
		}
	}

	q, err := GenerateTempPassword(12)
	if err != nil {
		t.Fatalf("GenerateTempPassword failed: %v", err)
	}
	if p == q {
		t.Error("two generated passwords should not be identical")
	}
}

func TestGenerateTempPassword_MinLength(t *testing.T) {
	p, err := GenerateTempPassword(2)
	if err != nil {
		t.Fatalf("GenerateTempPassword failed: %v", err)
	}
	if len(p) < minPasswordLength {
		t.Errorf("expected at least %d characters, got %d", minPasswordLength, len(p))
	}
}
