package normalize_test

import (
	"testing"

	"github.com/dalemusser/cardhub/internal/app/system/normalize"
)

func TestName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Jane   Doe ", "Jane Doe"},
		{"Jane Doe", "Jane Doe"},
		{"", ""},
		{"   ", ""},
		{"Mary \t Ann", "Mary Ann"},
	}
	for _, c := range cases {
		if got := normalize.Name(c.in); got != c.want {
			t.Errorf("Name(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEmail(t *testing.T) {
	if got := normalize.Email("  Jane.Doe@Example.COM "); got != "jane.doe@example.com" {
		t.Errorf("Email: got %q", got)
	}
}

func TestStatus(t *testing.T) {
	if got := normalize.Status(""); got != "active" {
		t.Errorf("Status(\"\") = %q, want active", got)
	}
	if got := normalize.Status(" Disabled "); got != "disabled" {
		t.Errorf("Status: got %q", got)
	}
}

func TestRole(t *testing.T) {
	if got := normalize.Role(" Admin "); got != "admin" {
		t.Errorf("Role: got %q", got)
	}
}
