package common

import "testing"

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 0, 800); got != 800 {
		t.Errorf("Coalesce(0, 0, 800) = %d, want 800", got)
	}
	if got := Coalesce(1280, 800); got != 1280 {
		t.Errorf("Coalesce(1280, 800) = %d, want 1280", got)
	}
	if got := Coalesce("", "fallback"); got != "fallback" {
		t.Errorf("Coalesce(\"\", \"fallback\") = %q, want %q", got, "fallback")
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Errorf("Coalesce(0, 0) = %d, want 0", got)
	}
}
