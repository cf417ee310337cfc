package utils

import (
	"strings"
	"testing"
)

func TestFingerprint_Golden(t *testing.T) {
	t.Parallel()

	if got := Fingerprint(""); got != "" {
		t.Fatalf("Fingerprint(\"\")=%q; want empty", got)
	}

	a := Fingerprint("token-a")
	if !strings.HasPrefix(a, "sha256:") || len(a) != len("sha256:")+12 {
		t.Fatalf("Fingerprint=%q; want sha256: plus 12 hex chars", a)
	}
	if strings.Contains(a, "token-a") {
		t.Fatalf("Fingerprint leaks the secret: %q", a)
	}
	if a != Fingerprint("token-a") || a == Fingerprint("token-b") {
		t.Fatalf("Fingerprint not stable or not distinct")
	}
}
