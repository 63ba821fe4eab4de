package crypto

import "testing"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if !VerifyPassword(hash, "secret") {
		t.Fatal("expected password verification to succeed")
	}

	if VerifyPassword(hash, "incorrect") {
		t.Fatal("expected password verification to fail")
	}
}

func TestFingerprintHash(t *testing.T) {
	a := FingerprintHash("Mozilla/5.0")
	b := FingerprintHash("  Mozilla/5.0  ")
	if a != b {
		t.Fatal("expected surrounding whitespace to be ignored")
	}

	if a == FingerprintHash("curl/8.0") {
		t.Fatal("expected distinct user agents to produce distinct digests")
	}

	if len(a) != 64 {
		t.Fatalf("unexpected digest length: %d", len(a))
	}
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	if len(token) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(token))
	}
	for _, r := range token {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			t.Fatalf("unexpected character %q in token %s", r, token)
		}
	}
}
