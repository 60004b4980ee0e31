package identity

import "testing"

func TestPasswordHasher_RoundTrip(t *testing.T) {
	hasher := NewPasswordHasher(65536, 3, 4, 16, 32)

	hash, err := hasher.Hash("SecurePassword123")
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}

	ok, err := hasher.Verify("SecurePassword123", hash)
	if err != nil {
		t.Fatalf("failed to verify: %v", err)
	}
	if !ok {
		t.Error("expected correct password to verify")
	}

	ok, err = hasher.Verify("WrongPassword", hash)
	if err != nil {
		t.Fatalf("failed to verify: %v", err)
	}
	if ok {
		t.Error("expected wrong password to fail verification")
	}
}

func TestPasswordHasher_UniqueSalts(t *testing.T) {
	hasher := NewPasswordHasher(65536, 3, 4, 16, 32)

	h1, _ := hasher.Hash("same-password")
	h2, _ := hasher.Hash("same-password")
	if h1 == h2 {
		t.Error("expected distinct hashes for the same password")
	}
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	hasher := NewPasswordHasher(65536, 3, 4, 16, 32)

	if _, err := hasher.Verify("x", "not-a-hash"); err == nil {
		t.Error("expected error for malformed hash")
	}
}
