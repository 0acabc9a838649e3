package auth

import "testing"

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "s3cret-pw" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !CheckPassword(hash, "s3cret-pw") {
		t.Error("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong-pw") {
		t.Error("expected mismatched password to fail")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 == h2 {
		t.Error("expected two hashes of the same password to differ")
	}
}
