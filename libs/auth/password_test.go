package auth

import "testing"

func TestPasswordHashing(t *testing.T) {
	password := "pass123"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}
	if !CheckPassword(hash, password) {
		t.Fatal("CheckPassword should succeed for the right password")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Fatal("CheckPassword should fail for the wrong password")
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	a, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("NewRefreshToken failed: %v", err)
	}
	b, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("NewRefreshToken failed: %v", err)
	}
	if a == b {
		t.Fatal("two refresh tokens should differ")
	}
	if HashRefreshToken(a) == HashRefreshToken(b) {
		t.Fatal("hashes of distinct tokens should differ")
	}
	if HashRefreshToken(a) != HashRefreshToken(a) {
		t.Fatal("hashing must be deterministic")
	}
}
