package auth

import (
	"errors"
	"testing"
)

func TestHashAndVerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := VerifyPassword(hash, "correct horse battery staple"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := VerifyPassword(hash, "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestHashIsSalted(t *testing.T) {
	first, err := HashPassword("user")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("user")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct hashes for equal inputs")
	}
	if err := VerifyPassword(first, "user"); err != nil {
		t.Fatalf("first hash did not verify: %v", err)
	}
	if err := VerifyPassword(second, "user"); err != nil {
		t.Fatalf("second hash did not verify: %v", err)
	}
}

func TestHashEmptyPassword(t *testing.T) {
	if _, err := HashPassword(""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestVerifyCorruptHash(t *testing.T) {
	err := VerifyPassword("not-a-bcrypt-hash", "whatever")
	if err == nil {
		t.Fatal("expected error for corrupt hash")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("corrupt hash must not look like a credential failure: %v", err)
	}
}
