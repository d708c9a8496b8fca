package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-signing-secret"

func TestTokenRoundTrip(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	subject := uuid.New()

	token, expiresAt, err := iss.Issue(subject, []string{"User", "admin", "user"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	got, claims, err := iss.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != subject {
		t.Fatalf("subject mismatch: got %s want %s", got, subject)
	}
	if len(claims.Scopes) != 2 {
		t.Fatalf("expected deduplicated scopes, got %v", claims.Scopes)
	}
	for _, scope := range []string{"user", "admin"} {
		found := false
		for _, s := range claims.Scopes {
			if s == scope {
				found = true
			}
		}
		if !found {
			t.Fatalf("scope %q not preserved: %v", scope, claims.Scopes)
		}
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		t.Fatalf("expiry precedes issued-at")
	}
}

func TestIssueDefaultTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	iss, err := NewIssuer(testSecret, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	_, expiresAt, err := iss.Issue(uuid.New(), nil, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !expiresAt.Equal(now.Add(defaultTokenTTL)) {
		t.Fatalf("expected default ttl expiry %v, got %v", now.Add(defaultTokenTTL), expiresAt)
	}
}

func TestVerifyExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	iss, err := NewIssuer(testSecret, WithClock(func() time.Time { return *clock }))
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	token, _, err := iss.Issue(uuid.New(), []string{"user"}, time.Second)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	later := now.Add(2 * time.Second)
	clock = &later
	if _, _, err := iss.Verify(token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	token, _, err := iss.Issue(uuid.New(), []string{"user"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d segments", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, _, err := iss.Verify(tampered); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	other, err := NewIssuer("a-different-secret")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	token, _, err := other.Issue(uuid.New(), nil, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, _, err := iss.Verify(token); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	for _, token := range []string{"", "garbage", "not.a.token", "a.b.c"} {
		if _, _, err := iss.Verify(token); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Verify(%q): expected ErrMalformed, got %v", token, err)
		}
	}
}

func TestVerifyRejectsNonIdentitySubject(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ironlog",
			Subject:   "row-42",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, _, err := iss.Verify(token); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for non-UUID subject, got %v", err)
	}
}

func TestVerifyRejectsUnexpectedAlgorithm(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ironlog",
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, _, err := iss.Verify(token); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for HS512 token, got %v", err)
	}
}
