package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestVerifyAccess_ValidToken(t *testing.T) {
	verifier, signer, err := NewTestVerifier()
	if err != nil {
		t.Fatalf("NewTestVerifier: %v", err)
	}

	token, err := signer.Sign("user-1", 15*time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	userID, err := verifier.VerifyAccess(token)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("userID = %q, want %q", userID, "user-1")
	}
}

func TestVerifyAccess_ExpiredToken(t *testing.T) {
	verifier, signer, err := NewTestVerifier()
	if err != nil {
		t.Fatalf("NewTestVerifier: %v", err)
	}

	token, err := signer.Sign("user-1", -1*time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := verifier.VerifyAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyAccess = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyAccess_WrongIssuer(t *testing.T) {
	verifier, signer, err := NewTestVerifier()
	if err != nil {
		t.Fatalf("NewTestVerifier: %v", err)
	}

	token, err := signer.SignWith("user-1", "other-issuer", testAudience, 15*time.Minute)
	if err != nil {
		t.Fatalf("SignWith: %v", err)
	}

	if _, err := verifier.VerifyAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyAccess = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyAccess_WrongAudience(t *testing.T) {
	verifier, signer, err := NewTestVerifier()
	if err != nil {
		t.Fatalf("NewTestVerifier: %v", err)
	}

	token, err := signer.SignWith("user-1", testIssuer, "other-audience", 15*time.Minute)
	if err != nil {
		t.Fatalf("SignWith: %v", err)
	}

	if _, err := verifier.VerifyAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyAccess = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyAccess_EmptySubject(t *testing.T) {
	verifier, signer, err := NewTestVerifier()
	if err != nil {
		t.Fatalf("NewTestVerifier: %v", err)
	}

	token, err := signer.Sign("", 15*time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := verifier.VerifyAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyAccess = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyAccess_MalformedToken(t *testing.T) {
	verifier, _, err := NewTestVerifier()
	if err != nil {
		t.Fatalf("NewTestVerifier: %v", err)
	}

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := verifier.VerifyAccess(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("VerifyAccess(%q) = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestVerifyAccess_RejectsHMACToken(t *testing.T) {
	// A token signed with a symmetric key must not verify, even if the
	// attacker uses the public key bytes as the HMAC secret.
	verifier, _, err := NewTestVerifier()
	if err != nil {
		t.Fatalf("NewTestVerifier: %v", err)
	}

	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testPublicKeyPEM))
	if err != nil {
		t.Fatalf("sign HS256: %v", err)
	}

	if _, err := verifier.VerifyAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyAccess = %v, want ErrInvalidToken for HS256 token", err)
	}
}

func TestVerifyAccess_TamperedToken(t *testing.T) {
	verifier, signer, err := NewTestVerifier()
	if err != nil {
		t.Fatalf("NewTestVerifier: %v", err)
	}

	token, err := signer.Sign("user-1", 15*time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	tampered := token[:len(token)-2] + "xx"

	if _, err := verifier.VerifyAccess(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyAccess = %v, want ErrInvalidToken for tampered token", err)
	}
}
