package security

import (
	"crypto"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token is malformed or fails verification.
var ErrInvalidToken = errors.New("invalid token")

// AccessClaims holds the JWT claims of a family-app access token.
type AccessClaims struct {
	jwt.RegisteredClaims
}

// Verifier validates access tokens issued by the family app (RS256 or ES256).
// This service holds only the public key and never signs tokens.
type Verifier struct {
	publicKey crypto.PublicKey
	issuer    string
	audience  string
}

// NewVerifier returns a Verifier that checks signature, expiry, issuer, and audience.
func NewVerifier(publicKey crypto.PublicKey, issuer, audience string) *Verifier {
	return &Verifier{publicKey: publicKey, issuer: issuer, audience: audience}
}

// VerifyAccess parses and validates the access token (signature, exp, iss, aud).
// Returns the user id from the sub claim, or ErrInvalidToken.
func (v *Verifier) VerifyAccess(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
			return v.publicKey, nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); ok {
			return v.publicKey, nil
		}
		return nil, ErrInvalidToken
	})
	if err != nil {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Issuer != v.issuer {
		return "", ErrInvalidToken
	}
	audOk := false
	for _, a := range claims.Audience {
		if a == v.audience {
			audOk = true
			break
		}
	}
	if !audOk {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
