package service

import (
	"github.com/golang-jwt/jwt/v5"
)

// SignatureVerifier checks the proof of key possession presented during
// device registration.
//
// Verify returns (false, nil) when the signature simply does not match and a
// non-nil error only when the inputs are structurally unusable (undecodable
// base64, unparseable key material). Error values never carry the raw key or
// signature bytes.
type SignatureVerifier interface {
	Verify(publicKey, signature, challenge, deviceToken string) (bool, error)
}

// ChallengeTokenValidator validates the signed JWT a device presents when
// responding to an authentication challenge.
type ChallengeTokenValidator interface {
	// ValidatedClaims parses the token, verifies its signature against the
	// device's stored public key and checks expiry, returning the claim set.
	ValidatedClaims(token, publicKey string) (jwt.MapClaims, error)

	// StringClaim extracts a named string claim, failing with a typed claim
	// error naming both the claim and the device.
	StringClaim(claims jwt.MapClaims, claim, deviceID string) (string, error)

	// ValidateChallenge compares a named claim against an expected value.
	// Internal failures are logged and reported as a plain false, never as
	// an error.
	ValidateChallenge(claims jwt.MapClaims, claim, expected, deviceID string) bool
}
