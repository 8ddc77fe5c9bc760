// Package crypto implements the registration proof-of-possession check.
package crypto

import (
	stdcrypto "crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"

	"github.com/pkg/errors"

	"pushgate/internal/domain/service"
)

// rsaSignatureVerifier verifies SHA256withRSA signatures produced by the
// device over "<challenge>.<deviceToken>". Public keys arrive as base64
// encoded X.509 SubjectPublicKeyInfo, the form exported by mobile keystores.
type rsaSignatureVerifier struct{}

// NewSignatureVerifier is the constructor for rsaSignatureVerifier.
func NewSignatureVerifier() service.SignatureVerifier {
	return &rsaSignatureVerifier{}
}

// Verify reports whether signature is a valid signature by publicKey over the
// UTF-8 bytes of "<challenge>.<deviceToken>". A mismatching signature yields
// (false, nil); undecodable inputs yield a non-nil error.
func (v *rsaSignatureVerifier) Verify(publicKey, signature, challenge, deviceToken string) (bool, error) {
	sigBytes, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false, errors.Wrap(err, "signature is not valid base64")
	}

	pub, err := ParseRSAPublicKey(publicKey)
	if err != nil {
		return false, err
	}

	digest := sha256.Sum256([]byte(challenge + "." + deviceToken))
	if err := rsa.VerifyPKCS1v15(pub, stdcrypto.SHA256, digest[:], sigBytes); err != nil {
		return false, nil
	}

	return true, nil
}

// ParseRSAPublicKey decodes a base64 X.509 SubjectPublicKeyInfo block into an
// RSA public key.
func ParseRSAPublicKey(publicKey string) (*rsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil {
		return nil, errors.Wrap(err, "public key is not valid base64")
	}

	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse public key")
	}

	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not an RSA key")
	}

	return pub, nil
}
