// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	domainerrors "pushgate/internal/domain/errors"
	"pushgate/internal/domain/service"
	"pushgate/internal/infra/crypto"
)

// Claim names carried by the challenge response token.
const (
	ClaimTenantDomain    = "tenantDomain"
	ClaimPushAuthID      = "pushAuthId"
	ClaimChallenge       = "challenge"
	ClaimResponse        = "response"
	ClaimNumberChallenge = "numberChallenge"
)

// challengeTokenValidator validates challenge response JWTs against the
// trusted public key stored at registration time. The key embedded in the
// token header, if any, is never used.
type challengeTokenValidator struct {
	logger *slog.Logger
	parser *jwt.Parser
	now    func() time.Time
}

// NewChallengeTokenValidator is the constructor for challengeTokenValidator.
func NewChallengeTokenValidator(logger *slog.Logger) service.ChallengeTokenValidator {
	return &challengeTokenValidator{
		logger: logger,
		// Expiry is checked separately so it maps onto its own error kind.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
			jwt.WithoutClaimsValidation(),
		),
		now: time.Now,
	}
}

// ValidatedClaims parses token, verifies its signature against publicKey and
// checks that the expiry claim lies in the future. Checks run in a fixed
// order: structure, signature, claim set, expiry.
func (v *challengeTokenValidator) ValidatedClaims(token, publicKey string) (jwt.MapClaims, error) {
	if strings.Count(token, ".") != 2 {
		return nil, &domainerrors.TokenNotValidError{}
	}

	pub, err := crypto.ParseRSAPublicKey(publicKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load trusted public key")
	}

	claims := jwt.MapClaims{}
	if _, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return pub, nil
	}); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, &domainerrors.TokenNotValidError{}
		}

		return nil, &domainerrors.TokenSignatureError{}
	}

	if len(claims) == 0 {
		return nil, &domainerrors.TokenNotValidError{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || !exp.After(v.now()) {
		return nil, &domainerrors.TokenExpiredError{}
	}

	return claims, nil
}

// StringClaim extracts a named string claim from a validated claim set.
func (v *challengeTokenValidator) StringClaim(claims jwt.MapClaims, claim, deviceID string) (string, error) {
	raw, ok := claims[claim]
	if !ok {
		return "", &domainerrors.TokenClaimError{
			Claim:    claim,
			DeviceID: deviceID,
			Cause:    errors.New("claim is not present"),
		}
	}

	value, ok := raw.(string)
	if !ok {
		return "", &domainerrors.TokenClaimError{
			Claim:    claim,
			DeviceID: deviceID,
			Cause:    errors.Errorf("claim is not a string (%T)", raw),
		}
	}

	return value, nil
}

// ValidateChallenge compares the named claim against expected. Extraction
// failures are logged and reported as false rather than surfaced as errors,
// so a broken token can never validate.
func (v *challengeTokenValidator) ValidateChallenge(claims jwt.MapClaims, claim, expected, deviceID string) bool {
	if claims == nil {
		v.logger.Debug("challenge validation without a claim set",
			slog.String("deviceID", deviceID))

		return false
	}

	value, err := v.StringClaim(claims, claim, deviceID)
	if err != nil {
		v.logger.Error("failed to extract challenge claim",
			slog.String("claim", claim),
			slog.String("deviceID", deviceID),
			slog.Any("error", err))

		return false
	}

	if value != expected {
		v.logger.Debug("challenge claim mismatch",
			slog.String("claim", claim),
			slog.String("deviceID", deviceID))

		return false
	}

	return true
}
