// Package errors defines the typed error catalog of the push device handler.
//
// Every error kind is its own type carrying the identifier needed to render a
// message (device ID, user ID, claim name). Formatting happens in Error() and
// at the HTTP boundary; messages never include key material, signatures or
// vault-resolved secrets.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is implemented by every catalog error so the delivery layer can
// map it onto an HTTP status and a stable machine-readable code.
type AppError interface {
	error
	HTTPCode() int     // HTTP status code equivalent
	ErrorCode() string // Stable business error code
}

// ClientError marks caller-correctable failures (4xx equivalents).
type ClientError interface {
	AppError
	clientError()
}

// ServerError marks operator-visible failures (5xx equivalents). These are
// always logged with their full cause chain.
type ServerError interface {
	AppError
	Unwrap() error
	serverError()
}

type clientMarker struct{}

func (clientMarker) clientError() {}

type serverMarker struct{}

func (serverMarker) serverError() {}

// --- Client errors -------------------------------------------------------

// RegistrationContextNotFoundError is returned when no pending registration
// context exists for the device, or the context has expired. The caller must
// restart discovery.
type RegistrationContextNotFoundError struct {
	clientMarker
	DeviceID string
}

func (e *RegistrationContextNotFoundError) Error() string {
	return fmt.Sprintf("registration context not found for device: %s", e.DeviceID)
}
func (e *RegistrationContextNotFoundError) HTTPCode() int     { return http.StatusNotFound }
func (e *RegistrationContextNotFoundError) ErrorCode() string { return "REGISTRATION_CONTEXT_NOT_FOUND" }

// RegistrationContextUsedError is returned when the pending context was
// already consumed by an earlier registration attempt.
type RegistrationContextUsedError struct {
	clientMarker
	DeviceID string
}

func (e *RegistrationContextUsedError) Error() string {
	return fmt.Sprintf("registration context already used for device: %s", e.DeviceID)
}
func (e *RegistrationContextUsedError) HTTPCode() int     { return http.StatusBadRequest }
func (e *RegistrationContextUsedError) ErrorCode() string { return "REGISTRATION_CONTEXT_ALREADY_USED" }

// DeviceAlreadyRegisteredError is returned when the user already owns a
// registered device and force registration was not requested.
type DeviceAlreadyRegisteredError struct {
	clientMarker
	DeviceID string
}

func (e *DeviceAlreadyRegisteredError) Error() string {
	return fmt.Sprintf("device already registered for device: %s", e.DeviceID)
}
func (e *DeviceAlreadyRegisteredError) HTTPCode() int     { return http.StatusConflict }
func (e *DeviceAlreadyRegisteredError) ErrorCode() string { return "DEVICE_ALREADY_REGISTERED" }

// InvalidSignatureError is returned when a structurally valid signature does
// not match the challenge-bound payload.
type InvalidSignatureError struct {
	clientMarker
	DeviceID string
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("invalid signature for device: %s", e.DeviceID)
}
func (e *InvalidSignatureError) HTTPCode() int     { return http.StatusBadRequest }
func (e *InvalidSignatureError) ErrorCode() string { return "INVALID_SIGNATURE" }

// DeviceNotFoundError is returned when no device exists for the device ID.
type DeviceNotFoundError struct {
	clientMarker
	DeviceID string
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("device not found for device: %s", e.DeviceID)
}
func (e *DeviceNotFoundError) HTTPCode() int     { return http.StatusNotFound }
func (e *DeviceNotFoundError) ErrorCode() string { return "DEVICE_NOT_FOUND" }

// DeviceNotFoundForUserError is returned when the user owns no registered
// device.
type DeviceNotFoundForUserError struct {
	clientMarker
	UserID string
}

func (e *DeviceNotFoundForUserError) Error() string {
	return fmt.Sprintf("registered device not found for user: %s", e.UserID)
}
func (e *DeviceNotFoundForUserError) HTTPCode() int     { return http.StatusNotFound }
func (e *DeviceNotFoundForUserError) ErrorCode() string { return "DEVICE_NOT_FOUND_FOR_USER" }

// PublicKeyNotFoundError is returned when no public key is stored for the
// device.
type PublicKeyNotFoundError struct {
	clientMarker
	DeviceID string
}

func (e *PublicKeyNotFoundError) Error() string {
	return fmt.Sprintf("public key not found for device: %s", e.DeviceID)
}
func (e *PublicKeyNotFoundError) HTTPCode() int     { return http.StatusNotFound }
func (e *PublicKeyNotFoundError) ErrorCode() string { return "PUBLIC_KEY_NOT_FOUND" }

// InvalidEditScenarioError is returned when an edit targets a path outside
// the supported whitelist. It is raised before any mutation or provider call.
type InvalidEditScenarioError struct {
	clientMarker
	DeviceID string
	Path     string
}

func (e *InvalidEditScenarioError) Error() string {
	return fmt.Sprintf("invalid edit path %q for device: %s", e.Path, e.DeviceID)
}
func (e *InvalidEditScenarioError) HTTPCode() int     { return http.StatusBadRequest }
func (e *InvalidEditScenarioError) ErrorCode() string { return "INVALID_EDIT_SCENARIO" }

// TokenNotValidError is returned when the presented challenge token is not a
// structurally valid compact JWT (two separators, three segments).
type TokenNotValidError struct {
	clientMarker
}

func (e *TokenNotValidError) Error() string     { return "token is not a valid JWT" }
func (e *TokenNotValidError) HTTPCode() int     { return http.StatusBadRequest }
func (e *TokenNotValidError) ErrorCode() string { return "TOKEN_NOT_A_JWT" }

// TokenSignatureError is returned when the challenge token signature does not
// verify against the trusted stored device key.
type TokenSignatureError struct {
	clientMarker
}

func (e *TokenSignatureError) Error() string     { return "token signature validation failed" }
func (e *TokenSignatureError) HTTPCode() int     { return http.StatusUnauthorized }
func (e *TokenSignatureError) ErrorCode() string { return "TOKEN_SIGNATURE_INVALID" }

// TokenExpiredError is returned when the challenge token expiration claim is
// not in the future.
type TokenExpiredError struct {
	clientMarker
}

func (e *TokenExpiredError) Error() string     { return "token is expired" }
func (e *TokenExpiredError) HTTPCode() int     { return http.StatusUnauthorized }
func (e *TokenExpiredError) ErrorCode() string { return "TOKEN_EXPIRED" }

// TokenClaimError is returned when a required claim is absent from, or not
// parseable out of, a validated claim set.
type TokenClaimError struct {
	clientMarker
	Claim    string
	DeviceID string
	Cause    error
}

func (e *TokenClaimError) Error() string {
	return fmt.Sprintf("failed to get claim %q from the claim set received from device: %s", e.Claim, e.DeviceID)
}
func (e *TokenClaimError) HTTPCode() int     { return http.StatusBadRequest }
func (e *TokenClaimError) ErrorCode() string { return "TOKEN_CLAIM_VERIFICATION_FAILED" }
func (e *TokenClaimError) Unwrap() error     { return e.Cause }

// --- Server errors -------------------------------------------------------

// SignatureVerificationError is returned when the cryptographic subsystem
// fails to process the key or signature bytes. This is distinct from a
// non-matching signature, which is a client error.
type SignatureVerificationError struct {
	serverMarker
	DeviceID string
	Cause    error
}

func (e *SignatureVerificationError) Error() string {
	return fmt.Sprintf("error while verifying signature for device: %s", e.DeviceID)
}
func (e *SignatureVerificationError) HTTPCode() int     { return http.StatusInternalServerError }
func (e *SignatureVerificationError) ErrorCode() string { return "SIGNATURE_VERIFICATION_FAILED" }
func (e *SignatureVerificationError) Unwrap() error     { return e.Cause }

// UserResolutionError is returned when the external user resolver fails or
// resolves a blank user ID.
type UserResolutionError struct {
	serverMarker
	Username string
	Cause    error
}

func (e *UserResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve user ID for username: %s", e.Username)
}
func (e *UserResolutionError) HTTPCode() int     { return http.StatusInternalServerError }
func (e *UserResolutionError) ErrorCode() string { return "USER_RESOLUTION_FAILED" }
func (e *UserResolutionError) Unwrap() error     { return e.Cause }

// DeviceRegistrationError is returned when registration fails after input
// validation, for example on persistence failure.
type DeviceRegistrationError struct {
	serverMarker
	DeviceID string
	Cause    error
}

func (e *DeviceRegistrationError) Error() string {
	return fmt.Sprintf("failed to register device: %s", e.DeviceID)
}
func (e *DeviceRegistrationError) HTTPCode() int     { return http.StatusInternalServerError }
func (e *DeviceRegistrationError) ErrorCode() string { return "DEVICE_REGISTRATION_FAILED" }
func (e *DeviceRegistrationError) Unwrap() error     { return e.Cause }

// PersistenceError wraps device store failures outside of registration.
type PersistenceError struct {
	serverMarker
	Op    string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("device store operation %s failed", e.Op)
}
func (e *PersistenceError) HTTPCode() int     { return http.StatusInternalServerError }
func (e *PersistenceError) ErrorCode() string { return "DEVICE_STORE_FAILED" }
func (e *PersistenceError) Unwrap() error     { return e.Cause }

// --- Provider errors -----------------------------------------------------

// ProviderSendError is the generic push delivery failure.
type ProviderSendError struct {
	serverMarker
	Provider string
	Cause    error
}

func (e *ProviderSendError) Error() string {
	return fmt.Sprintf("failed to send the push notification via provider: %s", e.Provider)
}
func (e *ProviderSendError) HTTPCode() int     { return http.StatusInternalServerError }
func (e *ProviderSendError) ErrorCode() string { return "PUSH_NOTIFICATION_SEND_FAILED" }
func (e *ProviderSendError) Unwrap() error     { return e.Cause }

// InvalidDeviceHandleError is returned when the device handle is not valid
// for the configured push provider.
type InvalidDeviceHandleError struct {
	serverMarker
	Provider string
	Cause    error
}

func (e *InvalidDeviceHandleError) Error() string {
	return fmt.Sprintf("device handle is not valid for the configured push provider: %s", e.Provider)
}
func (e *InvalidDeviceHandleError) HTTPCode() int     { return http.StatusInternalServerError }
func (e *InvalidDeviceHandleError) ErrorCode() string { return "PUSH_INVALID_DEVICE_HANDLE" }
func (e *InvalidDeviceHandleError) Unwrap() error     { return e.Cause }

// DeviceHandleExpiredError is returned when the device handle has expired at
// the provider and the device must re-register.
type DeviceHandleExpiredError struct {
	serverMarker
	Provider string
	Cause    error
}

func (e *DeviceHandleExpiredError) Error() string {
	return fmt.Sprintf("device handle expired or re-registration required for provider: %s", e.Provider)
}
func (e *DeviceHandleExpiredError) HTTPCode() int     { return http.StatusInternalServerError }
func (e *DeviceHandleExpiredError) ErrorCode() string { return "PUSH_DEVICE_HANDLE_EXPIRED" }
func (e *DeviceHandleExpiredError) Unwrap() error     { return e.Cause }

// MissingPropertyError is returned when a required provider configuration
// property is absent.
type MissingPropertyError struct {
	serverMarker
	Property string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("required property is missing in the push provider configuration: %s", e.Property)
}
func (e *MissingPropertyError) HTTPCode() int     { return http.StatusInternalServerError }
func (e *MissingPropertyError) ErrorCode() string { return "PUSH_PROVIDER_PROPERTY_MISSING" }
func (e *MissingPropertyError) Unwrap() error     { return nil }

// SecretOperationError wraps secret vault failures in the provider secret
// pipeline. Op is one of "store", "retrieve" or "delete".
type SecretOperationError struct {
	serverMarker
	Op    string
	Cause error
}

func (e *SecretOperationError) Error() string {
	return fmt.Sprintf("failed to %s the secrets of the push provider", e.Op)
}
func (e *SecretOperationError) HTTPCode() int     { return http.StatusInternalServerError }
func (e *SecretOperationError) ErrorCode() string { return "PUSH_PROVIDER_SECRET_FAILED" }
func (e *SecretOperationError) Unwrap() error     { return e.Cause }
