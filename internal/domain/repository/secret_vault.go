package repository

import (
	"context"
)

// SecretVault is the external store holding provider credentials. Secrets are
// keyed by (secret type, name); callers substitute the plaintext property
// with the opaque name on store and resolve it back on retrieve. Vault
// contents are never logged.
type SecretVault interface {
	Exists(ctx context.Context, secretType, name string) (bool, error)
	Store(ctx context.Context, secretType, name, value string) error
	Update(ctx context.Context, secretType, name, value string) error
	Retrieve(ctx context.Context, secretType, name string) (string, error)
	Delete(ctx context.Context, secretType, name string) error
}
