package repository

import (
	"context"

	"pushgate/internal/domain/entity"
)

// RegistrationContextStore is the ephemeral, single-use key/value store for
// pending registrations, scoped per tenant.
//
// Lookup returns (nil, nil) when the entry is absent or past its TTL.
// Clear is idempotent: clearing an absent key is a no-op, not an error.
// Operations on a single key are atomic; concurrent registration attempts
// for the same device ID rely on this for their consume-once guarantee.
type RegistrationContextStore interface {
	Store(ctx context.Context, deviceID string, rc *entity.RegistrationContext, tenantDomain string) error
	Lookup(ctx context.Context, deviceID, tenantDomain string) (*entity.RegistrationContext, error)
	Clear(ctx context.Context, deviceID, tenantDomain string) error
}
