// Package vault implements the secret vault on the shared Redis instance.
package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"pushgate/internal/domain/repository"
)

const vaultKeyPrefix = "pushgate:secret"

// secretClient is the slice of the Redis client used by the vault.
type secretClient interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// redisVault stores provider secrets keyed by (secret type, name). Values are
// opaque to the vault and never logged.
type redisVault struct {
	client secretClient
}

// NewSecretVault is the constructor for redisVault.
func NewSecretVault(client secretClient) repository.SecretVault {
	return &redisVault{client: client}
}

// Exists reports whether a secret is filed under (secretType, name).
func (v *redisVault) Exists(ctx context.Context, secretType, name string) (bool, error) {
	n, err := v.client.Exists(ctx, v.key(secretType, name)).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to check secret existence")
	}

	return n > 0, nil
}

// Store files a new secret. Secrets have no TTL; they live until deleted.
func (v *redisVault) Store(ctx context.Context, secretType, name, value string) error {
	if err := v.client.Set(ctx, v.key(secretType, name), value, 0).Err(); err != nil {
		return errors.Wrap(err, "failed to store secret")
	}

	return nil
}

// Update replaces an existing secret.
func (v *redisVault) Update(ctx context.Context, secretType, name, value string) error {
	return v.Store(ctx, secretType, name, value)
}

// Retrieve resolves a secret back to its value.
func (v *redisVault) Retrieve(ctx context.Context, secretType, name string) (string, error) {
	value, err := v.client.Get(ctx, v.key(secretType, name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errors.New("secret not found")
		}

		return "", errors.Wrap(err, "failed to retrieve secret")
	}

	return value, nil
}

// Delete removes a secret. Deleting an absent secret is a no-op.
func (v *redisVault) Delete(ctx context.Context, secretType, name string) error {
	if err := v.client.Del(ctx, v.key(secretType, name)).Err(); err != nil {
		return errors.Wrap(err, "failed to delete secret")
	}

	return nil
}

func (v *redisVault) key(secretType, name string) string {
	return fmt.Sprintf("%s:%s:%s", vaultKeyPrefix, secretType, name)
}
