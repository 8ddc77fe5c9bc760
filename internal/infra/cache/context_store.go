// Package cache implements the registration context store as a two tier
// cache: a tenant partitioned in-process map in front of an optional Redis
// tier shared across instances.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"pushgate/internal/domain/entity"
	"pushgate/internal/domain/repository"
)

const redisKeyPrefix = "pushgate:regctx"

// durableStore is the slice of the Redis client used by the store. Narrow on
// purpose so tests can fake it without a live server.
type durableStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

var _ durableStore = (redis.UniversalClient)(nil)

// persistedContext is the Redis payload. ExpiresAt is carried explicitly so
// freshness never depends on the Redis TTL alone.
type persistedContext struct {
	Context   entity.RegistrationContext `json:"context"`
	ExpiresAt time.Time                  `json:"expiresAt"`
}

type localEntry struct {
	rc        entity.RegistrationContext
	expiresAt time.Time
}

// twoTierContextStore keeps pending registration contexts in a per-tenant
// in-process map, mirrored into Redis when a client is configured. Entries in
// either tier are returned only while unexpired.
type twoTierContextStore struct {
	mu      sync.Mutex
	tenants map[string]map[string]localEntry

	durable durableStore
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewRegistrationContextStore is the constructor for twoTierContextStore.
// durable may be nil, in which case only the in-process tier is used.
func NewRegistrationContextStore(durable durableStore, ttl time.Duration, logger *slog.Logger) repository.RegistrationContextStore {
	return &twoTierContextStore{
		tenants: make(map[string]map[string]localEntry),
		durable: durable,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// Store records rc for deviceID within tenantDomain, replacing any previous
// entry and restarting its TTL.
func (s *twoTierContextStore) Store(ctx context.Context, deviceID string, rc *entity.RegistrationContext, tenantDomain string) error {
	if rc == nil {
		return errors.New("registration context must not be nil")
	}

	expiresAt := s.now().Add(s.ttl)

	s.mu.Lock()
	tenant, ok := s.tenants[tenantDomain]
	if !ok {
		tenant = make(map[string]localEntry)
		s.tenants[tenantDomain] = tenant
	}
	tenant[deviceID] = localEntry{rc: *rc, expiresAt: expiresAt}
	s.mu.Unlock()

	if s.durable == nil {
		return nil
	}

	payload, err := json.Marshal(persistedContext{Context: *rc, ExpiresAt: expiresAt})
	if err != nil {
		return errors.Wrap(err, "failed to marshal registration context")
	}

	if err := s.durable.Set(ctx, s.key(tenantDomain, deviceID), payload, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to store registration context")
	}

	return nil
}

// Lookup returns the pending context for deviceID, or (nil, nil) when no
// unexpired entry exists in either tier. A durable hit repopulates the
// in-process tier.
func (s *twoTierContextStore) Lookup(ctx context.Context, deviceID, tenantDomain string) (*entity.RegistrationContext, error) {
	now := s.now()

	s.mu.Lock()
	if tenant, ok := s.tenants[tenantDomain]; ok {
		if entry, ok := tenant[deviceID]; ok {
			if entry.expiresAt.After(now) {
				rc := entry.rc
				s.mu.Unlock()

				return &rc, nil
			}
			delete(tenant, deviceID)
		}
	}
	s.mu.Unlock()

	if s.durable == nil {
		return nil, nil
	}

	payload, err := s.durable.Get(ctx, s.key(tenantDomain, deviceID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to look up registration context")
	}

	var persisted persistedContext
	if err := json.Unmarshal([]byte(payload), &persisted); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal registration context")
	}

	// The durable entry counts only while it is still fresh.
	if !persisted.ExpiresAt.After(now) {
		return nil, nil
	}

	s.mu.Lock()
	tenant, ok := s.tenants[tenantDomain]
	if !ok {
		tenant = make(map[string]localEntry)
		s.tenants[tenantDomain] = tenant
	}
	tenant[deviceID] = localEntry{rc: persisted.Context, expiresAt: persisted.ExpiresAt}
	s.mu.Unlock()

	rc := persisted.Context

	return &rc, nil
}

// Clear removes the entry for deviceID from both tiers. Clearing an absent
// key is a no-op.
func (s *twoTierContextStore) Clear(ctx context.Context, deviceID, tenantDomain string) error {
	s.mu.Lock()
	if tenant, ok := s.tenants[tenantDomain]; ok {
		delete(tenant, deviceID)
		if len(tenant) == 0 {
			delete(s.tenants, tenantDomain)
		}
	}
	s.mu.Unlock()

	if s.durable == nil {
		return nil
	}

	if err := s.durable.Del(ctx, s.key(tenantDomain, deviceID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return errors.Wrap(err, "failed to clear registration context")
	}

	return nil
}

func (s *twoTierContextStore) key(tenantDomain, deviceID string) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, tenantDomain, deviceID)
}
