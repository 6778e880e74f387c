package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telegram-identity-bot/internal/domain/model"
	"telegram-identity-bot/internal/domain/ports/repository"
	"telegram-identity-bot/internal/infra/metrics"
)

var _ repository.ProfileRepository = (*profileCacheDecorator)(nil)

// profileCacheDecorator is a read-through cache over the profile repository.
// Profile fields change rarely but are read on almost every message, so a
// short-lived cache takes most lookups off the store.
type profileCacheDecorator struct {
	inner repository.ProfileRepository
	cache RedisClient
	ttl   time.Duration
}

func NewProfileCacheDecorator(inner repository.ProfileRepository, cache RedisClient, ttl time.Duration) repository.ProfileRepository {
	return &profileCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func loginKey(chatID int64) string { return fmt.Sprintf("profile:login:%d", chatID) }
func nameKey(login string) string  { return fmt.Sprintf("profile:name:%s", login) }

// Writes invalidate before hitting the store so a failed write cannot leave
// a stale cached value behind.
func (d *profileCacheDecorator) SaveLogin(ctx context.Context, chatID int64, login string) error {
	_ = d.cache.Del(ctx, loginKey(chatID))
	return d.inner.SaveLogin(ctx, chatID, login)
}

func (d *profileCacheDecorator) FindLogin(ctx context.Context, chatID int64) (string, error) {
	key := loginKey(chatID)
	if val, err := d.cache.Get(ctx, key); err == nil {
		metrics.IncCacheRequest("login", "hit")
		return val, nil
	}

	metrics.IncCacheRequest("login", "miss")
	login, err := d.inner.FindLogin(ctx, chatID)
	if err != nil {
		return "", err
	}
	if login != "" {
		_ = d.cache.Set(ctx, key, login, d.ttl)
	}
	return login, nil
}

func (d *profileCacheDecorator) SaveName(ctx context.Context, login string, name model.FullName) error {
	_ = d.cache.Del(ctx, nameKey(login))
	return d.inner.SaveName(ctx, login, name)
}

func (d *profileCacheDecorator) FindName(ctx context.Context, login string) (*model.FullName, error) {
	key := nameKey(login)
	if val, err := d.cache.Get(ctx, key); err == nil {
		metrics.IncCacheRequest("name", "hit")
		var name model.FullName
		if json.Unmarshal([]byte(val), &name) == nil {
			return &name, nil
		}
	}

	metrics.IncCacheRequest("name", "miss")
	name, err := d.inner.FindName(ctx, login)
	if err != nil {
		return nil, err
	}
	if name != nil {
		if bytes, err := json.Marshal(name); err == nil {
			_ = d.cache.Set(ctx, key, bytes, d.ttl)
		}
	}
	return name, nil
}
