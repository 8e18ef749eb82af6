package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/ports"
)

// sessionTTL bounds how long an abandoned session's credentials linger in
// Redis. Matches the clinic API's refresh-token lifetime.
const sessionTTL = 7 * 24 * time.Hour

// RedisStore keeps one session's credential pair in Redis under
// session:<id>:access and session:<id>:refresh, so sessions survive a
// restart of the dashboard service.
type RedisStore struct {
	client    *redis.Client
	sessionID string
}

var _ ports.CredentialStore = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, sessionID string) *RedisStore {
	return &RedisStore{client: client, sessionID: sessionID}
}

func (s *RedisStore) Get(ctx context.Context, kind domain.CredentialKind) (string, error) {
	key, err := s.key(kind)
	if err != nil {
		return "", err
	}
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("read credential from redis: %w", err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, kind domain.CredentialKind, value string) error {
	key, err := s.key(kind)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, value, sessionTTL).Err(); err != nil {
		return fmt.Errorf("write credential to redis: %w", err)
	}
	return nil
}

// SetPair writes both credentials in one pipelined transaction so no reader
// sees a half-updated pair.
func (s *RedisStore) SetPair(ctx context.Context, pair domain.CredentialPair) error {
	accessKey, _ := s.key(domain.CredentialAccess)
	refreshKey, _ := s.key(domain.CredentialRefresh)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, accessKey, pair.Access, sessionTTL)
	pipe.Set(ctx, refreshKey, pair.Refresh, sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write credential pair to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	accessKey, _ := s.key(domain.CredentialAccess)
	refreshKey, _ := s.key(domain.CredentialRefresh)

	if err := s.client.Del(ctx, accessKey, refreshKey).Err(); err != nil {
		return fmt.Errorf("clear credentials in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) key(kind domain.CredentialKind) (string, error) {
	switch kind {
	case domain.CredentialAccess, domain.CredentialRefresh:
		return fmt.Sprintf("session:%s:%s", s.sessionID, kind), nil
	default:
		return "", fmt.Errorf("unknown credential kind %q", kind)
	}
}
