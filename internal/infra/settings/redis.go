package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"wabalerts/internal/common"
	"wabalerts/internal/domain/notification"

	"github.com/redis/go-redis/v9"
)

var _ notification.SettingsStore = (*RedisStore)(nil)

// RedisStore keeps the settings document as JSON under a single Redis key so
// the admin side can change rules without restarting the service.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-backed settings store.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// NewRedisClient opens a client with the given connection settings.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NotificationRules returns the rules of the stored document.
func (s *RedisStore) NotificationRules(ctx context.Context) (map[notification.RuleKey]notification.NotificationRule, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Notifications, nil
}

// GlobalSettings returns the global settings of the stored document.
func (s *RedisStore) GlobalSettings(ctx context.Context) (*notification.GlobalSettings, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return &doc.Global, nil
}

// Snapshot returns the global settings and rules of one read of the document.
func (s *RedisStore) Snapshot(ctx context.Context) (*notification.SettingsSnapshot, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return &notification.SettingsSnapshot{Global: doc.Global, Rules: doc.Notifications}, nil
}

// Put replaces the stored document.
func (s *RedisStore) Put(ctx context.Context, doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("storing settings at %s: %w", s.key, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) load(ctx context.Context) (*Document, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, common.NewConfigurationError(s.key, "settings document not found in redis")
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings from %s: %w", s.key, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, common.NewConfigurationError(s.key, "settings document is not valid JSON: "+err.Error())
	}
	return &doc, nil
}
