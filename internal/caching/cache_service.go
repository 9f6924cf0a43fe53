package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"userapi/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const tokenKeyPrefix = "userapi:token:"

// CacheService caches the user behind a token key so authenticated requests
// can skip the token lookup query.
type CacheService interface {
	// GetTokenUser returns nil, nil on a cache miss.
	GetTokenUser(ctx context.Context, key string) (*models.User, error)
	SetTokenUser(ctx context.Context, key string, user *models.User) error
	DeleteToken(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	// Enabled is false for the no-op cache.
	Enabled() bool
}

type redisCacheService struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient accepts either host:port or a redis:// (rediss://) URL.
// A non-empty password or non-zero db overrides the value in the URL.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	}
	if password != "" {
		opts.Password = password
	}
	if db != 0 {
		opts.DB = db
	}

	return redis.NewClient(opts), nil
}

func NewRedisCacheService(client *redis.Client, ttl time.Duration, logger *zap.Logger) CacheService {
	// Test initial connectivity
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis ping failed on initialization", zap.Error(err), zap.String("addr", client.Options().Addr))
	} else {
		logger.Debug("redis connection established", zap.String("addr", client.Options().Addr))
	}

	return &redisCacheService{client: client, ttl: ttl}
}

func tokenKey(key string) string {
	return fmt.Sprintf("%s%s", tokenKeyPrefix, key)
}

func (r *redisCacheService) GetTokenUser(ctx context.Context, key string) (*models.User, error) {
	data, err := r.client.Get(ctx, tokenKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *redisCacheService) SetTokenUser(ctx context.Context, key string, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, tokenKey(key), data, r.ttl).Err()
}

func (r *redisCacheService) DeleteToken(ctx context.Context, key string) error {
	return r.client.Del(ctx, tokenKey(key)).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) Enabled() bool {
	return true
}

type noopCacheService struct{}

// NewNoopCacheService is used when Redis is disabled. Every lookup misses.
func NewNoopCacheService() CacheService {
	return noopCacheService{}
}

func (noopCacheService) GetTokenUser(context.Context, string) (*models.User, error) {
	return nil, nil
}

func (noopCacheService) SetTokenUser(context.Context, string, *models.User) error {
	return nil
}

func (noopCacheService) DeleteToken(context.Context, string) error {
	return nil
}

func (noopCacheService) Ping(context.Context) error {
	return nil
}

func (noopCacheService) Enabled() bool {
	return false
}
