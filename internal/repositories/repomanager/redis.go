package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophcaptcha/internal/redisx"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/captchas"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/clients"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/tokens"
	"github.com/redis/go-redis/v9"
)

// RedisRepositoryManager vends Redis repositories. Inside WithinTx they
// share one WATCH/MULTI/EXEC session.
type RedisRepositoryManager struct {
	s *redisx.Session
}

func NewRedisRepositoryManager(client *redis.Client) *RedisRepositoryManager {
	return &RedisRepositoryManager{s: redisx.NewSession(client)}
}

// redisNewClient is a seam for tests.
var redisNewClient = redis.NewClient

// OpenRedis connects to addr and checks it answers PING.
func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redisNewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (m *RedisRepositoryManager) Clients() clients.Repository {
	return clients.NewRedisRepository(m.s)
}

func (m *RedisRepositoryManager) Captchas() captchas.Repository {
	return captchas.NewRedisRepository(m.s)
}

func (m *RedisRepositoryManager) Tokens() tokens.Repository {
	return tokens.NewRedisRepository(m.s)
}

func (m *RedisRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, rm RepositoryManager) error) error {
	return redisx.Atomic(ctx, m.s, func(ctx context.Context, s *redisx.Session) error {
		if s == m.s {
			return fn(ctx, m)
		}
		return fn(ctx, &RedisRepositoryManager{s: s})
	})
}

// RunMigrations only checks connectivity: Redis keys need no schema.
func (m *RedisRepositoryManager) RunMigrations(ctx context.Context) error {
	if err := m.s.Client().Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (m *RedisRepositoryManager) Close() error {
	return m.s.Client().Close()
}
