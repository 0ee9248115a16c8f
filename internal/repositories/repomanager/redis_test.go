package repomanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/gophcaptcha/internal/common"
	"github.com/dmitrijs2005/gophcaptcha/internal/config"
	"github.com/dmitrijs2005/gophcaptcha/internal/models"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisManager(t *testing.T) (*RedisRepositoryManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	m := NewRedisRepositoryManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = m.Close() })
	return m, mr
}

func seedCaptcha(t *testing.T, rm RepositoryManager) *models.VerificationToken {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	owner, err := rm.Clients().Create(ctx, &models.Client{ID: "c-1", Secret: "s3cret", CreatedAt: now})
	require.NoError(t, err)
	captcha, err := rm.Captchas().Create(ctx, models.NewCaptcha(owner, "right", now))
	require.NoError(t, err)
	tok, err := rm.Tokens().Create(ctx, models.NewVerificationToken(captcha, "right"))
	require.NoError(t, err)
	return tok
}

func TestRedis_WithinTxWritesTogether(t *testing.T) {
	m, _ := newRedisManager(t)
	ctx := context.Background()
	tok := seedCaptcha(t, m)

	err := m.WithinTx(ctx, func(ctx context.Context, rm RepositoryManager) error {
		loaded, err := rm.Tokens().GetByKeys(ctx, "c-1", tok.CaptchaID, tok.ID)
		if err != nil {
			return err
		}
		loaded.Activated = true
		loaded.Captcha.Solved = true
		if err := rm.Tokens().Update(ctx, loaded); err != nil {
			return err
		}
		return rm.Captchas().Update(ctx, loaded.Captcha)
	})
	require.NoError(t, err)

	got, err := m.Tokens().GetByKeys(ctx, "c-1", tok.CaptchaID, tok.ID)
	require.NoError(t, err)
	assert.True(t, got.Activated)
	assert.True(t, got.Captcha.Solved)
}

func TestRedis_WithinTxErrorWritesNothing(t *testing.T) {
	m, _ := newRedisManager(t)
	ctx := context.Background()
	tok := seedCaptcha(t, m)
	boom := errors.New("boom")

	err := m.WithinTx(ctx, func(ctx context.Context, rm RepositoryManager) error {
		loaded, err := rm.Tokens().GetByKeys(ctx, "c-1", tok.CaptchaID, tok.ID)
		require.NoError(t, err)
		loaded.Activated = true
		require.NoError(t, rm.Tokens().Update(ctx, loaded))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := m.Tokens().GetByKeys(ctx, "c-1", tok.CaptchaID, tok.ID)
	require.NoError(t, err)
	assert.False(t, got.Activated)
}

func TestRedis_WithinTxConflict(t *testing.T) {
	m, _ := newRedisManager(t)
	ctx := context.Background()
	tok := seedCaptcha(t, m)

	err := m.WithinTx(ctx, func(ctx context.Context, rm RepositoryManager) error {
		loaded, err := rm.Tokens().GetByKeys(ctx, "c-1", tok.CaptchaID, tok.ID)
		require.NoError(t, err)

		// a concurrent activation lands first
		other, err := m.Tokens().GetByKeys(ctx, "c-1", tok.CaptchaID, tok.ID)
		require.NoError(t, err)
		other.Activated = true
		require.NoError(t, m.Tokens().Update(ctx, other))

		loaded.Activated = true
		return rm.Tokens().Update(ctx, loaded)
	})
	assert.ErrorIs(t, err, common.ErrVersionConflict)
}

func TestRedis_RunMigrationsPings(t *testing.T) {
	m, mr := newRedisManager(t)
	require.NoError(t, m.RunMigrations(context.Background()))

	mr.Close()
	assert.Error(t, m.RunMigrations(context.Background()))
}

func TestOpenRedis(t *testing.T) {
	orig := redisNewClient
	defer func() { redisNewClient = orig }()

	t.Run("ok", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		var got *redis.Options
		redisNewClient = func(opt *redis.Options) *redis.Client {
			got = opt
			return client
		}
		mock.ExpectPing().SetVal("PONG")

		_, err := OpenRedis(context.Background(), "localhost:6379", "pw", 2)
		require.NoError(t, err)
		assert.Equal(t, "localhost:6379", got.Addr)
		assert.Equal(t, "pw", got.Password)
		assert.Equal(t, 2, got.DB)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping fails", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		redisNewClient = func(opt *redis.Options) *redis.Client { return client }
		mock.ExpectPing().SetErr(errors.New("connection refused"))

		_, err := OpenRedis(context.Background(), "localhost:6379", "", 0)
		assert.ErrorContains(t, err, "failed to connect to redis")
	})
}

func TestOpen(t *testing.T) {
	orig := redisNewClient
	defer func() { redisNewClient = orig }()

	client, mock := redismock.NewClientMock()
	redisNewClient = func(opt *redis.Options) *redis.Client { return client }
	mock.ExpectPing().SetVal("PONG")

	rm, err := Open(context.Background(), &config.Config{Storage: config.StorageRedis, RedisAddr: "localhost:6379"})
	require.NoError(t, err)
	assert.IsType(t, &RedisRepositoryManager{}, rm)

	_, err = Open(context.Background(), &config.Config{Storage: "mongo"})
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}
