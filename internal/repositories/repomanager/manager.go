package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophcaptcha/internal/common"
	"github.com/dmitrijs2005/gophcaptcha/internal/config"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/captchas"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/clients"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/tokens"
)

// RepositoryManager vends repositories bound to one store handle. Inside
// WithinTx the manager passed to fn is bound to the transaction, so every
// write made through it commits or rolls back together.
type RepositoryManager interface {
	Clients() clients.Repository
	Captchas() captchas.Repository
	Tokens() tokens.Repository

	WithinTx(ctx context.Context, fn func(ctx context.Context, rm RepositoryManager) error) error
	RunMigrations(ctx context.Context) error
	Close() error
}

// Open connects to the store selected by cfg.Storage.
func Open(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepositoryManager(db), nil
	case config.StorageRedis:
		client, err := OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return NewRedisRepositoryManager(client), nil
	default:
		return nil, fmt.Errorf("storage %q: %w", cfg.Storage, common.ErrInvalidConfiguration)
	}
}
