package clients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcaptcha/internal/common"
	"github.com/dmitrijs2005/gophcaptcha/internal/models"
	"github.com/dmitrijs2005/gophcaptcha/internal/redisx"
)

type record struct {
	ID        string    `cbor:"id"`
	Secret    string    `cbor:"secret"`
	Version   int64     `cbor:"version"`
	CreatedAt time.Time `cbor:"created_at"`
}

func key(id string) string {
	return redisx.Key("client", id)
}

type RedisRepository struct {
	s *redisx.Session
}

func NewRedisRepository(s *redisx.Session) *RedisRepository {
	return &RedisRepository{s: s}
}

func (r *RedisRepository) Create(ctx context.Context, client *models.Client) (*models.Client, error) {
	err := redisx.Atomic(ctx, r.s, func(ctx context.Context, s *redisx.Session) error {
		var existing record
		switch err := s.Load(ctx, key(client.ID), &existing); {
		case err == nil:
			return fmt.Errorf("client %s already exists: %w", client.ID, common.ErrVersionConflict)
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		return s.Store(ctx, key(client.ID), record{
			ID:        client.ID,
			Secret:    client.Secret,
			Version:   1,
			CreatedAt: client.CreatedAt.UTC(),
		})
	})
	if err != nil {
		return nil, err
	}

	client.Version = 1
	return client, nil
}

func (r *RedisRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	var rec record
	if err := r.s.Load(ctx, key(id), &rec); err != nil {
		return nil, err
	}

	return &models.Client{
		ID:        rec.ID,
		Secret:    rec.Secret,
		Version:   rec.Version,
		CreatedAt: rec.CreatedAt,
	}, nil
}
