package captchas

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophcaptcha/internal/common"
	"github.com/dmitrijs2005/gophcaptcha/internal/models"
	"github.com/dmitrijs2005/gophcaptcha/internal/redisx"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/clients"
)

type record struct {
	ID      int64     `cbor:"id"`
	OwnerID string    `cbor:"owner_id"`
	Answer  string    `cbor:"answer"`
	Created time.Time `cbor:"created"`
	Solved  bool      `cbor:"solved"`
	Version int64     `cbor:"version"`
}

func key(id int64) string {
	return redisx.Key("captcha", strconv.FormatInt(id, 10))
}

type RedisRepository struct {
	s *redisx.Session
}

func NewRedisRepository(s *redisx.Session) *RedisRepository {
	return &RedisRepository{s: s}
}

func (r *RedisRepository) Create(ctx context.Context, captcha *models.Captcha) (*models.Captcha, error) {
	id, err := r.s.Next(ctx, "captcha")
	if err != nil {
		return nil, err
	}

	rec := record{
		ID:      id,
		OwnerID: captcha.OwnerID,
		Answer:  captcha.Answer,
		Created: captcha.Created.UTC(),
		Solved:  captcha.Solved,
		Version: 1,
	}
	if err := r.s.Store(ctx, key(id), rec); err != nil {
		return nil, err
	}

	captcha.ID = id
	captcha.Version = 1
	return captcha, nil
}

func (r *RedisRepository) GetByOwnerAndID(ctx context.Context, ownerID string, id int64) (*models.Captcha, error) {
	var rec record
	if err := r.s.Load(ctx, key(id), &rec); err != nil {
		return nil, err
	}
	if rec.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}

	owner, err := clients.NewRedisRepository(r.s).GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return &models.Captcha{
		ID:      rec.ID,
		OwnerID: rec.OwnerID,
		Owner:   owner,
		Answer:  rec.Answer,
		Created: rec.Created,
		Solved:  rec.Solved,
		Version: rec.Version,
	}, nil
}

func (r *RedisRepository) Update(ctx context.Context, captcha *models.Captcha) error {
	err := redisx.Atomic(ctx, r.s, func(ctx context.Context, s *redisx.Session) error {
		var rec record
		if err := s.Load(ctx, key(captcha.ID), &rec); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrVersionConflict
			}
			return err
		}
		if rec.Version != captcha.Version {
			return common.ErrVersionConflict
		}

		rec.Solved = captcha.Solved
		rec.Version++
		return s.Store(ctx, key(captcha.ID), rec)
	})
	if err != nil {
		return fmt.Errorf("captcha %d: %w", captcha.ID, err)
	}

	captcha.Version++
	return nil
}
