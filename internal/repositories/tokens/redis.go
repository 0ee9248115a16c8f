package tokens

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophcaptcha/internal/common"
	"github.com/dmitrijs2005/gophcaptcha/internal/models"
	"github.com/dmitrijs2005/gophcaptcha/internal/redisx"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/captchas"
)

type record struct {
	ID              int64  `cbor:"id"`
	CaptchaID       int64  `cbor:"captcha_id"`
	AnswerToCaptcha string `cbor:"answer_to_captcha"`
	Activated       bool   `cbor:"activated"`
	Version         int64  `cbor:"version"`
}

func key(id int64) string {
	return redisx.Key("token", strconv.FormatInt(id, 10))
}

type RedisRepository struct {
	s *redisx.Session
}

func NewRedisRepository(s *redisx.Session) *RedisRepository {
	return &RedisRepository{s: s}
}

func (r *RedisRepository) Create(ctx context.Context, token *models.VerificationToken) (*models.VerificationToken, error) {
	id, err := r.s.Next(ctx, "token")
	if err != nil {
		return nil, err
	}

	rec := record{
		ID:              id,
		CaptchaID:       token.CaptchaID,
		AnswerToCaptcha: token.AnswerToCaptcha,
		Activated:       token.Activated,
		Version:         1,
	}
	if err := r.s.Store(ctx, key(id), rec); err != nil {
		return nil, err
	}

	token.ID = id
	token.Version = 1
	return token, nil
}

func (r *RedisRepository) GetByKeys(ctx context.Context, ownerID string, captchaID, tokenID int64) (*models.VerificationToken, error) {
	var rec record
	if err := r.s.Load(ctx, key(tokenID), &rec); err != nil {
		return nil, err
	}
	if rec.CaptchaID != captchaID {
		return nil, common.ErrorNotFound
	}

	captcha, err := captchas.NewRedisRepository(r.s).GetByOwnerAndID(ctx, ownerID, captchaID)
	if err != nil {
		return nil, err
	}

	return &models.VerificationToken{
		ID:              rec.ID,
		AnswerToCaptcha: rec.AnswerToCaptcha,
		CaptchaID:       rec.CaptchaID,
		Captcha:         captcha,
		Activated:       rec.Activated,
		Version:         rec.Version,
	}, nil
}

func (r *RedisRepository) Update(ctx context.Context, token *models.VerificationToken) error {
	err := redisx.Atomic(ctx, r.s, func(ctx context.Context, s *redisx.Session) error {
		var rec record
		if err := s.Load(ctx, key(token.ID), &rec); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrVersionConflict
			}
			return err
		}
		if rec.Version != token.Version {
			return common.ErrVersionConflict
		}

		rec.Activated = token.Activated
		rec.Version++
		return s.Store(ctx, key(token.ID), rec)
	})
	if err != nil {
		return fmt.Errorf("token %d: %w", token.ID, err)
	}

	token.Version++
	return nil
}
