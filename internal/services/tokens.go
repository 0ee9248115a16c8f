package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcaptcha/internal/common"
	"github.com/dmitrijs2005/gophcaptcha/internal/logging"
	"github.com/dmitrijs2005/gophcaptcha/internal/models"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/repomanager"
	"github.com/sethvargo/go-retry"
)

const retryBase = 10 * time.Millisecond

// TokenService creates, activates and redeems verification tokens.
type TokenService struct {
	repomanager repomanager.RepositoryManager
	captchas    *CaptchaService
	auth        models.Authenticator
	timeout     time.Duration
	maxRetries  uint64
	log         logging.Logger
	now         func() time.Time
}

func NewTokenService(rm repomanager.RepositoryManager, captchas *CaptchaService, a models.Authenticator,
	timeout time.Duration, maxRetries int, log logging.Logger) *TokenService {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &TokenService{
		repomanager: rm,
		captchas:    captchas,
		auth:        a,
		timeout:     timeout,
		maxRetries:  uint64(maxRetries),
		log:         log.With("module", "tokens"),
		now:         time.Now,
	}
}

// Create records answer as an attempt on an active captcha. The answer is
// not checked until the token is activated.
func (s *TokenService) Create(ctx context.Context, ownerID string, captchaID int64, answer string) (*models.VerificationToken, error) {
	captcha, err := s.captchas.FindActiveCaptcha(ctx, ownerID, captchaID)
	if err != nil {
		return nil, err
	}

	token, err := s.repomanager.Tokens().Create(ctx, models.NewVerificationToken(captcha, answer))
	if err != nil {
		return nil, fmt.Errorf("error creating token: %w", err)
	}

	s.log.Info(ctx, "token created", "client_id", ownerID, "captcha_id", captchaID, "token_id", token.ID)
	return token, nil
}

// Activate checks the token's answer against its captcha on behalf of the
// owner presenting credential. Token and captcha are marked together in
// one transaction. A concurrent update restarts the attempt from a fresh
// read; once the retries are used up common.ErrVersionConflict is
// returned.
func (s *TokenService) Activate(ctx context.Context, ownerID string, captchaID, tokenID int64, credential string) (models.CheckResult, error) {
	if err := checkClientID(ownerID); err != nil {
		return models.CheckResult{}, err
	}

	log := s.log.With("client_id", ownerID, "captcha_id", captchaID, "token_id", tokenID)

	var result models.CheckResult
	backoff := retry.WithMaxRetries(s.maxRetries, retry.WithJitterPercent(25, retry.NewExponential(retryBase)))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.repomanager.WithinTx(ctx, func(ctx context.Context, rm repomanager.RepositoryManager) error {
			token, err := rm.Tokens().GetByKeys(ctx, ownerID, captchaID, tokenID)
			if err != nil {
				return err
			}

			result, err = token.Activate(s.auth, credential, s.now(), s.timeout)
			if err != nil {
				return err
			}

			if err := rm.Tokens().Update(ctx, token); err != nil {
				return err
			}
			return rm.Captchas().Update(ctx, token.Captcha)
		})
		if errors.Is(err, common.ErrVersionConflict) {
			log.Warn(ctx, "concurrent update, retrying activation")
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		if common.Kind(err) == common.KindRejected {
			log.Info(ctx, "activation rejected", "reason", err.Error())
		}
		return models.CheckResult{}, err
	}

	log.Info(ctx, "token activated", "success", result.Success)
	return result, nil
}

// ResultOfCheck returns the verdict of an activated token.
func (s *TokenService) ResultOfCheck(ctx context.Context, ownerID string, captchaID, tokenID int64) (models.CheckResult, error) {
	if err := checkClientID(ownerID); err != nil {
		return models.CheckResult{}, err
	}

	token, err := s.repomanager.Tokens().GetByKeys(ctx, ownerID, captchaID, tokenID)
	if err != nil {
		return models.CheckResult{}, err
	}

	return token.ResultOfCaptchaCheck()
}
