package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcaptcha/internal/challenge"
	"github.com/dmitrijs2005/gophcaptcha/internal/logging"
	"github.com/dmitrijs2005/gophcaptcha/internal/models"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/repomanager"
)

// CaptchaService issues captchas and looks up the ones still open.
type CaptchaService struct {
	repomanager repomanager.RepositoryManager
	generator   *challenge.Generator
	timeout     time.Duration
	log         logging.Logger
	now         func() time.Time
}

func NewCaptchaService(rm repomanager.RepositoryManager, gen *challenge.Generator, timeout time.Duration, log logging.Logger) *CaptchaService {
	return &CaptchaService{
		repomanager: rm,
		generator:   gen,
		timeout:     timeout,
		log:         log.With("module", "captchas"),
		now:         time.Now,
	}
}

// CreateNew issues a captcha with fresh random text to an existing client.
func (s *CaptchaService) CreateNew(ctx context.Context, ownerID string) (*models.Captcha, error) {
	if err := checkClientID(ownerID); err != nil {
		return nil, err
	}

	owner, err := s.repomanager.Clients().GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	answer, err := s.generator.Next()
	if err != nil {
		return nil, fmt.Errorf("generate captcha: %w", err)
	}

	captcha, err := s.repomanager.Captchas().Create(ctx, models.NewCaptcha(owner, answer, s.now()))
	if err != nil {
		return nil, fmt.Errorf("error creating captcha: %w", err)
	}

	s.log.Info(ctx, "captcha created", "client_id", ownerID, "captcha_id", captcha.ID)
	return captcha, nil
}

// FindActiveCaptcha returns the captcha if it exists for ownerID, is not
// solved and has not timed out.
func (s *CaptchaService) FindActiveCaptcha(ctx context.Context, ownerID string, captchaID int64) (*models.Captcha, error) {
	if err := checkClientID(ownerID); err != nil {
		return nil, err
	}

	captcha, err := s.repomanager.Captchas().GetByOwnerAndID(ctx, ownerID, captchaID)
	if err != nil {
		return nil, err
	}
	if err := captcha.CheckSolved(); err != nil {
		return nil, err
	}
	if err := captcha.CheckTimeout(s.now(), s.timeout); err != nil {
		return nil, err
	}

	return captcha, nil
}
