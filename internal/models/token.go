package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcaptcha/internal/common"
)

// VerificationToken records one answer attempt against a captcha. It can be
// activated once; afterwards anyone holding its keys can read the verdict.
type VerificationToken struct {
	ID              int64
	AnswerToCaptcha string
	CaptchaID       int64
	Captcha         *Captcha
	Activated       bool
	Version         int64
}

// NewVerificationToken returns a pending token for captcha carrying answer.
func NewVerificationToken(captcha *Captcha, answer string) *VerificationToken {
	return &VerificationToken{
		AnswerToCaptcha: answer,
		CaptchaID:       captcha.ID,
		Captcha:         captcha,
	}
}

// Activate solves the bound captcha with the token's own answer and marks
// the token activated. If the captcha refuses the attempt (authentication,
// already solved, expired) the error is returned and neither entity
// changes.
func (t *VerificationToken) Activate(a Authenticator, credential string, now time.Time, timeout time.Duration) (CheckResult, error) {
	if t.Activated {
		return CheckResult{}, fmt.Errorf("token %d: %w", t.ID, common.ErrAlreadyActivated)
	}
	if t.Captcha == nil {
		return CheckResult{}, fmt.Errorf("token %d: captcha not loaded: %w", t.ID, common.ErrorInternal)
	}

	result, err := t.Captcha.Solve(a, credential, t.AnswerToCaptcha, now, timeout)
	if err != nil {
		return CheckResult{}, err
	}
	t.Activated = true

	return result, nil
}

// ResultOfCaptchaCheck re-derives the verdict for an activated token.
func (t *VerificationToken) ResultOfCaptchaCheck() (CheckResult, error) {
	if !t.Activated {
		return CheckResult{}, fmt.Errorf("token %d: %w", t.ID, common.ErrNotYetActivated)
	}
	if t.Captcha == nil {
		return CheckResult{}, fmt.Errorf("token %d: captcha not loaded: %w", t.ID, common.ErrorInternal)
	}
	return t.Captcha.Check(t.AnswerToCaptcha), nil
}
