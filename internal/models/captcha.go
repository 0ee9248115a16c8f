package models

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophcaptcha/internal/common"
)

// Captcha is a challenge issued to its owner. Answer and Created never
// change after creation; Solved only ever goes from false to true.
type Captcha struct {
	ID      int64
	OwnerID string
	Owner   *Client
	Answer  string
	Created time.Time
	Solved  bool
	Version int64
}

// NewCaptcha returns an unsolved captcha for owner created at now (UTC).
func NewCaptcha(owner *Client, answer string, now time.Time) *Captcha {
	return &Captcha{
		OwnerID: owner.ID,
		Owner:   owner,
		Answer:  answer,
		Created: now.UTC(),
	}
}

// CheckTimeout fails with common.ErrExpired once more than timeout has
// elapsed between creation and now.
func (c *Captcha) CheckTimeout(now time.Time, timeout time.Duration) error {
	if now.Sub(c.Created) > timeout {
		return fmt.Errorf("captcha %d: %w", c.ID, common.ErrExpired)
	}
	return nil
}

// CheckSolved fails with common.ErrAlreadySolved if the captcha is solved.
func (c *Captcha) CheckSolved() error {
	if c.Solved {
		return fmt.Errorf("captcha %d: %w", c.ID, common.ErrAlreadySolved)
	}
	return nil
}

// Check compares answer with the captcha's answer. It ignores the solved
// flag and the timeout and may be called any number of times.
func (c *Captcha) Check(answer string) CheckResult {
	if c.Answer == answer {
		return CheckResult{Success: true}
	}

	got, want := utf8.RuneCountInString(answer), utf8.RuneCountInString(c.Answer)
	if got != want {
		return CheckResult{
			Error: fmt.Sprintf("%d characters entered, but should be %d.", got, want),
		}
	}

	return CheckResult{Error: WrongAnswer}
}

// Solve authenticates credential against the owner, requires the captcha to
// be active and checks answer. The captcha is marked solved whatever the
// verdict: every captcha gets exactly one attempt.
func (c *Captcha) Solve(a Authenticator, credential, answer string, now time.Time, timeout time.Duration) (CheckResult, error) {
	if c.Owner == nil {
		return CheckResult{}, fmt.Errorf("captcha %d: owner not loaded: %w", c.ID, common.ErrorInternal)
	}
	if err := a.Authenticate(c.Owner, credential); err != nil {
		return CheckResult{}, err
	}
	if err := c.CheckSolved(); err != nil {
		return CheckResult{}, err
	}
	if err := c.CheckTimeout(now, timeout); err != nil {
		return CheckResult{}, err
	}

	result := c.Check(answer)
	c.Solved = true

	return result, nil
}
