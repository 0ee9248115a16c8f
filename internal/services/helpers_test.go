package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophcaptcha/internal/auth"
	"github.com/dmitrijs2005/gophcaptcha/internal/challenge"
	"github.com/dmitrijs2005/gophcaptcha/internal/logging"
	"github.com/dmitrijs2005/gophcaptcha/internal/models"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

const (
	ownerID = "7f000101-6e1f-192d-816e-1ffa54780000"
	secret  = "s3cret"
	timeout = 10 * time.Second
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type env struct {
	rm       repomanager.RepositoryManager
	clients  *ClientService
	captchas *CaptchaService
	tokens   *TokenService
	now      time.Time
}

func newEnv(t *testing.T, rm repomanager.RepositoryManager, scheme auth.Scheme) *env {
	t.Helper()
	gen, err := challenge.NewGeneratorFromRange(6, "[a-z]", nil)
	require.NoError(t, err)

	e := &env{rm: rm, now: t0}
	clock := func() time.Time { return e.now }

	e.clients = NewClientService(rm, scheme, logging.Nop())
	e.captchas = NewCaptchaService(rm, gen, timeout, logging.Nop())
	e.tokens = NewTokenService(rm, e.captchas, scheme, timeout, 2, logging.Nop())
	e.clients.now, e.captchas.now, e.tokens.now = clock, clock, clock

	return e
}

func newFakeEnv(t *testing.T) (*env, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	return newEnv(t, &fakeRepoManager{s: store}, auth.SecretScheme{}), store
}

// seed stores the owner and a captcha with a known answer.
func (e *env) seed(t *testing.T, answer string) *models.Captcha {
	t.Helper()
	ctx := context.Background()

	owner, err := e.rm.Clients().GetByID(ctx, ownerID)
	if err != nil {
		owner, err = e.rm.Clients().Create(ctx, &models.Client{ID: ownerID, Secret: secret, CreatedAt: t0})
		require.NoError(t, err)
	}

	captcha, err := e.rm.Captchas().Create(ctx, models.NewCaptcha(owner, answer, e.now))
	require.NoError(t, err)
	return captcha
}
