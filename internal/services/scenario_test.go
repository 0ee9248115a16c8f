package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/gophcaptcha/internal/auth"
	"github.com/dmitrijs2005/gophcaptcha/internal/common"
	"github.com/dmitrijs2005/gophcaptcha/internal/logging"
	"github.com/dmitrijs2005/gophcaptcha/internal/models"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/repomanager"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisEnv(t *testing.T, scheme auth.Scheme) *env {
	t.Helper()
	mr := miniredis.RunT(t)
	rm := repomanager.NewRedisRepositoryManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rm.Close() })
	return newEnv(t, rm, scheme)
}

// A captcha answered wrongly through a token: the verdict is reported on
// activation and on every later lookup, and the token cannot be used
// twice.
func TestScenario_WrongAnswerRedis(t *testing.T) {
	e := newRedisEnv(t, auth.SecretScheme{})
	c := e.seed(t, "right")
	ctx := context.Background()

	tok, err := e.tokens.Create(ctx, ownerID, c.ID, "wrong")
	require.NoError(t, err)

	_, err = e.tokens.ResultOfCheck(ctx, ownerID, c.ID, tok.ID)
	assert.ErrorIs(t, err, common.ErrNotYetActivated)

	res, err := e.tokens.Activate(ctx, ownerID, c.ID, tok.ID, secret)
	require.NoError(t, err)
	assert.Equal(t, models.CheckResult{Success: false, Error: models.WrongAnswer}, res)

	res, err = e.tokens.ResultOfCheck(ctx, ownerID, c.ID, tok.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CheckResult{Success: false, Error: models.WrongAnswer}, res)

	_, err = e.tokens.Activate(ctx, ownerID, c.ID, tok.ID, secret)
	assert.ErrorIs(t, err, common.ErrAlreadyActivated)

	_, err = e.captchas.FindActiveCaptcha(ctx, ownerID, c.ID)
	assert.ErrorIs(t, err, common.ErrAlreadySolved)
}

func TestScenario_RegisteredClientRedis(t *testing.T) {
	e := newRedisEnv(t, auth.HashedScheme{})
	ctx := context.Background()

	reg, err := e.clients.Register(ctx)
	require.NoError(t, err)

	c, err := e.captchas.CreateNew(ctx, reg.Client.ID)
	require.NoError(t, err)

	tok, err := e.tokens.Create(ctx, reg.Client.ID, c.ID, c.Answer)
	require.NoError(t, err)

	_, err = e.tokens.Activate(ctx, reg.Client.ID, c.ID, tok.ID, "guess")
	assert.ErrorIs(t, err, common.ErrAuthenticationFailed)

	res, err := e.tokens.Activate(ctx, reg.Client.ID, c.ID, tok.ID, reg.Secret)
	require.NoError(t, err)
	assert.True(t, res.Success)
}

// Several clients race to activate different tokens of one captcha. The
// captcha is consumed once, so exactly one activation wins.
func TestScenario_ConcurrentActivationsRedis(t *testing.T) {
	const (
		rounds  = 10
		tokens  = 4
		workers = 16
	)

	for round := 0; round < rounds; round++ {
		e := newRedisEnv(t, auth.SecretScheme{})
		svc := NewTokenService(e.rm, e.captchas, auth.SecretScheme{}, timeout, workers, logging.Nop())
		svc.now = func() time.Time { return t0 }
		ctx := context.Background()

		c := e.seed(t, "right")
		ids := make([]int64, tokens)
		for i := range ids {
			tok, err := svc.Create(ctx, ownerID, c.ID, "right")
			require.NoError(t, err)
			ids[i] = tok.ID
		}

		var (
			wg      sync.WaitGroup
			wins    atomic.Int32
			mu      sync.Mutex
			failure []error
		)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(tokenID int64) {
				defer wg.Done()
				res, err := svc.Activate(ctx, ownerID, c.ID, tokenID, secret)
				if err == nil {
					assert.True(t, res.Success)
					wins.Add(1)
					return
				}
				mu.Lock()
				failure = append(failure, err)
				mu.Unlock()
			}(ids[w%tokens])
		}
		wg.Wait()

		require.EqualValues(t, 1, wins.Load(), "round %d", round)
		for _, err := range failure {
			assert.True(t, errors.Is(err, common.ErrAlreadySolved) ||
				errors.Is(err, common.ErrAlreadyActivated) ||
				errors.Is(err, common.ErrVersionConflict), "round %d: %v", round, err)
		}

		activated := 0
		for _, id := range ids {
			if _, err := svc.ResultOfCheck(ctx, ownerID, c.ID, id); err == nil {
				activated++
			} else {
				assert.ErrorIs(t, err, common.ErrNotYetActivated)
			}
		}
		assert.Equal(t, 1, activated, "round %d", round)
	}
}

const (
	selectTokenQ   = `(?s)^SELECT\s+t\.id,.*FROM\s+verification_tokens\s+t`
	updateTokenQ   = `(?s)^UPDATE\s+verification_tokens\s+SET\s+activated`
	updateCaptchaQ = `(?s)^UPDATE\s+captchas\s+SET\s+solved`
)

func tokenRows(activated, solved bool, version int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "answer_to_captcha", "activated", "version",
		"captcha_id", "answer", "created", "solved", "captcha_version",
		"owner_id", "secret", "owner_version", "created_at",
	}).AddRow(
		int64(11), "wrong", activated, version,
		int64(5), "right", t0, solved, version,
		ownerID, secret, int64(1), t0,
	)
}

func newPostgresEnv(t *testing.T) (*env, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newEnv(t, repomanager.NewPostgresRepositoryManager(db), auth.SecretScheme{}), mock
}

func TestScenario_ActivatePostgres(t *testing.T) {
	e, mock := newPostgresEnv(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectTokenQ).WithArgs(ownerID, int64(5), int64(11)).WillReturnRows(tokenRows(false, false, 1))
	mock.ExpectExec(updateTokenQ).WithArgs(int64(11), int64(1), true).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(updateCaptchaQ).WithArgs(int64(5), int64(1), true).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := e.tokens.Activate(context.Background(), ownerID, 5, 11, secret)
	require.NoError(t, err)
	assert.Equal(t, models.CheckResult{Error: models.WrongAnswer}, res)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScenario_ActivatePostgresLosesRace(t *testing.T) {
	e, mock := newPostgresEnv(t)

	// first attempt: the captcha row moved on under us
	mock.ExpectBegin()
	mock.ExpectQuery(selectTokenQ).WillReturnRows(tokenRows(false, false, 1))
	mock.ExpectExec(updateTokenQ).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(updateCaptchaQ).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	// retry: the winner's activation is visible
	mock.ExpectBegin()
	mock.ExpectQuery(selectTokenQ).WillReturnRows(tokenRows(true, true, 2))
	mock.ExpectRollback()

	_, err := e.tokens.Activate(context.Background(), ownerID, 5, 11, secret)
	assert.ErrorIs(t, err, common.ErrAlreadyActivated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScenario_ResultPostgres(t *testing.T) {
	e, mock := newPostgresEnv(t)

	mock.ExpectQuery(selectTokenQ).WithArgs(ownerID, int64(5), int64(11)).WillReturnRows(tokenRows(true, true, 2))

	res, err := e.tokens.ResultOfCheck(context.Background(), ownerID, 5, 11)
	require.NoError(t, err)
	assert.Equal(t, models.CheckResult{Error: models.WrongAnswer}, res)
}
