package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophcaptcha/internal/common"
	"github.com/dmitrijs2005/gophcaptcha/internal/models"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/captchas"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/clients"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/repomanager"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/tokens"
)

// fakeStore keeps copies of entities so that services cannot mutate stored
// state without going through Update.
type fakeStore struct {
	mu       sync.Mutex
	clients  map[string]models.Client
	captchas map[int64]models.Captcha
	tokens   map[int64]models.VerificationToken
	seq      int64

	createErr error
	// tokenConflicts makes the next n token updates fail as if a concurrent
	// writer got there first.
	tokenConflicts int
	updates        int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients:  map[string]models.Client{},
		captchas: map[int64]models.Captcha{},
		tokens:   map[int64]models.VerificationToken{},
	}
}

type fakeClientsRepo struct{ s *fakeStore }

func (r fakeClientsRepo) Create(ctx context.Context, c *models.Client) (*models.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createErr != nil {
		return nil, r.s.createErr
	}
	c.Version = 1
	r.s.clients[c.ID] = *c
	return c, nil
}

func (r fakeClientsRepo) GetByID(ctx context.Context, id string) (*models.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

type fakeCaptchasRepo struct{ s *fakeStore }

func (r fakeCaptchasRepo) Create(ctx context.Context, c *models.Captcha) (*models.Captcha, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createErr != nil {
		return nil, r.s.createErr
	}
	r.s.seq++
	c.ID, c.Version = r.s.seq, 1
	stored := *c
	stored.Owner = nil
	r.s.captchas[c.ID] = stored
	return c, nil
}

func (r fakeCaptchasRepo) GetByOwnerAndID(ctx context.Context, ownerID string, id int64) (*models.Captcha, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.loadCaptcha(ownerID, id)
}

func (s *fakeStore) loadCaptcha(ownerID string, id int64) (*models.Captcha, error) {
	c, ok := s.captchas[id]
	if !ok || c.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	owner, ok := s.clients[ownerID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c.Owner = &owner
	return &c, nil
}

func (r fakeCaptchasRepo) Update(ctx context.Context, c *models.Captcha) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.updates++
	cur, ok := r.s.captchas[c.ID]
	if !ok || cur.Version != c.Version {
		return common.ErrVersionConflict
	}
	cur.Solved = c.Solved
	cur.Version++
	r.s.captchas[c.ID] = cur
	c.Version++
	return nil
}

type fakeTokensRepo struct{ s *fakeStore }

func (r fakeTokensRepo) Create(ctx context.Context, t *models.VerificationToken) (*models.VerificationToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createErr != nil {
		return nil, r.s.createErr
	}
	r.s.seq++
	t.ID, t.Version = r.s.seq, 1
	stored := *t
	stored.Captcha = nil
	r.s.tokens[t.ID] = stored
	return t, nil
}

func (r fakeTokensRepo) GetByKeys(ctx context.Context, ownerID string, captchaID, tokenID int64) (*models.VerificationToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[tokenID]
	if !ok || t.CaptchaID != captchaID {
		return nil, common.ErrorNotFound
	}
	c, err := r.s.loadCaptcha(ownerID, captchaID)
	if err != nil {
		return nil, err
	}
	t.Captcha = c
	return &t, nil
}

func (r fakeTokensRepo) Update(ctx context.Context, t *models.VerificationToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.updates++
	if r.s.tokenConflicts > 0 {
		r.s.tokenConflicts--
		return common.ErrVersionConflict
	}
	cur, ok := r.s.tokens[t.ID]
	if !ok || cur.Version != t.Version {
		return common.ErrVersionConflict
	}
	cur.Activated = t.Activated
	cur.Version++
	r.s.tokens[t.ID] = cur
	t.Version++
	return nil
}

// fakeRepoManager applies writes immediately; WithinTx offers no rollback.
type fakeRepoManager struct {
	s   *fakeStore
	txs int
}

func (m *fakeRepoManager) Clients() clients.Repository   { return fakeClientsRepo{m.s} }
func (m *fakeRepoManager) Captchas() captchas.Repository { return fakeCaptchasRepo{m.s} }
func (m *fakeRepoManager) Tokens() tokens.Repository     { return fakeTokensRepo{m.s} }
func (m *fakeRepoManager) RunMigrations(context.Context) error {
	return nil
}
func (m *fakeRepoManager) Close() error { return nil }

func (m *fakeRepoManager) WithinTx(ctx context.Context, fn func(ctx context.Context, rm repomanager.RepositoryManager) error) error {
	m.txs++
	return fn(ctx, m)
}
