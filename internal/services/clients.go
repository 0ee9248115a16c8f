// Package services holds the captcha lifecycle: registering clients,
// issuing captchas, and creating, activating and redeeming verification
// tokens on top of a repomanager.RepositoryManager.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcaptcha/internal/auth"
	"github.com/dmitrijs2005/gophcaptcha/internal/common"
	"github.com/dmitrijs2005/gophcaptcha/internal/logging"
	"github.com/dmitrijs2005/gophcaptcha/internal/models"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/repomanager"
	"github.com/google/uuid"
)

// Registration is the outcome of ClientService.Register. Secret is the
// plaintext secret; it is not stored and cannot be recovered later.
type Registration struct {
	Client *models.Client
	Secret string
}

// ClientService registers clients and looks them up.
type ClientService struct {
	repomanager repomanager.RepositoryManager
	scheme      auth.Scheme
	log         logging.Logger
	now         func() time.Time
}

func NewClientService(rm repomanager.RepositoryManager, scheme auth.Scheme, log logging.Logger) *ClientService {
	return &ClientService{
		repomanager: rm,
		scheme:      scheme,
		log:         log.With("module", "clients"),
		now:         time.Now,
	}
}

// Register creates a client with a random id and secret.
func (s *ClientService) Register(ctx context.Context) (*Registration, error) {
	secret, err := common.MakeRandHexString(common.SecretSize)
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	stored, err := s.scheme.StoredSecret(secret)
	if err != nil {
		return nil, fmt.Errorf("store secret: %w", err)
	}

	client := &models.Client{
		ID:        uuid.NewString(),
		Secret:    stored,
		CreatedAt: s.now().UTC(),
	}
	client, err = s.repomanager.Clients().Create(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("error creating client: %w", err)
	}

	s.log.Info(ctx, "client registered", "client_id", client.ID)
	return &Registration{Client: client, Secret: secret}, nil
}

// Find returns the client with the given id or common.ErrorNotFound.
func (s *ClientService) Find(ctx context.Context, id string) (*models.Client, error) {
	if err := checkClientID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Clients().GetByID(ctx, id)
}

// checkClientID rejects ids that cannot name any client, so the store is
// never asked about them.
func checkClientID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("client %q: %w", id, common.ErrorNotFound)
	}
	return nil
}
