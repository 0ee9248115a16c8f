package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophcaptcha/internal/auth"
	"github.com/dmitrijs2005/gophcaptcha/internal/challenge"
	"github.com/dmitrijs2005/gophcaptcha/internal/config"
	"github.com/dmitrijs2005/gophcaptcha/internal/logging"
	"github.com/dmitrijs2005/gophcaptcha/internal/repositories/repomanager"
	"github.com/dmitrijs2005/gophcaptcha/internal/services"
)

// openRepositoryManager is a seam for tests.
var openRepositoryManager = repomanager.Open

// App wires configuration, store and services for one command run.
type App struct {
	config   *config.Config
	logger   logging.Logger
	rm       repomanager.RepositoryManager
	clients  *services.ClientService
	captchas *services.CaptchaService
	tokens   *services.TokenService
}

func NewApp(ctx context.Context, cfg *config.Config, logw io.Writer) (*App, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, logw)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	scheme, err := auth.New(cfg.AuthScheme)
	if err != nil {
		return nil, err
	}

	gen, err := challenge.NewGeneratorFromRange(cfg.CaptchaLength, cfg.CharacterRange, nil)
	if err != nil {
		return nil, err
	}

	rm, err := openRepositoryManager(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	captchas := services.NewCaptchaService(rm, gen, cfg.CaptchaTimeout, logger)

	return &App{
		config:   cfg,
		logger:   logger,
		rm:       rm,
		clients:  services.NewClientService(rm, scheme, logger),
		captchas: captchas,
		tokens:   services.NewTokenService(rm, captchas, scheme, cfg.CaptchaTimeout, cfg.MaxConflictRetries, logger),
	}, nil
}

func (a *App) Close() error {
	return a.rm.Close()
}
