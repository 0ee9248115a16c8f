package clients

import (
	"context"

	"github.com/dmitrijs2005/gophcaptcha/internal/models"
)

type Repository interface {
	Create(ctx context.Context, client *models.Client) (*models.Client, error)
	GetByID(ctx context.Context, id string) (*models.Client, error)
}
