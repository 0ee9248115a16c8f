package captchas

import (
	"context"

	"github.com/dmitrijs2005/gophcaptcha/internal/models"
)

// Repository stores captchas. Reads return the captcha with its owner
// loaded. Update persists the solved flag only if the stored version still
// equals captcha.Version and fails with common.ErrVersionConflict
// otherwise.
type Repository interface {
	Create(ctx context.Context, captcha *models.Captcha) (*models.Captcha, error)
	GetByOwnerAndID(ctx context.Context, ownerID string, id int64) (*models.Captcha, error)
	Update(ctx context.Context, captcha *models.Captcha) error
}
