package tokens

import (
	"context"

	"github.com/dmitrijs2005/gophcaptcha/internal/models"
)

// Repository stores verification tokens. GetByKeys loads the token with
// its captcha and the captcha's owner; a token is only found through the
// owner and captcha it belongs to.
type Repository interface {
	Create(ctx context.Context, token *models.VerificationToken) (*models.VerificationToken, error)
	GetByKeys(ctx context.Context, ownerID string, captchaID, tokenID int64) (*models.VerificationToken, error)
	Update(ctx context.Context, token *models.VerificationToken) error
}
