// Package auth implements the credential schemes a client can use to prove
// it owns a captcha.
package auth

import (
	"fmt"

	"github.com/dmitrijs2005/gophcaptcha/internal/common"
	"github.com/dmitrijs2005/gophcaptcha/internal/models"
)

// Scheme names accepted by New and the auth_scheme setting.
const (
	SchemeSecret = "secret"
	SchemeHashed = "hashed"
	SchemeJWT    = "jwt"
)

// Scheme authenticates clients and decides how their secret is stored.
type Scheme interface {
	models.Authenticator
	// StoredSecret converts a freshly issued plaintext secret into the form
	// persisted on the client record.
	StoredSecret(secret string) (string, error)
}

// New returns the scheme registered under name.
func New(name string) (Scheme, error) {
	switch name {
	case SchemeSecret:
		return SecretScheme{}, nil
	case SchemeHashed:
		return HashedScheme{}, nil
	case SchemeJWT:
		return JWTScheme{}, nil
	default:
		return nil, fmt.Errorf("auth scheme %q: %w", name, common.ErrInvalidConfiguration)
	}
}

func failed(client *models.Client) error {
	return fmt.Errorf("client %s: %w", client.ID, common.ErrAuthenticationFailed)
}
