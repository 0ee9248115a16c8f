package auth

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/gophcaptcha/internal/models"
)

// SecretScheme stores the secret as is and expects the client to present
// it verbatim.
type SecretScheme struct{}

func (SecretScheme) StoredSecret(secret string) (string, error) {
	return secret, nil
}

func (SecretScheme) Authenticate(client *models.Client, credential string) error {
	if client.Secret == "" ||
		subtle.ConstantTimeCompare([]byte(client.Secret), []byte(credential)) != 1 {
		return failed(client)
	}
	return nil
}
