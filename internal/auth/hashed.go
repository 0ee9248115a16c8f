package auth

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophcaptcha/internal/common"
	"github.com/dmitrijs2005/gophcaptcha/internal/models"
	"golang.org/x/crypto/argon2"
)

const (
	hashPrefix = "argon2id"
	saltSize   = 16
)

// HashedScheme stores an argon2id digest of the secret in the form
// argon2id$<salt hex>$<key hex>.
type HashedScheme struct{}

func deriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

func (HashedScheme) StoredSecret(secret string) (string, error) {
	salt := common.GenerateRandByteArray(saltSize)
	key := deriveKey([]byte(secret), salt)
	return strings.Join([]string{hashPrefix, hex.EncodeToString(salt), hex.EncodeToString(key)}, "$"), nil
}

func (HashedScheme) Authenticate(client *models.Client, credential string) error {
	salt, key, err := parseDigest(client.Secret)
	if err != nil {
		return fmt.Errorf("client %s: %w", client.ID, err)
	}

	got := deriveKey([]byte(credential), salt)
	if subtle.ConstantTimeCompare(got, key) != 1 {
		return failed(client)
	}
	return nil
}

func parseDigest(stored string) (salt, key []byte, err error) {
	parts := strings.Split(stored, "$")
	if len(parts) != 3 || parts[0] != hashPrefix {
		return nil, nil, fmt.Errorf("malformed secret digest: %w", common.ErrorInternal)
	}
	if salt, err = hex.DecodeString(parts[1]); err != nil {
		return nil, nil, fmt.Errorf("malformed digest salt: %w", common.ErrorInternal)
	}
	if key, err = hex.DecodeString(parts[2]); err != nil {
		return nil, nil, fmt.Errorf("malformed digest key: %w", common.ErrorInternal)
	}
	return salt, key, nil
}
