package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophcaptcha/internal/common"
	"github.com/dmitrijs2005/gophcaptcha/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by a client credential. The subject is the client id.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTScheme expects an HS256 token signed with the client's secret whose
// subject is the client id. The secret is stored as is.
type JWTScheme struct{}

func (JWTScheme) StoredSecret(secret string) (string, error) {
	return secret, nil
}

func (JWTScheme) Authenticate(client *models.Client, credential string) error {
	if client.Secret == "" {
		return failed(client)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(client.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject(client.ID))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("client %s: credential expired: %w", client.ID, common.ErrAuthenticationFailed)
		}
		return failed(client)
	}
	if !token.Valid {
		return failed(client)
	}

	return nil
}

// IssueCredential signs a credential for client valid for validity from
// now. client.Secret must hold the plaintext secret.
func IssueCredential(client *models.Client, now time.Time, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   client.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
	})

	s, err := token.SignedString([]byte(client.Secret))
	if err != nil {
		return "", err
	}
	return s, nil
}
