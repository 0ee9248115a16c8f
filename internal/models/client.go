package models

import "time"

// Client is a registered consumer of captchas. Secret holds whatever form
// the configured credential scheme stores (plaintext or a digest).
type Client struct {
	ID        string
	Secret    string
	Version   int64
	CreatedAt time.Time
}

// Authenticator verifies a credential presented on behalf of a client.
// Implementations live in package auth.
type Authenticator interface {
	Authenticate(client *Client, credential string) error
}
