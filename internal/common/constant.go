package common

// KeyPrefix namespaces every key the Redis store writes.
const KeyPrefix = "gophcaptcha"

// SecretSize is the number of random bytes behind a freshly issued client
// secret (hex encoded, so the secret is twice as long).
const SecretSize = 16
