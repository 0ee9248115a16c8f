package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Flag names.
const (
	FlagConfig             = "config"
	FlagStorage            = "storage"
	FlagDatabaseDSN        = "database-dsn"
	FlagRedisAddr          = "redis-addr"
	FlagRedisPassword      = "redis-password"
	FlagRedisDB            = "redis-db"
	FlagCaptchaLength      = "captcha-length"
	FlagCharacterRange     = "character-range"
	FlagCaptchaTimeout     = "captcha-timeout"
	FlagAuthScheme         = "auth-scheme"
	FlagMode               = "mode"
	FlagMaxConflictRetries = "max-conflict-retries"
	FlagLogLevel           = "log-level"
	FlagLogFormat          = "log-format"
)

// BindFlags registers the configuration flags on fs. Their defaults are
// only shown in help: ApplyFlags copies a flag into Config only when the
// user set it.
func BindFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "JSON or YAML config file")
	fs.String(FlagStorage, d.Storage, "store: postgres or redis")
	fs.StringP(FlagDatabaseDSN, "d", d.DatabaseDSN, "PostgreSQL DSN")
	fs.String(FlagRedisAddr, d.RedisAddr, "Redis address")
	fs.String(FlagRedisPassword, d.RedisPassword, "Redis password")
	fs.Int(FlagRedisDB, d.RedisDB, "Redis database number")
	fs.IntP(FlagCaptchaLength, "l", d.CaptchaLength, "captcha length")
	fs.StringP(FlagCharacterRange, "r", d.CharacterRange, "captcha characters, e.g. [a-z],[0-9]")
	fs.IntP(FlagCaptchaTimeout, "t", int(d.CaptchaTimeout/time.Second), "captcha timeout (in seconds)")
	fs.String(FlagAuthScheme, d.AuthScheme, "client credential scheme: secret, hashed or jwt")
	fs.String(FlagMode, d.Mode, "production or test (test prints captcha answers)")
	fs.Int(FlagMaxConflictRetries, d.MaxConflictRetries, "retries of a token activation after a concurrent update")
	fs.String(FlagLogLevel, d.LogLevel, "debug, info, warn or error")
	fs.String(FlagLogFormat, d.LogFormat, "json or text")
}

// ApplyFlags copies every explicitly set flag of fs into c.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error

	str := func(name string, dst *string) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetInt(name)
		}
	}

	str(FlagStorage, &c.Storage)
	str(FlagDatabaseDSN, &c.DatabaseDSN)
	str(FlagRedisAddr, &c.RedisAddr)
	str(FlagRedisPassword, &c.RedisPassword)
	num(FlagRedisDB, &c.RedisDB)
	num(FlagCaptchaLength, &c.CaptchaLength)
	str(FlagCharacterRange, &c.CharacterRange)
	str(FlagAuthScheme, &c.AuthScheme)
	str(FlagMode, &c.Mode)
	num(FlagMaxConflictRetries, &c.MaxConflictRetries)
	str(FlagLogLevel, &c.LogLevel)
	str(FlagLogFormat, &c.LogFormat)

	if err == nil && fs.Changed(FlagCaptchaTimeout) {
		var secs int
		secs, err = fs.GetInt(FlagCaptchaTimeout)
		c.CaptchaTimeout = time.Duration(secs) * time.Second
	}

	return err
}
