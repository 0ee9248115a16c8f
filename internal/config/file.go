package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophcaptcha/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for JSON and YAML files. Durations are
// timex.Duration so "90s" and 90 both work.
type fileConfig struct {
	Storage       string `json:"storage" yaml:"storage"`
	DatabaseDSN   string `json:"database_dsn" yaml:"database_dsn"`
	RedisAddr     string `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `json:"redis_password" yaml:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db"`

	CaptchaLength  int            `json:"captcha_length" yaml:"captcha_length"`
	CharacterRange string         `json:"character_range" yaml:"character_range"`
	CaptchaTimeout timex.Duration `json:"captcha_timeout" yaml:"captcha_timeout"`

	AuthScheme         string `json:"auth_scheme" yaml:"auth_scheme"`
	Mode               string `json:"mode" yaml:"mode"`
	MaxConflictRetries int    `json:"max_conflict_retries" yaml:"max_conflict_retries"`

	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`
}

// LoadFile overlays the settings found in path onto c. Keys absent from
// the file keep their current values. Files ending in .yaml or .yml are
// read as YAML, anything else as JSON.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fc := fileConfig{
		Storage:            c.Storage,
		DatabaseDSN:        c.DatabaseDSN,
		RedisAddr:          c.RedisAddr,
		RedisPassword:      c.RedisPassword,
		RedisDB:            c.RedisDB,
		CaptchaLength:      c.CaptchaLength,
		CharacterRange:     c.CharacterRange,
		CaptchaTimeout:     timex.Duration{Duration: c.CaptchaTimeout},
		AuthScheme:         c.AuthScheme,
		Mode:               c.Mode,
		MaxConflictRetries: c.MaxConflictRetries,
		LogLevel:           c.LogLevel,
		LogFormat:          c.LogFormat,
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	c.Storage = fc.Storage
	c.DatabaseDSN = fc.DatabaseDSN
	c.RedisAddr = fc.RedisAddr
	c.RedisPassword = fc.RedisPassword
	c.RedisDB = fc.RedisDB
	c.CaptchaLength = fc.CaptchaLength
	c.CharacterRange = fc.CharacterRange
	c.CaptchaTimeout = fc.CaptchaTimeout.Duration
	c.AuthScheme = fc.AuthScheme
	c.Mode = fc.Mode
	c.MaxConflictRetries = fc.MaxConflictRetries
	c.LogLevel = fc.LogLevel
	c.LogFormat = fc.LogFormat

	return nil
}
