// Package config reads process settings from the environment, with an
// optional .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/cristianadrielbraun/qrcreator/internal/logo"
	"github.com/cristianadrielbraun/qrcreator/internal/qr"
)

// ErrParsingConfig wraps every failure to read or validate settings.
var ErrParsingConfig = errors.New("failed to parse configuration")

// Config holds the server settings.
type Config struct {
	Host    string `env:"HOST" envDefault:"127.0.0.1"`
	Port    int    `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`

	Encoder      string        `env:"QR_ENCODER" envDefault:"yeqown"`
	MaxLogoBytes int64         `env:"MAX_LOGO_BYTES"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	Log Log
}

// Log configures the zap logger. File is empty for console only.
type Log struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"10"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"7"`
	Compress   bool   `env:"LOG_COMPRESS" envDefault:"true"`
}

var dotenv sync.Once

// Load reads the process environment after loading .env, if one exists.
func Load() (Config, error) {
	dotenv.Do(func() {
		// A missing .env file is fine.
		_ = godotenv.Load()
	})
	return parse(env.Options{})
}

// FromMap reads settings from environ instead of the process environment.
func FromMap(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if cfg.MaxLogoBytes == 0 {
		cfg.MaxLogoBytes = logo.DefaultMaxBytes
	}
	if err := cfg.validate(); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if _, err := qr.NewEncoder(c.Encoder); err != nil {
		return err
	}
	if c.MaxLogoBytes < 0 {
		return fmt.Errorf("MAX_LOGO_BYTES must be positive, got %d", c.MaxLogoBytes)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.GinMode)
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
