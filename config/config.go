package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storeauth/internal/service"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR, default=:8080"`
	DatabaseURL string `env:"DATABASE_URL, required"`
	LogLevel    string `env:"LOG_LEVEL, default=info"`
	TrustProxy  bool   `env:"TRUST_PROXY, default=false"`

	Tokens TokenConfig
	OTP    OTPConfig
	Mail   MailConfig
	Redis  RedisConfig

	BcryptCost int `env:"BCRYPT_COST, default=10"`
}

type TokenConfig struct {
	AccessSecret  string        `env:"ACCESS_TOKEN_SECRET, required"`
	RefreshSecret string        `env:"REFRESH_TOKEN_SECRET, required"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL, default=12h"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_TTL, default=168h"`
	Issuer        string        `env:"JWT_ISSUER"`
}

type OTPConfig struct {
	Secret      string        `env:"OTP_SECRET, required"`
	Period      time.Duration `env:"OTP_PERIOD, default=600s"`
	Digits      int           `env:"OTP_DIGITS, default=5"`
	ReplayGuard bool          `env:"OTP_REPLAY_GUARD, default=false"`
}

type MailConfig struct {
	ResendAPIKey string `env:"RESEND_API_KEY"`
	From         string `env:"MAIL_FROM"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Load reads .env when present and decodes the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("no .env file loaded")
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Tokens.AccessSecret == c.Tokens.RefreshSecret {
		return errors.New("config: ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.OTP.ReplayGuard && c.Redis.Addr == "" {
		return errors.New("config: OTP_REPLAY_GUARD requires REDIS_ADDR")
	}
	if c.Mail.ResendAPIKey != "" && c.Mail.From == "" {
		return errors.New("config: RESEND_API_KEY requires MAIL_FROM")
	}
	if c.OTP.Digits < 1 || c.OTP.Digits > 10 {
		return fmt.Errorf("config: OTP_DIGITS out of range: %d", c.OTP.Digits)
	}
	return nil
}

func (c *Config) TokenService() service.TokenConfig {
	return service.TokenConfig{
		AccessSecret:  []byte(c.Tokens.AccessSecret),
		RefreshSecret: []byte(c.Tokens.RefreshSecret),
		AccessTTL:     c.Tokens.AccessTTL,
		RefreshTTL:    c.Tokens.RefreshTTL,
		Issuer:        c.Tokens.Issuer,
	}
}

func (c *Config) OTPEngine() service.OTPConfig {
	return service.OTPConfig{
		Secret: c.OTP.Secret,
		Period: c.OTP.Period,
		Digits: c.OTP.Digits,
	}
}

// Level parses LOG_LEVEL, falling back to info.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
