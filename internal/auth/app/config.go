package app

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is populated from the environment. Zero-config boots a dev instance
// against a local sqlite file and a local Redis.
type Config struct {
	Env       string `env:"ENV" envDefault:"dev"` // dev, test, prod
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Port                int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	DatabaseFile string `env:"AUTH_DATABASE_FILE" envDefault:"auth.db"`
	PepperFile   string `env:"AUTH_PEPPER_FILE" envDefault:"pepper"`

	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// ProviderBaseURL points at the external OAuth-style authorization
	// provider that mints and introspects access tokens.
	ProviderBaseURL string `env:"AUTH_PROVIDER_URL" envDefault:"http://localhost:9096"`

	TOTPIssuer string `env:"TOTP_ISSUER" envDefault:"gatehouse"`

	// Fixed two-factor bypass pair for deterministic test logins. Leave both
	// empty outside test environments.
	TwoFactorTestSecret string `env:"GA2FA_TEST_SECRET"`
	TwoFactorTestCode   string `env:"GA2FA_TEST_CODE"`

	// SMTP delivery of reset tokens; disabled when Host is empty.
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`
}

func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}
