package app

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, loaded from the environment.
// SHIST_TOKEN_SECRET is the only required setting: it signs both session
// JWTs and invitation tokens, so the service refuses to guess one.
type Config struct {
	Port         int    `env:"PORT" envDefault:"8080"`
	DatabaseFile string `env:"SHIST_DATABASE_FILE" envDefault:"shist.db"`

	TokenSecret   string        `env:"SHIST_TOKEN_SECRET,required"`
	Issuer        string        `env:"SHIST_ISSUER" envDefault:"shist"`
	SessionTTL    time.Duration `env:"SHIST_SESSION_TTL" envDefault:"24h"`
	InvitationTTL time.Duration `env:"SHIST_INVITATION_TTL" envDefault:"168h"`

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

// LoadConfig parses the environment into a Config.
func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}
