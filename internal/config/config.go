package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/interviewace/api/internal/interview"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/interviewace.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	// RedisURL switches bookmark storage to Redis when set.
	RedisURL string `env:"REDIS_URL"`

	JWTSecret  string        `env:"JWT_SECRET,required"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"12"`

	// DemoPassword is the password of the seeded demo account.
	DemoPassword string `env:"DEMO_PASSWORD" envDefault:"interviewace-demo"`

	ApplyCategoryFilter bool   `env:"APPLY_CATEGORY_FILTER" envDefault:"false"`
	ShuffleMode         string `env:"SHUFFLE_MODE" envDefault:"uniform"`

	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	ReapInterval time.Duration `env:"REAP_INTERVAL" envDefault:"5m"`

	VoiceURL    string   `env:"VOICE_URL" envDefault:"wss://api.elevenlabs.io/v1/convai/conversation"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be 10-14, got %d", c.BcryptCost))
	}
	if _, err := interview.ParseShuffleMode(c.ShuffleMode); err != nil {
		errs = append(errs, fmt.Errorf("SHUFFLE_MODE: %w", err))
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 bytes"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	return errors.Join(errs...)
}
