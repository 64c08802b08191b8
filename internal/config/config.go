// Package config loads drillgym settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/abhisek/drillgym/internal/infinite"
	"github.com/abhisek/drillgym/internal/llm"
	"github.com/abhisek/drillgym/internal/session"
)

// Prefix is prepended to every variable name.
const Prefix = "DRILLGYM_"

// Config is the application configuration.
type Config struct {
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
	DB       string `env:"DB"`

	QuestionCount       int           `env:"QUESTION_COUNT" envDefault:"10"`
	TimeLimit           time.Duration `env:"TIME_LIMIT" envDefault:"60s"`
	AdvanceDelay        time.Duration `env:"ADVANCE_DELAY" envDefault:"1s"`
	TickInterval        time.Duration `env:"TICK_INTERVAL" envDefault:"100ms"`
	MaxDuplicateRetries int           `env:"MAX_DUPLICATE_RETRIES" envDefault:"15"`

	LowWaterMark  int           `env:"LOW_WATER_MARK" envDefault:"3"`
	RefillBatch   int           `env:"REFILL_BATCH" envDefault:"5"`
	RefillTimeout time.Duration `env:"REFILL_TIMEOUT" envDefault:"45s"`
	RefillRate    int           `env:"REFILL_RATE" envDefault:"6"`

	HTTPAddr           string        `env:"HTTP_ADDR" envDefault:":8080"`
	SessionRetention   time.Duration `env:"SESSION_RETENTION" envDefault:"10m"`
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"1h"`

	LLM llm.Config `envPrefix:"LLM_"`
}

// Load reads an optional .env file from the working directory, then
// parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.LLM.Discover()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c Config) Validate() error {
	switch {
	case c.QuestionCount < 1:
		return fmt.Errorf("%sQUESTION_COUNT must be positive, got %d", Prefix, c.QuestionCount)
	case c.TimeLimit <= 0:
		return fmt.Errorf("%sTIME_LIMIT must be positive, got %s", Prefix, c.TimeLimit)
	case c.MaxDuplicateRetries < 0:
		return fmt.Errorf("%sMAX_DUPLICATE_RETRIES must not be negative", Prefix)
	case c.LowWaterMark < 1:
		return fmt.Errorf("%sLOW_WATER_MARK must be at least 1, got %d", Prefix, c.LowWaterMark)
	case c.RefillBatch < 1:
		return fmt.Errorf("%sREFILL_BATCH must be at least 1, got %d", Prefix, c.RefillBatch)
	case c.SessionRetention < 0 || c.SessionIdleTimeout < 0:
		return fmt.Errorf("%sSESSION_RETENTION and %sSESSION_IDLE_TIMEOUT must not be negative", Prefix, Prefix)
	}
	return c.LLM.Validate()
}

// IsProduction reports whether production logging should be used.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Session returns the session runner settings.
func (c Config) Session() session.Config {
	cfg := session.DefaultConfig()
	cfg.QuestionCount = c.QuestionCount
	cfg.TimeLimit = c.TimeLimit
	cfg.AdvanceDelay = c.AdvanceDelay
	cfg.TickInterval = c.TickInterval
	cfg.MaxDuplicateAttempts = c.MaxDuplicateRetries
	return cfg
}

// Adapter returns the refill settings for adaptive engines.
func (c Config) Adapter() infinite.Config {
	cfg := infinite.DefaultConfig()
	cfg.LowWater = c.LowWaterMark
	cfg.Batch = c.RefillBatch
	cfg.Timeout = c.RefillTimeout
	return cfg
}
