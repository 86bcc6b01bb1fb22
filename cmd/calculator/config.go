package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrParsingConfig = errors.New("failed to parse environment variables into config")

type Config struct {
	Debug          bool       `env:"FSM_DEBUG" envDefault:"false"`
	LogLevel       slog.Level `env:"FSM_LOG_LEVEL" envDefault:"INFO"`
	LogFormat      string     `env:"FSM_LOG_FORMAT" envDefault:"text"`
	Trace          bool       `env:"FSM_TRACE" envDefault:"false"`
	MaxAutoChained int        `env:"FSM_MAX_AUTO" envDefault:"16"`
}

// loadConfig reads the optional .env files, then the environment.
func loadConfig(files ...string) (Config, error) {
	// a missing .env file is not an error
	_ = godotenv.Load(files...)
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("%w: invalid log format %q: must be %q or %q", ErrParsingConfig, cfg.LogFormat, "text", "json")
	}
	return cfg, nil
}

func newLogger(cfg Config, w io.Writer) *slog.Logger {
	options := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.Debug {
		options.Level = slog.LevelDebug
	}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, options))
	}
	return slog.New(slog.NewTextHandler(w, options))
}
