package logger

import (
	"errors"
	"log"
	"log/slog"
	"strings"

	"github.com/joeshaw/envdecode"
)

type Conf struct {
	LogDir   string `env:"FNCALL_LOG_DIR"`
	LogLevel string `env:"FNCALL_LOG_LEVEL,default=info"`
}

func LogConfig() *Conf {
	configs := new(Conf)
	if err := envdecode.Decode(configs); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		log.Fatalf("failed to decode log config from environment: %s", err)
	}
	if configs.LogLevel == "" {
		configs.LogLevel = "info"
	}
	return configs
}

// Level maps the configured level name onto a slog level. Unknown names mean info.
func (c *Conf) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var logCfg = LogConfig()
