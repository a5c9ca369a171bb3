package app

import (
	"log/slog"

	"github.com/felixgeelhaar/sitework/pkg/config"
	"github.com/felixgeelhaar/sitework/pkg/observability"
)

// NewLogger builds the process logger for service from the environment
// defaults, overridden by LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg *config.Config, service string) *slog.Logger {
	logCfg := observability.LogConfigFor(cfg.AppEnv)
	logCfg.Service = service
	logCfg.Version = cfg.AppVersion
	if cfg.LogLevel != "" {
		logCfg.Level = cfg.LogLevel
	}
	switch observability.LogFormat(cfg.LogFormat) {
	case observability.LogFormatJSON, observability.LogFormatText:
		logCfg.Format = observability.LogFormat(cfg.LogFormat)
	}
	return observability.NewLogger(logCfg)
}
