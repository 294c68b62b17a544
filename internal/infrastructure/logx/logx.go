package logx

import (
	"strings"

	"uow-coordinator/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
)

func init() {
	logger = New(config.Load().LogLevel)
}

// New builds a production JSON logger at the given level; unknown levels fall back to info.
func New(level string) *zap.Logger {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Sampling = nil
	zapCfg.DisableStacktrace = true
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if level != "" {
		_ = zapCfg.Level.UnmarshalText([]byte(strings.ToLower(level)))
	}
	l, err := zapCfg.Build(zap.AddCaller())
	if err != nil {
		panic(err)
	}
	return l
}

// Init replaces the package-level logger once the final level is known,
// e.g. after a .env file has been loaded.
func Init(level string) *zap.Logger {
	logger = New(level)
	return logger
}

// L returns the package-level logger instance.
func L() *zap.Logger {
	return logger
}
