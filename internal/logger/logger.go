// Package logger builds the zap loggers used across tracksearch.
package logger

import (
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls log output.
type Config struct {
	Level  zapcore.Level `koanf:"level"`
	Format string        `koanf:"format"` // "console" or "json"
}

// NewConfig returns a Config with defaults.
func NewConfig() Config {
	return Config{
		Level:  zapcore.InfoLevel,
		Format: "console",
	}
}

// New returns a logger writing to w.
func New(w io.Writer, cfg Config) *zap.Logger {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = func(ts time.Time, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(ts.UTC().Format(time.RFC3339))
	}
	config.EncodeDuration = func(d time.Duration, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(d.String())
	}

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(config)
	} else {
		encoder = zapcore.NewConsoleEncoder(config)
	}

	return zap.New(zapcore.NewCore(
		encoder,
		zapcore.Lock(zapcore.AddSync(w)),
		cfg.Level,
	))
}
