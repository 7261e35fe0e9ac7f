package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FieldURL       = "url"
	FieldRequestID = "request_id"
)

// New builds the process logger: console or json encoding, info or debug level.
func New(json bool, debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoding := "console"

	if json {
		encoding = "json"
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}
	return cfg.Build()
}

// WithFields attaches fields, falling back to a no-op logger when l is nil.
func WithFields(l *zap.Logger, fields ...zap.Field) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// WithURL tags every entry with the posting URL, skipping blank URLs.
func WithURL(l *zap.Logger, url string) *zap.Logger {
	url = strings.TrimSpace(url)
	if url == "" {
		return WithFields(l)
	}
	return WithFields(l, zap.String(FieldURL, url))
}
