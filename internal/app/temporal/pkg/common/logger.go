package common

import (
	"fmt"

	"go.temporal.io/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new zap logger with appropriate configuration
func NewLogger(development bool) (*zap.Logger, error) {
	var config zap.Config

	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}

	return config.Build()
}

// MustNewLogger creates a new logger and panics if it fails
func MustNewLogger(development bool) *zap.Logger {
	logger, err := NewLogger(development)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	return logger
}

// ZapAdapter lets the Temporal SDK log through zap.
type ZapAdapter struct {
	logger *zap.Logger
}

var (
	_ log.Logger     = (*ZapAdapter)(nil)
	_ log.WithLogger = (*ZapAdapter)(nil)
)

func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	// skip the adapter frame
	return &ZapAdapter{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (a *ZapAdapter) Debug(msg string, keyvals ...interface{}) {
	a.logger.Debug(msg, fields(keyvals)...)
}

func (a *ZapAdapter) Info(msg string, keyvals ...interface{}) {
	a.logger.Info(msg, fields(keyvals)...)
}

func (a *ZapAdapter) Warn(msg string, keyvals ...interface{}) {
	a.logger.Warn(msg, fields(keyvals)...)
}

func (a *ZapAdapter) Error(msg string, keyvals ...interface{}) {
	a.logger.Error(msg, fields(keyvals)...)
}

func (a *ZapAdapter) With(keyvals ...interface{}) log.Logger {
	return &ZapAdapter{logger: a.logger.With(fields(keyvals)...)}
}

// fields turns alternating keys and values into zap fields. A trailing key without a value
// is kept under "extra".
func fields(keyvals []interface{}) []zap.Field {
	out := make([]zap.Field, 0, (len(keyvals)+1)/2)
	for i := 0; i < len(keyvals); i += 2 {
		if i+1 == len(keyvals) {
			out = append(out, zap.Any("extra", keyvals[i]))
			break
		}
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		out = append(out, zap.Any(key, keyvals[i+1]))
	}
	return out
}
