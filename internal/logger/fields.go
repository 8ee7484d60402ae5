package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field keys shared across packages.
const (
	FieldProvider  = "ai_provider"
	FieldModel     = "ai_model"
	FieldBucket    = "bucket"
	FieldComponent = "component"
)

// Provider names the AI provider behind an entry.
func Provider(name string) zap.Field { return nonBlank(FieldProvider, name) }

// Model names the AI model behind an entry.
func Model(name string) zap.Field { return nonBlank(FieldModel, name) }

// Bucket names the skill bucket an entry is about.
func Bucket(name string) zap.Field { return nonBlank(FieldBucket, name) }

// Component names the subsystem that emitted an entry.
func Component(name string) zap.Field { return nonBlank(FieldComponent, name) }

// nonBlank trims value and returns a skipped field when nothing is left, so
// optional context never shows up as an empty key.
func nonBlank(key, value string) zap.Field {
	value = strings.TrimSpace(value)
	if value == "" {
		return zap.Skip()
	}
	return zap.String(key, value)
}

// WithFields attaches fields to logger. A nil logger becomes a no-op logger and
// skipped fields are dropped.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	logger = OrNop(logger)

	kept := fields[:0:0]
	for _, f := range fields {
		if f.Type != zapcore.SkipType {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return logger
	}

	return logger.With(kept...)
}

// CommonFields describes the AI provider and model of a judge or embedder.
func CommonFields(provider, model string) []zap.Field {
	return []zap.Field{Provider(provider), Model(model)}
}

// WithCommonFields tags logger with the AI provider and model.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}

// WithComponent tags every entry of the returned logger with the component name.
func WithComponent(logger *zap.Logger, component string) *zap.Logger {
	return WithFields(logger, Component(component))
}
