// Package log provides structured logging for gradviz on top of zerolog.
//
// Components obtain a named Logger and attach fields with With:
//
//	logger := log.GetLoggerWithName("descent").With(log.ComponentKey, "engine")
//	logger.Info("Run started", log.LearningRateKey, 0.1)
//
// Key/value pairs follow the slog convention: alternating string keys and
// arbitrary values. The process-wide provider is configured once with
// SetupLogger.
package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Structured field keys.
const (
	ComponentKey    = "component"
	ModelNameKey    = "model_name"
	OperationKey    = "operation"
	PhaseKey        = "phase"
	SamplesKey      = "samples"
	FeaturesKey     = "features"
	IterationKey    = "iteration"
	MaxIterKey      = "max_iter"
	LossKey         = "loss"
	WeightsKey      = "weights"
	BiasKey         = "bias"
	LearningRateKey = "learning_rate"
	IntervalKey     = "interval"
	StateKey        = "state"
	DurationMsKey   = "duration_ms"
	PredsKey        = "predictions"
)

// Operation and phase values.
const (
	OperationFit      = "fit"
	OperationPredict  = "predict"
	OperationStep     = "step"
	OperationGenerate = "generate"

	PhaseTraining  = "training"
	PhaseInference = "inference"
	PhaseData      = "data"
)

// Logger is the structured logger used across gradviz.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	With(fields ...interface{}) Logger
}

// LoggerProvider creates loggers that share one output and level.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
}

var (
	mu       sync.RWMutex
	provider LoggerProvider = NewZerologProvider(zerolog.InfoLevel)
	base                    = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// ToLogLevel parses a level name, falling back to info.
func ToLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// SetupLogger configures the global provider to write JSON lines to stderr
// at the given level.
func SetupLogger(level string) {
	SetupLoggerWithWriter(level, os.Stderr)
}

// SetupLoggerWithWriter is SetupLogger with an explicit output.
func SetupLoggerWithWriter(level string, w io.Writer) {
	lvl := ToLogLevel(level)
	mu.Lock()
	defer mu.Unlock()
	base = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	provider = NewZerologProviderWithWriter(lvl, w)
}

// SetProvider replaces the global provider.
func SetProvider(p LoggerProvider) {
	mu.Lock()
	defer mu.Unlock()
	provider = p
}

// GetLogger returns the underlying zerolog logger for call sites that want
// zerolog's fluent API.
func GetLogger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := base
	return &l
}

// GetLoggerWithName returns a Logger from the global provider tagged with name.
func GetLoggerWithName(name string) Logger {
	mu.RLock()
	p := provider
	mu.RUnlock()
	return p.GetLoggerWithName(name)
}

// LogError logs err with its stack trace at error level.
func LogError(err error, msg string) {
	if err == nil {
		return
	}
	GetLogger().Error().Stack().Err(err).Msg(msg)
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &zerologLogger{logger: zerolog.Nop()}
}
