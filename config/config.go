// Package config loads settings for the gradviz command from flags,
// GRADVIZ_* environment variables and an optional YAML file, in that order
// of precedence.
package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ezoic/gradviz/descent"
	"github.com/ezoic/gradviz/pkg/errors"
)

// EnvPrefix is prepended to every environment variable name, so --learning-rate
// can also be set with GRADVIZ_LEARNING_RATE.
const EnvPrefix = "GRADVIZ"

// Keys, which double as flag names.
const (
	KeyConfigFile   = "config"
	KeySamples      = "samples"
	KeyFeatures     = "features"
	KeyNoise        = "noise"
	KeySeed         = "seed"
	KeyLearningRate = "learning-rate"
	KeyIterations   = "iterations"
	KeyInterval     = "interval"
	KeyLogLevel     = "log-level"
	KeyMetricsAddr  = "metrics-addr"
)

// Config holds every setting the command uses.
type Config struct {
	Samples  int
	Features int
	Noise    float64
	// Seed 0 means seed from the clock.
	Seed uint64

	LearningRate float64
	Iterations   int
	Interval     time.Duration

	LogLevel string
	// MetricsAddr is the listen address for /metrics. Empty disables it.
	MetricsAddr string
}

// Default matches the descent view of the original tool.
func Default() Config {
	return Config{
		Samples:      20,
		Features:     1,
		Noise:        0.8,
		LearningRate: descent.DefaultLearningRate,
		Iterations:   descent.DefaultIterations,
		Interval:     descent.DefaultInterval,
		LogLevel:     "info",
	}
}

// AddFlags registers the persistent flags on fs with defaults from d.
func AddFlags(fs *pflag.FlagSet, d Config) {
	fs.String(KeyConfigFile, "", "path to a YAML config file")
	fs.Int(KeySamples, d.Samples, "number of generated samples")
	fs.Int(KeyFeatures, d.Features, "number of generated features")
	fs.Float64(KeyNoise, d.Noise, "maximum absolute noise added to each target")
	fs.Uint64(KeySeed, d.Seed, "random seed, 0 seeds from the clock")
	fs.Float64(KeyLearningRate, d.LearningRate, "gradient descent step size")
	fs.Int(KeyIterations, d.Iterations, "iteration limit")
	fs.Duration(KeyInterval, d.Interval, "time between steps")
	fs.String(KeyLogLevel, d.LogLevel, "log level (debug, info, warn, error)")
	fs.String(KeyMetricsAddr, d.MetricsAddr, "serve Prometheus metrics on this address")
}

// NewViper returns a viper instance bound to fs and to the environment.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Wrap(err, "bind flags")
	}
	return v, nil
}

// Load reads the config file named by the config key, if any, and returns
// the validated settings.
func Load(v *viper.Viper) (Config, error) {
	if path := v.GetString(KeyConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
	}

	cfg := Config{
		Samples:      v.GetInt(KeySamples),
		Features:     v.GetInt(KeyFeatures),
		Noise:        v.GetFloat64(KeyNoise),
		Seed:         v.GetUint64(KeySeed),
		LearningRate: v.GetFloat64(KeyLearningRate),
		Iterations:   v.GetInt(KeyIterations),
		Interval:     v.GetDuration(KeyInterval),
		LogLevel:     v.GetString(KeyLogLevel),
		MetricsAddr:  v.GetString(KeyMetricsAddr),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate applies the same bounds as the dataset generator and the engine.
func (c Config) Validate() error {
	switch {
	case c.Samples <= 0:
		return errors.NewValidationError(KeySamples, "must be positive", c.Samples)
	case c.Features <= 0:
		return errors.NewValidationError(KeyFeatures, "must be positive", c.Features)
	case c.Noise < 0:
		return errors.NewValidationError(KeyNoise, "must not be negative", c.Noise)
	case !(c.LearningRate > 0):
		return errors.NewValidationError(KeyLearningRate, "must be positive", c.LearningRate)
	case c.Iterations < 0:
		return errors.NewValidationError(KeyIterations, "must not be negative", c.Iterations)
	case c.Interval <= 0:
		return errors.NewValidationError(KeyInterval, "must be positive", c.Interval)
	}
	return nil
}
