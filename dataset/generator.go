package dataset

import (
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/gradviz/pkg/errors"
	"github.com/ezoic/gradviz/pkg/log"
)

// Interval is a closed range [Min, Max] for uniform sampling.
type Interval struct {
	Min, Max float64
}

func (iv Interval) sample(rng *rand.Rand) float64 {
	return iv.Min + rng.Float64()*(iv.Max-iv.Min)
}

// Default sampling ranges for the hidden model and the features.
var (
	DefaultWeightRange  = Interval{Min: -2, Max: 2}
	DefaultFeatureRange = Interval{Min: -5, Max: 5}
)

// Preset is a (samples, features, noise) triple used by one visualization.
type Preset struct {
	Samples  int
	Features int
	Noise    float64
}

// Presets of the three views.
var (
	PresetDescent     = Preset{Samples: 20, Features: 1, Noise: 0.8}
	PresetLossSurface = Preset{Samples: 10, Features: 1, Noise: 0.5}
	PresetRegression  = Preset{Samples: 30, Features: 2, Noise: 1}
)

// Generator samples datasets from a randomly drawn linear model.
type Generator struct {
	rng          *rand.Rand
	weightRange  Interval
	featureRange Interval
	logger       log.Logger

	// ground truth of the most recent Generate call; tests only.
	lastWeights []float64
	lastBias    float64
}

// Option configures a Generator.
type Option func(*Generator)

// WithRandomState seeds the generator for reproducible datasets.
func WithRandomState(seed uint64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithRand uses an existing random source.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = rng
	}
}

// WithWeightRange overrides the interval the hidden weights and bias are drawn from.
func WithWeightRange(iv Interval) Option {
	return func(g *Generator) {
		g.weightRange = iv
	}
}

// WithFeatureRange overrides the interval feature values are drawn from.
func WithFeatureRange(iv Interval) Option {
	return func(g *Generator) {
		g.featureRange = iv
	}
}

// WithLogger sets the generator's logger.
func WithLogger(l log.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// NewGenerator creates a Generator. Without WithRandomState or WithRand the
// source is seeded from the clock.
func NewGenerator(options ...Option) *Generator {
	g := &Generator{
		weightRange:  DefaultWeightRange,
		featureRange: DefaultFeatureRange,
	}
	for _, opt := range options {
		opt(g)
	}
	if g.rng == nil {
		now := uint64(time.Now().UnixNano())
		g.rng = rand.New(rand.NewPCG(now, now^0xdeadbeef))
	}
	if g.logger == nil {
		g.logger = log.GetLoggerWithName("dataset").With(log.ComponentKey, "generator")
	}
	return g
}

// Generate draws featureCount weights and a bias from the weight range, then
// sampleCount feature vectors from the feature range, and labels each sample
// with dot(features, weights) + bias plus noise drawn from
// [-noiseScale, noiseScale].
func (g *Generator) Generate(sampleCount, featureCount int, noiseScale float64) (*Dataset, error) {
	if sampleCount <= 0 {
		return nil, errors.NewValidationError("sample_count", "must be positive", sampleCount)
	}
	if featureCount <= 0 {
		return nil, errors.NewValidationError("feature_count", "must be positive", featureCount)
	}
	if noiseScale < 0 {
		return nil, errors.NewValidationError("noise_scale", "must not be negative", noiseScale)
	}

	weights := make([]float64, featureCount)
	for j := range weights {
		weights[j] = g.weightRange.sample(g.rng)
	}
	bias := g.weightRange.sample(g.rng)

	x := mat.NewDense(sampleCount, featureCount, nil)
	y := mat.NewVecDense(sampleCount, nil)
	row := make([]float64, featureCount)
	noise := Interval{Min: -noiseScale, Max: noiseScale}
	for i := 0; i < sampleCount; i++ {
		for j := range row {
			row[j] = g.featureRange.sample(g.rng)
		}
		x.SetRow(i, row)
		target := floats.Dot(row, weights) + bias
		if noiseScale > 0 {
			target += noise.sample(g.rng)
		}
		y.SetVec(i, target)
	}

	g.lastWeights = weights
	g.lastBias = bias

	g.logger.Debug("Dataset generated",
		log.OperationKey, log.OperationGenerate,
		log.PhaseKey, log.PhaseData,
		log.SamplesKey, sampleCount,
		log.FeaturesKey, featureCount,
		"noise", noiseScale,
	)

	return &Dataset{x: x, y: y}, nil
}

// GeneratePreset is Generate with a Preset's parameters.
func (g *Generator) GeneratePreset(p Preset) (*Dataset, error) {
	return g.Generate(p.Samples, p.Features, p.Noise)
}
