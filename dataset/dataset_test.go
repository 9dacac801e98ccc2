package dataset

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/gradviz/linear"
	gvErrors "github.com/ezoic/gradviz/pkg/errors"
	"github.com/ezoic/gradviz/pkg/log"
)

func TestGenerateShape(t *testing.T) {
	tests := []struct {
		name     string
		samples  int
		features int
		noise    float64
	}{
		{"descent preset", 20, 1, 0.8},
		{"loss surface preset", 10, 1, 0.5},
		{"regression preset", 30, 2, 1},
		{"single sample", 1, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewGenerator(WithRandomState(1), WithLogger(log.Nop()))
			ds, err := gen.Generate(tt.samples, tt.features, tt.noise)
			require.NoError(t, err)

			assert.Equal(t, tt.samples, ds.NSamples())
			assert.Equal(t, tt.features, ds.NFeatures())

			for _, row := range ds.Features() {
				require.Len(t, row, tt.features)
				for _, v := range row {
					assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
					assert.GreaterOrEqual(t, v, DefaultFeatureRange.Min)
					assert.LessOrEqual(t, v, DefaultFeatureRange.Max)
				}
			}
			for _, y := range ds.Targets() {
				assert.False(t, math.IsNaN(y) || math.IsInf(y, 0))
			}
			for _, w := range append(gen.lastWeights, gen.lastBias) {
				assert.GreaterOrEqual(t, w, DefaultWeightRange.Min)
				assert.LessOrEqual(t, w, DefaultWeightRange.Max)
			}
		})
	}
}

func TestGenerateNoiseBound(t *testing.T) {
	const noise = 0.8
	gen := NewGenerator(WithRandomState(99), WithLogger(log.Nop()))
	ds, err := gen.Generate(200, 3, noise)
	require.NoError(t, err)

	clean, err := linear.Predict(ds.Matrix(), gen.lastWeights, gen.lastBias)
	require.NoError(t, err)
	for i, y := range ds.Targets() {
		assert.LessOrEqual(t, math.Abs(y-clean[i]), noise)
	}
}

// With zero noise the hidden model reproduces every target exactly.
func TestGenerateNoiselessGroundTruth(t *testing.T) {
	gen := NewGenerator(WithRandomState(3), WithLogger(log.Nop()))
	ds, err := gen.Generate(25, 2, 0)
	require.NoError(t, err)

	preds, err := linear.Predict(ds.Matrix(), gen.lastWeights, gen.lastBias)
	require.NoError(t, err)
	loss, err := linear.MeanSquaredError(ds.Targets(), preds)
	require.NoError(t, err)
	assert.Equal(t, 0.0, loss)
}

func TestGenerateReproducible(t *testing.T) {
	a, err := NewGenerator(WithRandomState(42), WithLogger(log.Nop())).Generate(10, 2, 0.5)
	require.NoError(t, err)
	b, err := NewGenerator(WithRandomState(42), WithLogger(log.Nop())).Generate(10, 2, 0.5)
	require.NoError(t, err)
	c, err := NewGenerator(WithRandomState(43), WithLogger(log.Nop())).Generate(10, 2, 0.5)
	require.NoError(t, err)

	assert.Equal(t, a.Features(), b.Features())
	assert.Equal(t, a.Targets(), b.Targets())
	assert.NotEqual(t, a.Targets(), c.Targets())
}

func TestGenerateCustomRanges(t *testing.T) {
	gen := NewGenerator(
		WithRandomState(5),
		WithWeightRange(Interval{Min: 1, Max: 1}),
		WithFeatureRange(Interval{Min: 0, Max: 1}),
		WithLogger(log.Nop()),
	)
	ds, err := gen.Generate(50, 1, 0)
	require.NoError(t, err)

	xs := ds.Column(0)
	for i, y := range ds.Targets() {
		assert.InDelta(t, xs[i]+1, y, 1e-12)
		assert.GreaterOrEqual(t, xs[i], 0.0)
		assert.LessOrEqual(t, xs[i], 1.0)
	}
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	gen := NewGenerator(WithRandomState(1), WithLogger(log.Nop()))
	cases := []struct {
		samples, features int
		noise             float64
		param             string
	}{
		{0, 1, 0.5, "sample_count"},
		{-3, 1, 0.5, "sample_count"},
		{10, 0, 0.5, "feature_count"},
		{10, 1, -0.1, "noise_scale"},
	}
	for _, tc := range cases {
		_, err := gen.Generate(tc.samples, tc.features, tc.noise)
		var ve *gvErrors.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, tc.param, ve.ParamName)
	}
}

func TestNew(t *testing.T) {
	ds, err := New([][]float64{{1, 2}, {3, 4}, {5, 6}}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, ds.NSamples())
	assert.Equal(t, 2, ds.NFeatures())
	assert.Equal(t, []float64{1, 3, 5}, ds.Column(0))

	_, err = New(nil, nil)
	assert.True(t, errors.Is(err, gvErrors.ErrEmptyData))

	_, err = New([][]float64{{}}, []float64{1})
	assert.True(t, errors.Is(err, gvErrors.ErrEmptyData))

	_, err = New([][]float64{{1, 2}, {3}}, []float64{1, 2})
	assert.True(t, errors.Is(err, gvErrors.ErrDimensionMismatch))

	_, err = New([][]float64{{1}, {2}}, []float64{1})
	assert.True(t, errors.Is(err, gvErrors.ErrDimensionMismatch))
}

func TestDatasetIsImmutable(t *testing.T) {
	features := [][]float64{{1}, {2}}
	targets := []float64{2, 4}
	ds, err := New(features, targets)
	require.NoError(t, err)

	features[0][0] = 100
	targets[0] = 100
	ds.Features()[1][0] = 100
	ds.Targets()[1] = 100
	ds.X().Set(0, 0, 100)
	ds.Y().SetVec(0, 100)

	assert.Equal(t, [][]float64{{1}, {2}}, ds.Features())
	assert.Equal(t, []float64{2, 4}, ds.Targets())
}

func TestFromPoints(t *testing.T) {
	ds, err := FromPoints([]float64{1, 2, 3, 4}, []float64{2, 3, 5, 4})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.NFeatures())
	assert.Equal(t, []float64{1, 2, 3, 4}, ds.Column(0))
	assert.Equal(t, []float64{2, 3, 5, 4}, ds.Targets())

	_, err = FromPoints([]float64{1, 2}, []float64{1})
	assert.Error(t, err)
}
