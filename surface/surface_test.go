package surface

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/gradviz/dataset"
	gvErrors "github.com/ezoic/gradviz/pkg/errors"
)

func linePoints(t *testing.T) *dataset.Dataset {
	t.Helper()
	// y = 2x + 1
	ds, err := dataset.FromPoints([]float64{-1, 0, 1, 2}, []float64{-1, 1, 3, 5})
	require.NoError(t, err)
	return ds
}

func TestGridShapeAndAxes(t *testing.T) {
	g, err := NewGrid(linePoints(t), DefaultWeightRange, DefaultBiasRange, 6)
	require.NoError(t, err)

	c, r := g.Dims()
	assert.Equal(t, 7, c)
	assert.Equal(t, 7, r)
	assert.Equal(t, -3.0, g.X(0))
	assert.Equal(t, 3.0, g.X(6))
	assert.Equal(t, -3.0, g.Y(0))
	assert.InDelta(t, 1.0, g.Y(4), 1e-12)
}

func TestGridValues(t *testing.T) {
	g, err := NewGrid(linePoints(t), DefaultWeightRange, DefaultBiasRange, 6)
	require.NoError(t, err)

	// w = 2 is column 5, b = 1 is row 4
	assert.InDelta(t, 0.0, g.Z(5, 4), 1e-12)
	// w = 0, b = 0: mean of 1, 1, 9, 25
	assert.InDelta(t, 9.0, g.Z(3, 3), 1e-12)

	best := g.Min()
	assert.InDelta(t, 2.0, best.Weight, 1e-12)
	assert.InDelta(t, 1.0, best.Bias, 1e-12)
	assert.InDelta(t, 0.0, best.Loss, 1e-12)
	assert.Greater(t, g.Max(), 9.0)
}

func TestGridRejectsBadInput(t *testing.T) {
	ds := linePoints(t)

	_, err := NewGrid(ds, DefaultWeightRange, DefaultBiasRange, 0)
	var ve *gvErrors.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "steps", ve.ParamName)

	_, err = NewGrid(ds, dataset.Interval{Min: 1, Max: 1}, DefaultBiasRange, 10)
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "weight_range", ve.ParamName)

	two, err := dataset.New([][]float64{{1, 2}, {3, 4}}, []float64{1, 2})
	require.NoError(t, err)
	_, err = NewGrid(two, DefaultWeightRange, DefaultBiasRange, 10)
	assert.True(t, errors.Is(err, gvErrors.ErrDimensionMismatch))
}

func TestExplorer(t *testing.T) {
	e, err := NewExplorer(linePoints(t))
	require.NoError(t, err)

	assert.Equal(t, Probe{Weight: 0, Bias: 0, Loss: 9}, e.Current())
	assert.Empty(t, e.History())

	p, err := e.Set(2, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Loss)

	_, err = e.Set(1, 0)
	require.NoError(t, err)

	h := e.History()
	require.Len(t, h, 2)
	assert.Equal(t, Probe{Weight: 2, Bias: 1, Loss: 0}, h[0])
	assert.Equal(t, 1.0, h[1].Weight)
	assert.Equal(t, h[1], e.Current())

	h[0].Loss = 100
	assert.Equal(t, 0.0, e.History()[0].Loss)
}

func TestExplorerRequiresSingleFeature(t *testing.T) {
	two, err := dataset.New([][]float64{{1, 2}}, []float64{1})
	require.NoError(t, err)
	_, err = NewExplorer(two)
	assert.True(t, errors.Is(err, gvErrors.ErrDimensionMismatch))
}
