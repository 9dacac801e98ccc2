package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/gradviz/linear"
	"github.com/ezoic/gradviz/metrics"
)

func newRegressCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "regress",
		Short: "Fit a generated dataset in closed form and report error metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRegress()
		},
	}
}

func (a *app) runRegress() error {
	ds, err := a.generate(0)
	if err != nil {
		return err
	}

	model := linear.NewLinearRegression()
	if err := model.Fit(ds.Matrix(), ds.Vector()); err != nil {
		return err
	}
	pred, err := model.Predict(ds.Matrix())
	if err != nil {
		return err
	}
	yPred := mat.NewVecDense(ds.NSamples(), mat.Col(nil, 0, pred))
	yTrue := ds.Vector()

	fmt.Fprintf(a.out, "samples:    %d\n", ds.NSamples())
	fmt.Fprintf(a.out, "features:   %d\n", ds.NFeatures())
	fmt.Fprintf(a.out, "weights:    %s\n", formatFloats(model.GetWeights()))
	fmt.Fprintf(a.out, "intercept:  %.4f\n", model.GetIntercept())

	for _, m := range []struct {
		name string
		fn   func(yTrue, yPred mat.Vector) (float64, error)
	}{
		{"mse", metrics.MSE},
		{"rmse", metrics.RMSE},
		{"mae", metrics.MAE},
		{"r2", metrics.R2Score},
	} {
		v, err := m.fn(yTrue, yPred)
		if err != nil {
			fmt.Fprintf(a.out, "%-11s n/a (%v)\n", m.name+":", err)
			continue
		}
		fmt.Fprintf(a.out, "%-11s %.6f\n", m.name+":", v)
	}
	return nil
}
