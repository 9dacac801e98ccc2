package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezoic/gradviz/pkg/errors"
	"github.com/ezoic/gradviz/surface"
	"github.com/ezoic/gradviz/viz"
)

type surfaceOpts struct {
	steps   int
	probes  []string
	plotDir string
}

func newSurfaceCommand(a *app) *cobra.Command {
	opts := surfaceOpts{}

	cmd := &cobra.Command{
		Use:   "surface",
		Short: "Evaluate the loss surface of a single-feature dataset",
		Long: `Evaluate mean squared error over a lattice of weights and biases for a
generated single-feature dataset, report the lowest point and optionally
evaluate hand-picked (weight, bias) probes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSurface(opts)
		},
	}
	cmd.Flags().IntVar(&opts.steps, "steps", surface.DefaultSteps, "divisions along each axis")
	cmd.Flags().StringArrayVar(&opts.probes, "probe", nil, "weight,bias point to evaluate (repeatable)")
	cmd.Flags().StringVar(&opts.plotDir, "plot-dir", "", "write the contour plot to this directory")
	return cmd
}

func (a *app) runSurface(opts surfaceOpts) error {
	probes, err := parseProbes(opts.probes)
	if err != nil {
		return err
	}

	ds, err := a.generate(1)
	if err != nil {
		return err
	}
	g, err := surface.NewGrid(ds, surface.DefaultWeightRange, surface.DefaultBiasRange, opts.steps)
	if err != nil {
		return err
	}

	best := g.Min()
	fmt.Fprintf(a.out, "lattice minimum: w=%.4f b=%.4f loss %.6f\n", best.Weight, best.Bias, best.Loss)
	fmt.Fprintf(a.out, "lattice maximum loss: %.6f\n", g.Max())

	if len(probes) > 0 {
		ex, err := surface.NewExplorer(ds)
		if err != nil {
			return err
		}
		for _, pr := range probes {
			if _, err := ex.Set(pr.Weight, pr.Bias); err != nil {
				return err
			}
		}
		for _, p := range ex.History() {
			fmt.Fprintf(a.out, "probe w=%.4f b=%.4f loss %.6f\n", p.Weight, p.Bias, p.Loss)
		}
	}

	if opts.plotDir == "" {
		return nil
	}
	if err := os.MkdirAll(opts.plotDir, 0o755); err != nil {
		return errors.Wrap(err, "create plot dir")
	}
	p, err := viz.Contour(g, nil, contourLevels)
	if err != nil {
		return err
	}
	if err := viz.Save(p, filepath.Join(opts.plotDir, "contour.png")); err != nil {
		return err
	}
	p, err = viz.RegressionLine(ds, best.Weight, best.Bias)
	if err != nil {
		return err
	}
	return viz.Save(p, filepath.Join(opts.plotDir, "regression.png"))
}

// parseProbes reads "weight,bias" pairs.
func parseProbes(raw []string) ([]surface.Probe, error) {
	probes := make([]surface.Probe, 0, len(raw))
	for _, s := range raw {
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return nil, errors.NewValidationError("probe", "expected weight,bias", s)
		}
		var vals [2]float64
		for i, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "probe %q", s)
			}
			vals[i] = v
		}
		probes = append(probes, surface.Probe{Weight: vals[0], Bias: vals[1]})
	}
	return probes, nil
}
