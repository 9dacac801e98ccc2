package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ezoic/gradviz/config"
	"github.com/ezoic/gradviz/dataset"
	"github.com/ezoic/gradviz/pkg/log"
)

// app is shared by every subcommand. cfg is filled in before RunE runs.
type app struct {
	out io.Writer
	cfg config.Config
}

func newRootCommand(out io.Writer) *cobra.Command {
	a := &app{out: out}

	cmd := &cobra.Command{
		Use:           "gradviz",
		Short:         "Watch gradient descent fit a linear model",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.NewViper(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			a.cfg = cfg
			log.SetupLogger(cfg.LogLevel)
			return nil
		},
	}
	cmd.SetOut(out)
	config.AddFlags(cmd.PersistentFlags(), config.Default())

	cmd.AddCommand(
		newDescendCommand(a),
		newSurfaceCommand(a),
		newRegressCommand(a),
		newVectorCommand(a),
	)
	return cmd
}

// generate builds a dataset from the configured size and noise. features
// overrides the configured feature count when positive.
func (a *app) generate(features int) (*dataset.Dataset, error) {
	if features <= 0 {
		features = a.cfg.Features
	}
	opts := []dataset.Option{dataset.WithLogger(log.GetLoggerWithName("dataset"))}
	if a.cfg.Seed != 0 {
		opts = append(opts, dataset.WithRandomState(a.cfg.Seed))
	}
	return dataset.NewGenerator(opts...).Generate(a.cfg.Samples, features, a.cfg.Noise)
}
