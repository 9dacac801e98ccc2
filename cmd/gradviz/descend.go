package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/gradviz/dataset"
	"github.com/ezoic/gradviz/descent"
	"github.com/ezoic/gradviz/linear"
	"github.com/ezoic/gradviz/metrics"
	"github.com/ezoic/gradviz/pkg/errors"
	"github.com/ezoic/gradviz/pkg/log"
	"github.com/ezoic/gradviz/preprocessing"
	"github.com/ezoic/gradviz/surface"
	"github.com/ezoic/gradviz/viz"
)

type descendOpts struct {
	plotDir     string
	quiet       bool
	standardize bool
}

func newDescendCommand(a *app) *cobra.Command {
	opts := descendOpts{}

	cmd := &cobra.Command{
		Use:   "descend",
		Short: "Run gradient descent on a generated dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDescend(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.plotDir, "plot-dir", "", "write loss, regression and contour plots to this directory")
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "only print the summary")
	cmd.Flags().BoolVar(&opts.standardize, "standardize", false, "descend on standardized features and report parameters in raw units")
	return cmd
}

func (a *app) runDescend(ctx context.Context, opts descendOpts) error {
	logger := log.GetLoggerWithName("descend")

	ds, err := a.generate(0)
	if err != nil {
		return err
	}
	var scaler *preprocessing.StandardScaler
	if opts.standardize {
		scaler = preprocessing.NewStandardScaler()
		if ds, err = preprocessing.ScaleDataset(ds, scaler); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m, err := descent.NewMetrics(reg, "descend")
	if err != nil {
		return errors.Wrap(err, "register metrics")
	}

	engine, err := descent.NewEngine(ds,
		descent.WithLearningRate(a.cfg.LearningRate),
		descent.WithIterations(a.cfg.Iterations),
		descent.WithInterval(a.cfg.Interval),
		descent.WithMetrics(m),
		descent.WithLogger(log.GetLoggerWithName("descent")),
	)
	if err != nil {
		return err
	}
	if !opts.quiet {
		engine.Subscribe(func(s descent.Snapshot) {
			if s.State == descent.Converged {
				return
			}
			fmt.Fprintf(a.out, "iter %4d  loss %12.6f  w=%s  b=%.4f\n",
				s.Iteration, s.Loss, formatFloats(s.Weights), s.Bias)
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	g.Go(func() error {
		defer stop()
		err := engine.Run(runCtx)
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			logger.Warn("Descent interrupted", log.IterationKey, engine.Snapshot().Iteration)
			return nil
		}
		return err
	})

	if a.cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: a.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			logger.Info("Serving metrics", "addr", a.cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "metrics server")
			}
			return nil
		})
		g.Go(func() error {
			<-runCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	snap := engine.Snapshot()
	if err := a.printDescendSummary(ds, snap); err != nil {
		return err
	}
	if scaler != nil {
		w, b, err := scaler.UnscaleParams(snap.Weights, snap.Bias)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "raw units:  w=%s b=%.4f\n", formatFloats(w), b)
	}
	if opts.plotDir != "" {
		return writeDescendPlots(opts.plotDir, ds, snap)
	}
	return nil
}

func (a *app) printDescendSummary(ds *dataset.Dataset, snap descent.Snapshot) error {
	preds, err := linear.Predict(ds.Matrix(), snap.Weights, snap.Bias)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\nstate:      %s after %d of %d iterations\n", snap.State, snap.Iteration, snap.MaxIter)
	fmt.Fprintf(a.out, "weights:    %s\n", formatFloats(snap.Weights))
	fmt.Fprintf(a.out, "bias:       %.4f\n", snap.Bias)
	fmt.Fprintf(a.out, "loss:       %.6f (initial %.6f)\n", snap.Loss, snap.LossHistory[0])
	if r2, err := metrics.R2Score(ds.Vector(), mat.NewVecDense(len(preds), preds)); err == nil {
		fmt.Fprintf(a.out, "r2:         %.4f\n", r2)
	}

	// The closed-form fit is what descent converges towards.
	ols := linear.NewLinearRegression()
	if err := ols.Fit(ds.Matrix(), ds.Vector()); err != nil {
		fmt.Fprintf(a.out, "optimum:    unavailable (%v)\n", err)
		return nil
	}
	optLoss, err := linear.Loss(ds.Matrix(), ds.Targets(), ols.GetWeights(), ols.GetIntercept())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "optimum:    w=%s b=%.4f loss %.6f\n",
		formatFloats(ols.GetWeights()), ols.GetIntercept(), optLoss)
	return nil
}

func writeDescendPlots(dir string, ds *dataset.Dataset, snap descent.Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create plot dir")
	}

	p, err := viz.LossCurve(snap)
	if err != nil {
		return err
	}
	if err := viz.Save(p, filepath.Join(dir, "loss.png")); err != nil {
		return err
	}
	if ds.NFeatures() != 1 {
		return nil
	}

	p, err = viz.RegressionLine(ds, snap.Weights[0], snap.Bias)
	if err != nil {
		return err
	}
	if err := viz.Save(p, filepath.Join(dir, "regression.png")); err != nil {
		return err
	}

	g, err := surface.NewGrid(ds, surface.DefaultWeightRange, surface.DefaultBiasRange, surface.DefaultSteps)
	if err != nil {
		return err
	}
	p, err = viz.Contour(g, snap.Path(), contourLevels)
	if err != nil {
		return err
	}
	return viz.Save(p, filepath.Join(dir, "contour.png"))
}

const contourLevels = 12

func formatFloats(v []float64) string {
	return fmt.Sprintf("%.4f", v)
}
