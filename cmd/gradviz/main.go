// Command gradviz generates synthetic regression data and shows, step by
// step, how gradient descent fits a linear model to it.
//
//	gradviz descend --learning-rate 0.05 --iterations 200 --plot-dir out
//	gradviz surface --probe 1,0.5 --plot-dir out
//	gradviz regress --features 3 --samples 100
//	gradviz vector cross 1,0,0 0,1,0
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ezoic/gradviz/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout).ExecuteContext(ctx); err != nil {
		log.LogError(err, "gradviz failed")
		stop()
		os.Exit(1)
	}
}
