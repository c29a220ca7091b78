// Command txpipe runs the four-stage lock-free transaction bundler
// pipeline (§2): ingress, book-fold, batch, and output, connected by
// three SPSC rings and pinned to dedicated cores when the platform
// allows.
//
// The control flow -- parse flags into a Config, construct the engine,
// install a signal-driven shutdown, run, then exit -- mirrors
// order-matching-engine/cmd/server/main.go's main(), generalized from
// an HTTP server's Start/Shutdown pair to the pipeline's run-for-a-
// duration-or-until-signalled model.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/agilira/iris"

	"github.com/hftlab/txpipe/internal/cycle"
	"github.com/hftlab/txpipe/internal/pipeline"
)

func main() {
	var cli pipeline.CLI
	kong.Parse(&cli,
		kong.Name("txpipe"),
		kong.Description("Lock-free, zero-allocation transaction bundler pipeline."),
		kong.UsageOnError(),
	)

	cfg := cli.ToConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "txpipe:", err)
		os.Exit(1)
	}

	// §4.1: calibrate the cycle counter as the very first action, before
	// any I/O or thread creation, so no worker can ever read a
	// not-yet-published ticks-per-ns factor.
	cycle.Calibrate()

	logger, err := iris.New(iris.Config{
		Level:   iris.Info,
		Output:  iris.WrapWriter(os.Stdout),
		Encoder: iris.NewJSONEncoder(),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "txpipe: failed to construct logger:", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
		logger.Close()
	}()

	logger.Info("txpipe starting",
		iris.String("duration", cfg.RunDuration.String()),
		iris.Float64("rate_per_sec", cfg.RatePerSec),
		iris.Int64("pin_base_core", int64(cfg.PinBaseCore)),
	)

	orch := pipeline.New(cfg, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	stopCh := make(chan struct{})
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		close(stopCh)
	}()

	orch.Run(stopCh)

	logger.Info("txpipe stopped")
}
