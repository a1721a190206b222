package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alanjfs/physx/internal/config"
	"github.com/alanjfs/physx/internal/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	configFile string
	logLevel   string
	workers    int
	substeps   int
	timestep   float64

	cfg    *config.Config
	logger *zap.Logger
	styles styles
}

// main runs the demo scenes. It exits with status 1 when a command fails.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{styles: newStyles(out)}

	rootCmd := &cobra.Command{
		Use:           "physx",
		Short:         "rigid body demo scenes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file path (yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.IntVar(&opts.workers, "workers", 0, "worker goroutines (overrides config)")
	flags.IntVar(&opts.substeps, "substeps", 0, "substeps per step (overrides config)")
	flags.Float64Var(&opts.timestep, "timestep", 0, "step length in seconds, 0 for the scene default")

	rootCmd.AddCommand(
		newHelloCmd(opts),
		newStackCmd(opts),
		newJointCmd(opts),
		newCapsuleCmd(opts),
	)

	return rootCmd
}

// setup loads the configuration, applies the flags set on the command line
// and builds the logger.
func (o *options) setup(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()
	if o.configFile != "" {
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("workers") {
		cfg.Scene.Workers = o.workers
	}
	if flags.Changed("substeps") {
		cfg.Scene.Substeps = o.substeps
	}
	if o.timestep < 0 {
		return fmt.Errorf("timestep %v must not be negative", o.timestep)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := log.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = logger
	return nil
}

// dt returns the --timestep flag, or fallback when it is unset.
func (o *options) dt(fallback float64) float64 {
	if o.timestep > 0 {
		return o.timestep
	}
	return fallback
}
