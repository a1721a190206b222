package main

import (
	"fmt"

	"github.com/alanjfs/physx/snippets"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	helloTimestep   = 1.0 / 60
	defaultTimestep = 1.0 / 30
	defaultSteps    = 100
)

func newHelloCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "hello",
		Short: "knock over a small stack with a capsule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			demo, err := snippets.BuildHelloWorld(opts.cfg.SceneDesc(opts.logger), opts.cfg.Material.Material())
			if err != nil {
				return err
			}
			defer demo.Scene.Release()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, opts.styles.title.Render("Simulating.."))
			_, err = snippets.Simulate(cmd.Context(), demo.Scene, defaultSteps, opts.dt(helloTimestep), func(step int) error {
				fmt.Fprintf(out, "Step %d\n", step)
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, opts.styles.result.Render("Finished"))
			return nil
		},
	}
}

func newStackCmd(opts *options) *cobra.Command {
	var steps, size int

	cmd := &cobra.Command{
		Use:   "stack",
		Short: "simulate a stack of boxes hit by a capsule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			demo, err := snippets.BuildStack(opts.cfg.SceneDesc(opts.logger), opts.cfg.Material.Material(), size)
			if err != nil {
				return err
			}
			defer demo.Scene.Release()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, opts.styles.title.Render(fmt.Sprintf("Simulating %d boxes in %d steps..", len(demo.Bodies), steps)))
			report, err := snippets.Simulate(cmd.Context(), demo.Scene, steps, opts.dt(defaultTimestep), nil)
			if err != nil {
				return err
			}
			printFinished(cmd, opts, report)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", defaultSteps, "number of steps")
	cmd.Flags().IntVar(&size, "size", 10, "boxes on the bottom row")

	return cmd
}

func newJointCmd(opts *options) *cobra.Command {
	var steps, length int

	cmd := &cobra.Command{
		Use:   "joint",
		Short: "simulate chains of spherical, fixed and D6 joints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			demo, err := snippets.BuildJoints(opts.cfg.SceneDesc(opts.logger), opts.cfg.Material.Material(), length)
			if err != nil {
				return err
			}
			defer demo.Scene.Release()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, opts.styles.title.Render(fmt.Sprintf("Simulating %d joints in %d steps..", length, steps)))
			report, err := snippets.Simulate(cmd.Context(), demo.Scene, steps, opts.dt(defaultTimestep), nil)
			if err != nil {
				return err
			}
			printFinished(cmd, opts, report)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", defaultSteps, "number of steps")
	cmd.Flags().IntVar(&length, "length", 5, "links per chain")

	return cmd
}

func newCapsuleCmd(opts *options) *cobra.Command {
	var (
		steps int
		plot  bool
	)

	cmd := &cobra.Command{
		Use:   "capsule",
		Short: "drop a spinning capsule on a plane",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			demo, err := snippets.BuildSoloCapsule(opts.cfg.SceneDesc(opts.logger))
			if err != nil {
				return err
			}
			defer demo.Scene.Release()

			out := cmd.OutOrStdout()
			heights := make([]float64, 0, steps)

			report, err := snippets.Simulate(cmd.Context(), demo.Scene, steps, opts.dt(defaultTimestep), func(step int) error {
				pose := demo.Capsule.GlobalPose()
				heights = append(heights, pose.Position.Y())
				if !plot {
					fmt.Fprintf(out, "Step %d: %s\n", step, pose)
				}
				return nil
			})
			if err != nil {
				return err
			}

			if plot && len(heights) > 0 {
				graph := asciigraph.Plot(heights,
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.Caption("capsule height (m)"),
				)
				fmt.Fprintln(out, graph)
				fmt.Fprintln(out)
			}
			printFinished(cmd, opts, report)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", defaultSteps, "number of steps")
	cmd.Flags().BoolVar(&plot, "plot", false, "plot the capsule height instead of printing poses")

	return cmd
}

func printFinished(cmd *cobra.Command, opts *options, report snippets.Report) {
	line := fmt.Sprintf("Finished in %.2f ms (%d fps)", report.Millis(), int(report.FPS()))
	fmt.Fprintln(cmd.OutOrStdout(), opts.styles.result.Render(line))
	opts.logger.Info("simulation finished",
		zap.String("command", cmd.Name()),
		zap.Int("steps", report.Steps),
		zap.Duration("elapsed", report.Elapsed),
	)
}
