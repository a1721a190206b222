package snippets

import (
	"context"
	"fmt"
	"time"

	"github.com/alanjfs/physx"
)

// Report is the outcome of a Simulate run.
type Report struct {
	Steps   int
	Elapsed time.Duration
}

func (r Report) Millis() float64 {
	return float64(r.Elapsed) / float64(time.Millisecond)
}

// FPS is the number of steps per wall clock second, 0 when no time elapsed.
func (r Report) FPS() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Steps) / r.Elapsed.Seconds()
}

// StepFunc is called after every completed step with its index.
type StepFunc func(step int) error

// Simulate advances scene by steps fixed timesteps of dt. It stops early when
// ctx is done or onStep fails; the report then counts the completed steps.
func Simulate(ctx context.Context, scene *physx.Scene, steps int, dt float64, onStep StepFunc) (Report, error) {
	start := time.Now()
	report := Report{}

	for i := range steps {
		if err := ctx.Err(); err != nil {
			report.Elapsed = time.Since(start)
			return report, err
		}

		if err := scene.Step(dt); err != nil {
			report.Elapsed = time.Since(start)
			return report, fmt.Errorf("step %d: %w", i, err)
		}
		report.Steps++

		if onStep != nil {
			if err := onStep(i); err != nil {
				report.Elapsed = time.Since(start)
				return report, err
			}
		}
	}

	report.Elapsed = time.Since(start)
	return report, nil
}
