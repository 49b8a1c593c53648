package load_plot

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySeries  = errors.New("measurement series is empty")
	ErrSeriesLength = errors.New("measurement series have different lengths")
)

// Series pairs concurrent users with the average response time measured at that load.
type Series struct {
	Users     []float64 `mapstructure:"users"`
	LatencyMs []float64 `mapstructure:"latency_ms"`
}

// DefaultSeries returns the measurements of the attendance server load test.
func DefaultSeries() Series {
	return Series{
		Users: []float64{
			50, 100, 150, 200, 250, 300, 350, 450, 500,
			550, 600, 650, 700, 750, 800, 850, 900,
			1000, 1200, 1500, 1800, 2000,
		},
		LatencyMs: []float64{
			167.50, 290.92, 325.03, 418.04, 479.88, 617.68, 701.84, 939.48, 999.49,
			1084.84, 1205.01, 1289.80, 1358.88, 1475.60, 1620.93, 1593.78, 1789.59,
			1881.13, 2208.04, 2923.66, 3483.66, 3756.68,
		},
	}
}

func (s Series) Validate() error {
	if len(s.Users) == 0 || len(s.LatencyMs) == 0 {
		return ErrEmptySeries
	}
	if len(s.Users) != len(s.LatencyMs) {
		return fmt.Errorf("%w: %d users, %d latencies", ErrSeriesLength, len(s.Users), len(s.LatencyMs))
	}
	return nil
}

// Len implements plotter.XYer.
func (s Series) Len() int { return len(s.Users) }

// XY implements plotter.XYer.
func (s Series) XY(i int) (float64, float64) { return s.Users[i], s.LatencyMs[i] }

// Last returns the final sample.
func (s Series) Last() (users, latencyMs float64) {
	return s.XY(s.Len() - 1)
}
