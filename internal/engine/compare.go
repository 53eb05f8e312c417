package engine

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/atlaspack/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.Settings
}

// ComparisonResult holds the build statistics for a single scenario.
type ComparisonResult struct {
	Scenario     ComparisonScenario
	Pages        int
	Images       int
	Rejected     int
	SolverCalls  int
	WastePercent float64
	TotalPixels  int
	Err          error
}

// CompareScenarios builds the same images once per scenario. A scenario that
// fails records its error and does not stop the others.
func CompareScenarios(scenarios []ComparisonScenario, images []model.SourceImage, opts ...Option) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		b := New(scenario.Settings, append([]Option{WithLogger(quietLogger())}, opts...)...)
		res, err := b.Build(images)
		if err != nil {
			results = append(results, ComparisonResult{Scenario: scenario, Err: err})
			continue
		}

		total := 0
		for _, p := range res.Pages {
			total += p.TotalArea()
		}
		waste := 0.0
		if len(res.Pages) > 0 {
			waste = 100.0 - res.TotalEfficiency()
		}

		results = append(results, ComparisonResult{
			Scenario:     scenario,
			Pages:        len(res.Pages),
			Images:       res.ImageCount(),
			Rejected:     len(res.Rejected),
			SolverCalls:  res.Stats.SolverCalls,
			WastePercent: waste,
			TotalPixels:  total,
		})
	}

	return results
}

// BuildDefaultScenarios varies the base settings to show what-if alternatives.
func BuildDefaultScenarios(base model.Settings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Settings: base},
	}

	flip := base
	flip.AllowFlipping = !base.AllowFlipping
	name := "Flipping Enabled"
	if base.AllowFlipping {
		name = "Flipping Disabled"
	}
	scenarios = append(scenarios, ComparisonScenario{Name: name, Settings: flip})

	if base.Padding > 0 {
		noPad := base
		noPad.Padding = 0
		scenarios = append(scenarios, ComparisonScenario{Name: "No Padding", Settings: noPad})
	}

	if base.MaxSize < model.MaxAllowedSize {
		bigger := base
		bigger.MaxSize = min(base.MaxSize*2, model.MaxAllowedSize)
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Max Size %d", bigger.MaxSize),
			Settings: bigger,
		})
	}

	if !base.PowerOfTwo && model.IsPowerOfTwo(base.MaxSize) {
		pot := base
		pot.PowerOfTwo = true
		scenarios = append(scenarios, ComparisonScenario{Name: "Power of Two", Settings: pot})
	}

	return scenarios
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}
