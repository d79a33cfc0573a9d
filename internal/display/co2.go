package display

import (
	"math"

	"github.com/nurpe/aquacred-registry/internal/model"
)

// Rough sequestration estimates, tonnes of CO2 per hectare per year.
var sequestrationRates = map[string]float64{
	model.ProjectTypeMangroveAfforestation: 12,
	model.ProjectTypeMangroveRestoration:   10,
	model.ProjectTypeSeagrassRestoration:   8,
	model.ProjectTypeSaltMarshRestoration:  6,
	model.ProjectTypeCoastalWetland:        7,
	model.ProjectTypeMarineProtectedArea:   5,
	model.ProjectTypeOtherBlueCarbon:       8,
}

const defaultSequestrationRate = 8

func SequestrationRate(projectType string) float64 {
	if rate, ok := sequestrationRates[projectType]; ok && rate > 0 {
		return rate
	}
	return defaultSequestrationRate
}

// CalculateEstimatedCO2 returns floor(hectares * rate) for the project type,
// saturating at math.MaxInt64. Negative areas yield 0.
func CalculateEstimatedCO2(hectares float64, projectType string) int64 {
	return saturatedInt64(math.Floor(hectares * SequestrationRate(projectType)))
}

func saturatedInt64(v float64) int64 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= math.MaxInt64:
		return math.MaxInt64
	}
	return int64(v)
}

// addSaturated adds two non-negative totals without wrapping.
func addSaturated(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func addSaturatedUint(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// ProjectTypes lists the recognised project types in form order.
func ProjectTypes() []string {
	return []string{
		model.ProjectTypeMangroveAfforestation,
		model.ProjectTypeMangroveRestoration,
		model.ProjectTypeSeagrassRestoration,
		model.ProjectTypeSaltMarshRestoration,
		model.ProjectTypeCoastalWetland,
		model.ProjectTypeMarineProtectedArea,
		model.ProjectTypeOtherBlueCarbon,
	}
}
