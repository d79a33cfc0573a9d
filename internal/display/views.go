package display

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/nurpe/aquacred-registry/internal/model"
)

// Chain records carry no coordinates; markers default to the centre of India.
var defaultGeometry = model.Geometry{Type: "Point", Coordinates: [2]float64{78.9629, 20.5937}}

func ProjectViewOf(p model.Project) model.ProjectView {
	return model.ProjectView{
		ID:               fmt.Sprintf("blockchain-%d", p.ProjectID),
		Name:             p.ProjectName,
		State:            p.Location,
		ImplementingBody: p.ImplementingBody,
		CreditsIssued:    CalculateEstimatedCO2(float64(p.AreaHectares), p.ProjectType),
		Geometry:         defaultGeometry,
		AreaHectares:     p.AreaHectares,
		StartDate:        FormatTimestamp(p.StartDate),
		ProjectType:      p.ProjectType,
		IsBlockchain:     true,
		BlockchainID:     p.ProjectID,
	}
}

func ProjectViews(projects []model.Project) []model.ProjectView {
	views := make([]model.ProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, ProjectViewOf(p))
	}
	return views
}

// FilterProjects keeps projects whose name or location contains search, ignoring case.
func FilterProjects(projects []model.Project, search string) []model.Project {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return projects
	}
	result := make([]model.Project, 0, len(projects))
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.ProjectName), search) ||
			strings.Contains(strings.ToLower(p.Location), search) {
			result = append(result, p)
		}
	}
	return result
}

// Summarize totals the registry. Totals saturate instead of wrapping.
func Summarize(projects []model.Project) model.DashboardSummary {
	summary := model.DashboardSummary{TotalProjects: len(projects)}
	byType := make(map[string]*model.TypeBreakdown)

	var hectares uint64
	for _, p := range projects {
		co2 := CalculateEstimatedCO2(float64(p.AreaHectares), p.ProjectType)
		hectares = addSaturatedUint(hectares, p.AreaHectares)
		summary.TotalCO2Sequestered = addSaturated(summary.TotalCO2Sequestered, co2)

		entry, ok := byType[p.ProjectType]
		if !ok {
			entry = &model.TypeBreakdown{ProjectType: p.ProjectType}
			byType[p.ProjectType] = entry
		}
		entry.Projects++
		entry.Hectares = addSaturatedUint(entry.Hectares, p.AreaHectares)
		entry.EstimatedCO2 = addSaturated(entry.EstimatedCO2, co2)
	}

	summary.TotalHectares = math.MaxInt64
	if hectares < math.MaxInt64 {
		summary.TotalHectares = int64(hectares)
	}
	summary.TotalCreditsIssued = summary.TotalCO2Sequestered

	summary.ByType = make([]model.TypeBreakdown, 0, len(byType))
	for _, entry := range byType {
		summary.ByType = append(summary.ByType, *entry)
	}
	slices.SortFunc(summary.ByType, func(a, b model.TypeBreakdown) int {
		return strings.Compare(a.ProjectType, b.ProjectType)
	})
	return summary
}
