package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/aquacred-registry/internal/display"
	"github.com/nurpe/aquacred-registry/internal/model"
)

const maxSheetName = 31

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes a summary sheet followed by one sheet per project type.
func (g *Generator) Generate(export model.RegistryExport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	summarySheet := "Summary"
	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, summarySheet, export)

	groups := groupByType(export.Projects)
	usedNames := map[string]struct{}{summarySheet: {}}
	for _, projectType := range sortedTypes(groups) {
		sheetName := buildSheetName(projectType, usedNames)
		usedNames[sheetName] = struct{}{}

		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		g.writeDetail(file, sheetName, export, projectType, groups[projectType])
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, export model.RegistryExport) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Registry")
	set("B1", "AquaCred Blue Carbon Registry")
	set("A2", "Network")
	set("B2", export.Network)
	set("A3", "Generated at")
	set("B3", formatDateTime(export.GeneratedAt))
	set("A4", "Projects")
	set("B4", export.Summary.TotalProjects)
	set("A5", "Area, ha")
	set("B5", export.Summary.TotalHectares)
	set("A6", "Estimated CO2, t")
	set("B6", export.Summary.TotalCO2Sequestered)

	tableRow := 8
	set(fmt.Sprintf("A%d", tableRow), "Project type")
	set(fmt.Sprintf("B%d", tableRow), "Projects")
	set(fmt.Sprintf("C%d", tableRow), "Area, ha")
	set(fmt.Sprintf("D%d", tableRow), "Estimated CO2, t")

	for i, item := range export.Summary.ByType {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), item.ProjectType)
		set(fmt.Sprintf("B%d", row), item.Projects)
		set(fmt.Sprintf("C%d", row), item.Hectares)
		set(fmt.Sprintf("D%d", row), item.EstimatedCO2)
	}

	_ = file.SetColWidth(sheet, "A", "A", 34)
	_ = file.SetColWidth(sheet, "B", "D", 18)
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, export model.RegistryExport, projectType string, projects []model.Project) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	var hectares uint64
	for _, p := range projects {
		hectares += p.AreaHectares
	}

	set("A1", "Project type")
	set("B1", projectType)
	set("A2", "Network")
	set("B2", export.Network)
	set("A3", "Projects")
	set("B3", len(projects))
	set("A4", "Area, ha")
	set("B4", hectares)
	set("A5", "Sequestration rate, t/ha")
	set("B5", display.SequestrationRate(projectType))

	tableRow := 7
	headers := []string{
		"ID",
		"Project name",
		"Location",
		"Implementing body",
		"Area, ha",
		"Start date",
		"Estimated CO2, t",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, p := range projects {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), p.ProjectID)
		set(fmt.Sprintf("B%d", row), p.ProjectName)
		set(fmt.Sprintf("C%d", row), p.Location)
		set(fmt.Sprintf("D%d", row), p.ImplementingBody)
		set(fmt.Sprintf("E%d", row), p.AreaHectares)
		set(fmt.Sprintf("F%d", row), display.FormatTimestamp(p.StartDate))
		set(fmt.Sprintf("G%d", row), display.CalculateEstimatedCO2(float64(p.AreaHectares), p.ProjectType))
	}

	_ = file.SetColWidth(sheet, "A", "A", 8)
	_ = file.SetColWidth(sheet, "B", "D", 32)
	_ = file.SetColWidth(sheet, "E", "G", 16)
}

func groupByType(projects []model.Project) map[string][]model.Project {
	groups := make(map[string][]model.Project)
	for _, p := range projects {
		key := strings.TrimSpace(p.ProjectType)
		groups[key] = append(groups[key], p)
	}
	return groups
}

func sortedTypes(groups map[string][]model.Project) []string {
	types := make([]string, 0, len(groups))
	for key := range groups {
		types = append(types, key)
	}
	sort.Strings(types)
	return types
}

func buildSheetName(projectType string, used map[string]struct{}) string {
	base := sanitizeSheetName(projectType)
	if len([]rune(base)) > maxSheetName {
		base = string([]rune(base)[:maxSheetName])
	}

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := []rune(base)
		if len(trimmed)+len(suffix) > maxSheetName {
			trimmed = trimmed[:maxSheetName-len(suffix)]
		}
		nameCandidate = string(trimmed) + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
		"'", "",
	)
	value = strings.TrimSpace(replacer.Replace(value))
	if value == "" {
		return "Other"
	}
	return value
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
