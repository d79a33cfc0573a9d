package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nurpe/aquacred-registry/internal/config"
	"github.com/nurpe/aquacred-registry/internal/display"
	"github.com/nurpe/aquacred-registry/internal/model"
)

type ExcelGenerator interface {
	Generate(export model.RegistryExport) ([]byte, error)
}

type PDFGenerator interface {
	Generate(cert model.ProjectCertificate) ([]byte, error)
}

type ProjectSource interface {
	GetProject(ctx context.Context, id uint64) (model.Project, error)
	GetAllProjects(ctx context.Context) ([]model.Project, error)
}

type ReportService struct {
	projects ProjectSource
	excel    ExcelGenerator
	pdf      PDFGenerator
	contract string
	network  string
	now      func() time.Time
}

type ReportResult struct {
	FileName string
	Content  []byte
}

func NewReportService(projects ProjectSource, excel ExcelGenerator, pdf PDFGenerator, cfg *config.Config) *ReportService {
	return &ReportService{
		projects: projects,
		excel:    excel,
		pdf:      pdf,
		contract: cfg.Chain.ContractAddress,
		network:  cfg.Chain.Network,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ExportProjects renders every registered project into a workbook.
func (s *ReportService) ExportProjects(ctx context.Context) (*ReportResult, error) {
	projects, err := s.projects.GetAllProjects(ctx)
	if err != nil {
		return nil, err
	}

	generatedAt := s.now()
	content, err := s.excel.Generate(model.RegistryExport{
		GeneratedAt: generatedAt,
		Network:     s.network,
		Projects:    projects,
		Summary:     display.Summarize(projects),
	})
	if err != nil {
		return nil, err
	}

	return &ReportResult{
		FileName: fmt.Sprintf("aquacred-projects-%s.xlsx", generatedAt.Format("20060102")),
		Content:  content,
	}, nil
}

// ProjectCertificate renders the registration certificate of one project.
func (s *ReportService) ProjectCertificate(ctx context.Context, id uint64) (*ReportResult, error) {
	project, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	cert := model.ProjectCertificate{
		Project:         project,
		EstimatedCO2:    display.CalculateEstimatedCO2(float64(project.AreaHectares), project.ProjectType),
		StartDate:       display.FormatTimestamp(project.StartDate),
		ContractAddress: s.contract,
		IssuedAt:        s.now(),
	}
	if s.contract != "" {
		cert.ContractURL = display.GetEtherscanAddressURL(s.contract, s.network)
	}

	content, err := s.pdf.Generate(cert)
	if err != nil {
		return nil, err
	}

	name := sanitizeFileName(project.ProjectName)
	fileName := fmt.Sprintf("aquacred-project-%d.pdf", project.ProjectID)
	if name != "" {
		fileName = fmt.Sprintf("aquacred-project-%d-%s.pdf", project.ProjectID, strings.ToLower(name))
	}
	return &ReportResult{FileName: fileName, Content: content}, nil
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
