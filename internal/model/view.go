package model

import "time"

type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// ProjectView is the dashboard card / map marker shape of a chain project.
type ProjectView struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	State            string   `json:"state"`
	ImplementingBody string   `json:"implementing_body"`
	CreditsIssued    int64    `json:"credits_issued"`
	Geometry         Geometry `json:"geometry"`
	AreaHectares     uint64   `json:"area_hectares"`
	StartDate        string   `json:"start_date"`
	ProjectType      string   `json:"project_type"`
	IsBlockchain     bool     `json:"isBlockchain"`
	BlockchainID     uint64   `json:"blockchainId"`
}

type TypeBreakdown struct {
	ProjectType  string `json:"projectType"`
	Projects     int    `json:"projects"`
	Hectares     uint64 `json:"hectares"`
	EstimatedCO2 int64  `json:"estimatedCO2"`
}

type DashboardSummary struct {
	TotalProjects       int             `json:"totalProjects"`
	TotalHectares       int64           `json:"totalHectares"`
	TotalCO2Sequestered int64           `json:"totalCO2Sequestered"`
	TotalCreditsIssued  int64           `json:"totalCreditsIssued"`
	ByType              []TypeBreakdown `json:"byType"`
}

type RegistryExport struct {
	GeneratedAt time.Time
	Network     string
	Projects    []Project
	Summary     DashboardSummary
}

type ProjectCertificate struct {
	Project         Project
	EstimatedCO2    int64
	StartDate       string
	ContractAddress string
	ContractURL     string
	IssuedAt        time.Time
}
