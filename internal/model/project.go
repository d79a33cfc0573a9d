package model

// Project mirrors the AquaCredRegistry.Project struct returned by the contract.
// Numeric fields are normalized from uint256.
type Project struct {
	ProjectID        uint64 `json:"projectId"`
	ProjectName      string `json:"projectName"`
	Location         string `json:"location"`
	ImplementingBody string `json:"implementingBody"`
	AreaHectares     uint64 `json:"areaHectares"`
	StartDate        int64  `json:"startDate"`
	ProjectType      string `json:"projectType"`
	IsInitialized    bool   `json:"isInitialized"`
}

// Registration is the portal input for a new project. StartDate is an ISO date.
type Registration struct {
	ProjectName      string `json:"projectName"`
	Location         string `json:"location"`
	ImplementingBody string `json:"implementingBody"`
	AreaHectares     uint64 `json:"areaHectares"`
	StartDate        string `json:"startDate"`
	ProjectType      string `json:"projectType"`
}

// ProjectDraft carries the registerProject call arguments.
type ProjectDraft struct {
	ProjectName      string
	Location         string
	ImplementingBody string
	AreaHectares     uint64
	StartDate        int64
	ProjectType      string
}

type ProjectRegisteredEvent struct {
	ProjectID        uint64
	ProjectName      string
	ImplementingBody string
	TxHash           string
	BlockNumber      uint64
}

const (
	ProjectTypeMangroveAfforestation = "Mangrove Afforestation"
	ProjectTypeMangroveRestoration   = "Mangrove Restoration"
	ProjectTypeSeagrassRestoration   = "Seagrass Restoration"
	ProjectTypeSaltMarshRestoration  = "Salt Marsh Restoration"
	ProjectTypeCoastalWetland        = "Coastal Wetland Restoration"
	ProjectTypeMarineProtectedArea   = "Marine Protected Area"
	ProjectTypeOtherBlueCarbon       = "Other Blue Carbon Project"
)
