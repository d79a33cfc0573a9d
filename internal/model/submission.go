package model

import (
	"time"

	"github.com/google/uuid"
)

type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "PENDING"
	SubmissionConfirmed SubmissionStatus = "CONFIRMED"
	SubmissionFailed    SubmissionStatus = "FAILED"
)

// Submission is the portal's audit record of a registration request.
type Submission struct {
	ID               uuid.UUID        `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	ProjectName      string           `gorm:"column:project_name" json:"projectName"`
	Location         string           `gorm:"column:location" json:"location"`
	ImplementingBody string           `gorm:"column:implementing_body" json:"implementingBody"`
	AreaHectares     uint64           `gorm:"column:area_hectares" json:"areaHectares"`
	StartDate        string           `gorm:"column:start_date" json:"startDate"`
	ProjectType      string           `gorm:"column:project_type" json:"projectType"`
	SubmittedBy      string           `gorm:"column:submitted_by" json:"submittedBy,omitempty"`
	Status           SubmissionStatus `gorm:"column:status" json:"status"`
	TxHash           *string          `gorm:"column:tx_hash" json:"transactionHash,omitempty"`
	ErrorMessage     *string          `gorm:"column:error_message" json:"errorMessage,omitempty"`
	CreatedAt        time.Time        `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt        time.Time        `gorm:"column:updated_at" json:"updatedAt"`
}

func (Submission) TableName() string {
	return "project_submission"
}
