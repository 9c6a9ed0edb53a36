package project

import (
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/apperrors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Common errors
var (
	ErrProjectNotFound = apperrors.NotFound("project not found")
	ErrInvalidInput    = apperrors.Validation("invalid project input", nil)
)

type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "PLANNING"
	ProjectStatusInProgress ProjectStatus = "IN_PROGRESS"
	ProjectStatusOnHold     ProjectStatus = "ON_HOLD"
	ProjectStatusCompleted  ProjectStatus = "COMPLETED"
	ProjectStatusCancelled  ProjectStatus = "CANCELLED"
)

// IsValid validates the project status
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusInProgress, ProjectStatusOnHold,
		ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// Project owns one backlog partition and one partition per linked sprint.
type Project struct {
	ID          uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string        `json:"name" gorm:"type:varchar(255);not null"`
	Description string        `json:"description" gorm:"type:text"`
	Status      ProjectStatus `json:"status" gorm:"type:varchar(20);not null;index:idx_project_status"`
	ClientID    *uuid.UUID    `json:"clientId,omitempty" gorm:"type:uuid;index:idx_project_client"`
	StartDate   *time.Time    `json:"startDate,omitempty"`
	EndDate     *time.Time    `json:"endDate,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func (Project) TableName() string {
	return "projects"
}

// BeforeCreate is called before inserting a new project
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProjectStatusPlanning
	}
	if !p.Status.IsValid() {
		return ErrInvalidInput.WithDetails(map[string]string{"status": "invalid project status"})
	}
	return nil
}

type CreateProjectInput struct {
	Name        string
	Description string
	Status      ProjectStatus
	ClientID    *uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
}
