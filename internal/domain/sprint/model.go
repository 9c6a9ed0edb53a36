package sprint

import (
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/project"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/apperrors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSprintNotFound    = apperrors.NotFound("sprint not found")
	ErrInvalidInput      = apperrors.Validation("invalid sprint input", nil)
	ErrInvalidTransition = apperrors.InvalidState("invalid sprint status transition")
	ErrAlreadyLinked     = apperrors.Conflict("project already linked to sprint")
	ErrNotLinked         = apperrors.NotFound("project is not linked to sprint")
)

type Status string

const (
	StatusPlanning  Status = "PLANNING"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPlanning, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var validTransitions = map[Status][]Status{
	StatusPlanning: {StatusActive, StatusCancelled},
	StatusActive:   {StatusCompleted, StatusCancelled},
}

func isValidTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Sprint is a time box. Its tasks are the sprint partitions of every linked project.
type Sprint struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Goal      string    `json:"goal" gorm:"type:text"`
	Status    Status    `json:"status" gorm:"type:varchar(20);not null;index:idx_sprint_status"`
	StartDate time.Time `json:"startDate" gorm:"not null"`
	EndDate   time.Time `json:"endDate" gorm:"not null"`
	// Capacity is in story points.
	Capacity  *float64  `json:"capacity,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Sprint) TableName() string {
	return "sprints"
}

func (s *Sprint) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = StatusPlanning
	}
	return nil
}

// SprintProject links a sprint to a project.
type SprintProject struct {
	SprintID  uuid.UUID        `json:"sprintId" gorm:"type:uuid;primaryKey"`
	ProjectID uuid.UUID        `json:"projectId" gorm:"type:uuid;primaryKey;index:idx_sprint_project_project"`
	Sprint    *Sprint          `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Project   *project.Project `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (SprintProject) TableName() string {
	return "sprint_projects"
}

type CreateSprintInput struct {
	Name       string
	Goal       string
	StartDate  time.Time
	EndDate    time.Time
	Capacity   *float64
	ProjectIDs []uuid.UUID
}

func (in CreateSprintInput) validate() error {
	details := map[string]string{}
	if in.Name == "" {
		details["name"] = "required"
	}
	if in.StartDate.IsZero() {
		details["startDate"] = "required"
	}
	if in.EndDate.IsZero() {
		details["endDate"] = "required"
	} else if !in.StartDate.IsZero() && in.EndDate.Before(in.StartDate) {
		details["endDate"] = "must not be before startDate"
	}
	if in.Capacity != nil && *in.Capacity < 0 {
		details["capacity"] = "must be >= 0"
	}
	if len(details) > 0 {
		return ErrInvalidInput.WithDetails(details)
	}
	return nil
}

type SprintFilter struct {
	Status    *Status
	ProjectID *uuid.UUID
}
