package project

import (
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/apperrors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrMilestoneNotFound = apperrors.NotFound("milestone not found")

type MilestoneStatus string

const (
	MilestoneStatusPending    MilestoneStatus = "PENDING"
	MilestoneStatusInProgress MilestoneStatus = "IN_PROGRESS"
	MilestoneStatusCompleted  MilestoneStatus = "COMPLETED"
)

func (s MilestoneStatus) IsValid() bool {
	switch s {
	case MilestoneStatusPending, MilestoneStatusInProgress, MilestoneStatusCompleted:
		return true
	}
	return false
}

// Milestone groups tasks of one project toward a delivery date.
type Milestone struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID   uuid.UUID       `json:"projectId" gorm:"type:uuid;not null;index:idx_milestone_project"`
	Project     *Project        `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null"`
	Description string          `json:"description" gorm:"type:text"`
	Status      MilestoneStatus `json:"status" gorm:"type:varchar(20);not null"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (Milestone) TableName() string {
	return "milestones"
}

func (m *Milestone) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = MilestoneStatusPending
	}
	if !m.Status.IsValid() {
		return ErrInvalidInput.WithDetails(map[string]string{"status": "invalid milestone status"})
	}
	return nil
}

type CreateMilestoneInput struct {
	ProjectID   uuid.UUID
	Name        string
	Description string
	DueDate     *time.Time
}
