package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskRequest is the body of POST /api/tasks
type CreateTaskRequest struct {
	Title            string     `json:"title" binding:"required,not_empty,max=255"`
	Description      string     `json:"description"`
	ProjectID        uuid.UUID  `json:"projectId" binding:"required"`
	SprintID         *uuid.UUID `json:"sprintId,omitempty"`
	MilestoneID      *uuid.UUID `json:"milestoneId,omitempty"`
	AssigneeID       *uuid.UUID `json:"assigneeId,omitempty"`
	Priority         string     `json:"priority,omitempty" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	StoryPoints      *float64   `json:"storyPoints,omitempty" binding:"omitempty,min=0"`
	EstimatedMinutes *int       `json:"estimatedMinutes,omitempty" binding:"omitempty,min=0"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	StartTime        *time.Time `json:"startTime,omitempty"`
}

// MoveTaskRequest is the body of POST /api/tasks/move.
// DestinationIndex is a pointer so that 0 passes the required check.
type MoveTaskRequest struct {
	TaskID              uuid.UUID  `json:"taskId" binding:"required"`
	SourceSprintID      *uuid.UUID `json:"sourceSprintId"`
	DestinationSprintID *uuid.UUID `json:"destinationSprintId"`
	DestinationIndex    *int       `json:"destinationIndex" binding:"required"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=TODO IN_PROGRESS IN_REVIEW COMPLETED"`
}

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID               uuid.UUID  `json:"id"`
	ProjectID        uuid.UUID  `json:"projectId"`
	SprintID         *uuid.UUID `json:"sprintId"`
	MilestoneID      *uuid.UUID `json:"milestoneId,omitempty"`
	AssigneeID       *uuid.UUID `json:"assigneeId,omitempty"`
	CreatorID        *uuid.UUID `json:"creatorId,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           string     `json:"status"`
	Priority         string     `json:"priority"`
	Order            int        `json:"order"`
	StoryPoints      *float64   `json:"storyPoints,omitempty"`
	EstimatedMinutes *int       `json:"estimatedMinutes,omitempty"`
	ActualMinutes    *int       `json:"actualMinutes,omitempty"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	StartTime        *time.Time `json:"startTime,omitempty"`
	EndTime          *time.Time `json:"endTime,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type TaskActivityResponse struct {
	ID        uuid.UUID              `json:"id"`
	TaskID    uuid.UUID              `json:"taskId"`
	UserID    *uuid.UUID             `json:"userId,omitempty"`
	Action    string                 `json:"action"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}
