package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSprintRequest struct {
	Name       string      `json:"name" binding:"required,not_empty,max=255"`
	Goal       string      `json:"goal"`
	StartDate  time.Time   `json:"startDate" binding:"required"`
	EndDate    time.Time   `json:"endDate" binding:"required"`
	Capacity   *float64    `json:"capacity,omitempty" binding:"omitempty,min=0"`
	ProjectIDs []uuid.UUID `json:"projectIds,omitempty"`
}

type UpdateSprintStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PLANNING ACTIVE COMPLETED CANCELLED"`
}

type LinkProjectRequest struct {
	ProjectID uuid.UUID `json:"projectId" binding:"required"`
}

type SprintResponse struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	Goal       string      `json:"goal"`
	Status     string      `json:"status"`
	StartDate  time.Time   `json:"startDate"`
	EndDate    time.Time   `json:"endDate"`
	Capacity   *float64    `json:"capacity,omitempty"`
	ProjectIDs []uuid.UUID `json:"projectIds"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}
