package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	Name        string     `json:"name" binding:"required,not_empty,max=255"`
	Description string     `json:"description"`
	Status      string     `json:"status,omitempty" binding:"omitempty,oneof=PLANNING IN_PROGRESS ON_HOLD COMPLETED CANCELLED"`
	ClientID    *uuid.UUID `json:"clientId,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

type CreateMilestoneRequest struct {
	Name        string     `json:"name" binding:"required,not_empty,max=255"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}
