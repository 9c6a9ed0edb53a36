package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartTimerRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
}

type StopTimerRequest struct {
	EntryID uuid.UUID `json:"entryId" binding:"required"`
}

type TimeEntryResponse struct {
	ID        uuid.UUID  `json:"id"`
	TaskID    uuid.UUID  `json:"taskId"`
	UserID    uuid.UUID  `json:"userId"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	Duration  *int64     `json:"duration"`
	IsActive  bool       `json:"isActive"`
}

// StopTimerResponse is the closed entry and the task with its refreshed actualMinutes.
type StopTimerResponse struct {
	Entry *TimeEntryResponse `json:"entry"`
	Task  *TaskResponse      `json:"task"`
}

type TimeSummaryResponse struct {
	TaskID        uuid.UUID          `json:"taskId"`
	TotalSeconds  int64              `json:"totalSeconds"`
	ActualMinutes int                `json:"actualMinutes"`
	ClosedEntries int                `json:"closedEntries"`
	ActiveEntry   *TimeEntryResponse `json:"activeEntry"`
}
