package timer

import (
	"net/http"
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/task"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/user"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/apperrors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidInput = apperrors.Validation("validation failed", nil)
	// ErrTimerAlreadyActive is a conflict but answers 400 on the wire.
	ErrTimerAlreadyActive = apperrors.Conflict("an active timer already exists for this task").WithStatus(http.StatusBadRequest)
	ErrEntryNotActive     = apperrors.InvalidState("time entry not found or already closed")
	ErrNegativeDuration   = apperrors.Internal("time entry ends before it starts", nil)
)

// TimeEntry records one Running interval of a task. EndTime and Duration are
// set once when the entry is closed and never change afterwards.
type TimeEntry struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TaskID    uuid.UUID  `json:"taskId" gorm:"type:uuid;not null;index:idx_time_entry_task;uniqueIndex:idx_time_entry_open,where:end_time IS NULL"`
	UserID    uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index:idx_time_entry_user"`
	StartTime time.Time  `json:"startTime" gorm:"not null"`
	EndTime   *time.Time `json:"endTime"`
	Duration  *int64     `json:"duration"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	Task *task.Task `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	User *user.User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (TimeEntry) TableName() string {
	return "time_entries"
}

func (e *TimeEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether the entry is still running.
func (e *TimeEntry) IsActive() bool {
	return e.EndTime == nil
}

// Summary is the rollup of all entries of one task.
type Summary struct {
	TaskID        uuid.UUID  `json:"taskId"`
	TotalSeconds  int64      `json:"totalSeconds"`
	ActualMinutes int        `json:"actualMinutes"`
	ClosedEntries int        `json:"closedEntries"`
	ActiveEntry   *TimeEntry `json:"activeEntry"`
}

// StopResult is the closed entry together with the task carrying its new actualMinutes.
type StopResult struct {
	Entry *TimeEntry `json:"entry"`
	Task  *task.Task `json:"task"`
}
