package task

import (
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/project"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/sprint"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/user"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/apperrors"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Common errors
var (
	ErrTaskNotFound      = apperrors.NotFound("task not found")
	ErrInvalidInput      = apperrors.Validation("validation failed", nil)
	ErrInvalidTransition = apperrors.InvalidState("invalid status transition")
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

func (t TaskStatus) IsValid() bool {
	switch t {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview, TaskStatusCompleted:
		return true
	}
	return false
}

func (t TaskPriority) IsValid() bool {
	switch t {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// Task belongs to one project and at most one sprint. Order is dense per partition.
type Task struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID   uuid.UUID    `json:"projectId" gorm:"type:uuid;not null;index:idx_task_partition,priority:1"`
	SprintID    *uuid.UUID   `json:"sprintId" gorm:"type:uuid;index:idx_task_partition,priority:2"`
	Order       int          `json:"order" gorm:"column:sort_order;not null;index:idx_task_partition,priority:3"`
	MilestoneID *uuid.UUID   `json:"milestoneId,omitempty" gorm:"type:uuid;index:idx_task_milestone"`
	AssigneeID  *uuid.UUID   `json:"assigneeId,omitempty" gorm:"type:uuid;index:idx_task_assignee"`
	CreatorID   *uuid.UUID   `json:"creatorId,omitempty" gorm:"type:uuid"`
	Title       string       `json:"title" gorm:"type:varchar(255);not null"`
	Description string       `json:"description" gorm:"type:text"`
	Status      TaskStatus   `json:"status" gorm:"type:varchar(20);not null;index:idx_task_status"`
	Priority    TaskPriority `json:"priority" gorm:"type:varchar(10);not null"`

	StoryPoints      *float64 `json:"storyPoints,omitempty"`
	EstimatedMinutes *int     `json:"estimatedMinutes,omitempty"`
	ActualMinutes    *int     `json:"actualMinutes,omitempty"`

	DueDate     *time.Time `json:"dueDate,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty" gorm:"index:idx_task_completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Project   *project.Project   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Sprint    *sprint.Sprint     `json:"-"`
	Milestone *project.Milestone `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	Assignee  *user.User         `json:"-" gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL"`
	Creator   *user.User         `json:"-" gorm:"foreignKey:CreatorID;constraint:OnDelete:SET NULL"`
}

// TableName specifies the table name for the Task model
func (Task) TableName() string {
	return "tasks"
}

// BeforeCreate is called before creating a new task record
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	if t.Priority == "" {
		t.Priority = TaskPriorityMedium
	}
	return t.Validate()
}

// Validate checks if the task data is valid
func (t *Task) Validate() error {
	details := map[string]string{}
	if t.Title == "" {
		details["title"] = "required"
	}
	if t.ProjectID == uuid.Nil {
		details["projectId"] = "required"
	}
	if !t.Status.IsValid() {
		details["status"] = "must be one of TODO IN_PROGRESS IN_REVIEW COMPLETED"
	}
	if !t.Priority.IsValid() {
		details["priority"] = "must be one of LOW MEDIUM HIGH URGENT"
	}
	if t.Order < 0 {
		details["order"] = "must be >= 0"
	}
	if t.StoryPoints != nil && *t.StoryPoints < 0 {
		details["storyPoints"] = "must be >= 0"
	}
	if t.EstimatedMinutes != nil && *t.EstimatedMinutes < 0 {
		details["estimatedMinutes"] = "must be >= 0"
	}
	if len(details) > 0 {
		return ErrInvalidInput.WithDetails(details)
	}
	return nil
}

// Partition returns the key of the ordered list the task lives in.
func (t *Task) Partition() PartitionKey {
	return PartitionKey{ProjectID: t.ProjectID, SprintID: t.SprintID}
}

// PartitionKey identifies one ordered list. A nil SprintID is the project backlog.
type PartitionKey struct {
	ProjectID uuid.UUID
	SprintID  *uuid.UUID
}

func (k PartitionKey) IsBacklog() bool {
	return k.SprintID == nil
}

func (k PartitionKey) Equal(other PartitionKey) bool {
	if k.ProjectID != other.ProjectID {
		return false
	}
	if k.SprintID == nil || other.SprintID == nil {
		return k.SprintID == nil && other.SprintID == nil
	}
	return *k.SprintID == *other.SprintID
}

func (k PartitionKey) String() string {
	if k.SprintID == nil {
		return k.ProjectID.String() + "/backlog"
	}
	return k.ProjectID.String() + "/" + k.SprintID.String()
}

// Activity actions
const (
	ActivityCreated       = "created"
	ActivityMoved         = "moved"
	ActivityStatusChanged = "status_changed"
	ActivityTimerStarted  = "timer_started"
	ActivityTimerStopped  = "timer_stopped"
)

// TaskActivity is an append-only history row written in the same transaction as the change.
type TaskActivity struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TaskID    uuid.UUID      `json:"taskId" gorm:"type:uuid;not null;index:idx_task_activity_task"`
	UserID    *uuid.UUID     `json:"userId,omitempty" gorm:"type:uuid;index:idx_task_activity_user"`
	Action    string         `json:"action" gorm:"type:varchar(50);not null"`
	Timestamp time.Time      `json:"timestamp" gorm:"not null"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	Task      *Task          `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (TaskActivity) TableName() string {
	return "task_activities"
}

func (a *TaskActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	return nil
}

// CreateTaskInput carries the fields accepted when creating a task.
type CreateTaskInput struct {
	Title            string
	Description      string
	ProjectID        uuid.UUID
	SprintID         *uuid.UUID
	MilestoneID      *uuid.UUID
	AssigneeID       *uuid.UUID
	CreatorID        *uuid.UUID
	Priority         TaskPriority
	StoryPoints      *float64
	EstimatedMinutes *int
	DueDate          *time.Time
	StartDate        *time.Time
	StartTime        *time.Time
}

// MoveTaskInput describes a drag of one task to a position in a partition.
// DestinationIndex is a pointer so a missing index is distinguishable from zero.
type MoveTaskInput struct {
	TaskID              uuid.UUID
	SourceSprintID      *uuid.UUID
	DestinationSprintID *uuid.UUID
	DestinationIndex    *int
	ActorID             *uuid.UUID
}

type TaskFilter struct {
	ProjectID  *uuid.UUID
	SprintID   *uuid.UUID
	AssigneeID *uuid.UUID
	Status     *TaskStatus
}
