package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaskRepository defines the interface for task persistence operations
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	FindAll(ctx context.Context, filter TaskFilter) ([]Task, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ListPartition returns the partition ordered by order, then created_at, then id.
	ListPartition(ctx context.Context, key PartitionKey) ([]Task, error)
	ListBacklogs(ctx context.Context, projectIDs []uuid.UUID) ([]Task, error)
	NextOrder(ctx context.Context, key PartitionKey) (int, error)
	UpdatePlacement(ctx context.Context, id uuid.UUID, sprintID *uuid.UUID, order int) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status TaskStatus, completedAt *time.Time) error
	SetActualMinutes(ctx context.Context, id uuid.UUID, minutes int) error
	ListCompletedByAssignees(ctx context.Context, assigneeIDs []uuid.UUID) ([]Task, error)

	RecordActivity(ctx context.Context, activity *TaskActivity) error
	ListActivity(ctx context.Context, taskID uuid.UUID) ([]TaskActivity, error)
}

type taskRepository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) TaskRepository {
	return &taskRepository{db: db}
}

func partitionScope(key PartitionKey) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		q = q.Where("project_id = ?", key.ProjectID)
		if key.SprintID == nil {
			return q.Where("sprint_id IS NULL")
		}
		return q.Where("sprint_id = ?", *key.SprintID)
	}
}

func boardOrder(q *gorm.DB) *gorm.DB {
	return q.Order("sort_order ASC").Order("created_at ASC").Order("id ASC")
}

func (r *taskRepository) Create(ctx context.Context, task *Task) error {
	if err := r.db.Conn(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	var task Task
	result := r.db.Conn(ctx).Where("id = ?", id).First(&task)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", result.Error)
	}
	return &task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter TaskFilter) ([]Task, error) {
	var tasks []Task
	query := r.db.Conn(ctx).Model(&Task{})

	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.SprintID != nil {
		query = query.Where("sprint_id = ?", *filter.SprintID)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Order("project_id ASC").Scopes(boardOrder).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.Conn(ctx).Where("id = ?", id).Delete(&Task{})
	if result.Error != nil {
		return fmt.Errorf("delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) ListPartition(ctx context.Context, key PartitionKey) ([]Task, error) {
	var tasks []Task
	err := r.db.Conn(ctx).Model(&Task{}).
		Scopes(partitionScope(key), boardOrder).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list partition %s: %w", key, err)
	}
	return tasks, nil
}

func (r *taskRepository) ListBacklogs(ctx context.Context, projectIDs []uuid.UUID) ([]Task, error) {
	if len(projectIDs) == 0 {
		return []Task{}, nil
	}
	var tasks []Task
	err := r.db.Conn(ctx).Model(&Task{}).
		Where("project_id IN ? AND sprint_id IS NULL", projectIDs).
		Order("project_id ASC").
		Scopes(boardOrder).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list backlogs: %w", err)
	}
	return tasks, nil
}

func (r *taskRepository) NextOrder(ctx context.Context, key PartitionKey) (int, error) {
	var next int
	err := r.db.Conn(ctx).Model(&Task{}).
		Scopes(partitionScope(key)).
		Select("COALESCE(MAX(sort_order), -1) + 1").
		Scan(&next).Error
	if err != nil {
		return 0, fmt.Errorf("next order for %s: %w", key, err)
	}
	return next, nil
}

func (r *taskRepository) UpdatePlacement(ctx context.Context, id uuid.UUID, sprintID *uuid.UUID, order int) error {
	result := r.db.Conn(ctx).Model(&Task{}).Where("id = ?", id).Updates(map[string]interface{}{
		"sprint_id":  sprintID,
		"sort_order": order,
		"updated_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return fmt.Errorf("update task placement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status TaskStatus, completedAt *time.Time) error {
	result := r.db.Conn(ctx).Model(&Task{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       status,
		"completed_at": completedAt,
		"updated_at":   time.Now().UTC(),
	})
	if result.Error != nil {
		return fmt.Errorf("update task status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) SetActualMinutes(ctx context.Context, id uuid.UUID, minutes int) error {
	result := r.db.Conn(ctx).Model(&Task{}).Where("id = ?", id).Updates(map[string]interface{}{
		"actual_minutes": minutes,
		"updated_at":     time.Now().UTC(),
	})
	if result.Error != nil {
		return fmt.Errorf("set actual minutes: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) ListCompletedByAssignees(ctx context.Context, assigneeIDs []uuid.UUID) ([]Task, error) {
	if len(assigneeIDs) == 0 {
		return []Task{}, nil
	}
	var tasks []Task
	err := r.db.Conn(ctx).Model(&Task{}).
		Where("assignee_id IN ? AND status = ?", assigneeIDs, TaskStatusCompleted).
		Order("completed_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list completed tasks: %w", err)
	}
	return tasks, nil
}

func (r *taskRepository) RecordActivity(ctx context.Context, activity *TaskActivity) error {
	if err := r.db.Conn(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("record task activity: %w", err)
	}
	return nil
}

func (r *taskRepository) ListActivity(ctx context.Context, taskID uuid.UUID) ([]TaskActivity, error) {
	var activity []TaskActivity
	err := r.db.Conn(ctx).
		Where("task_id = ?", taskID).
		Order("timestamp DESC").
		Find(&activity).Error
	if err != nil {
		return nil, fmt.Errorf("list task activity: %w", err)
	}
	return activity, nil
}

// NewActivity builds an activity row with JSON metadata.
func NewActivity(taskID uuid.UUID, userID *uuid.UUID, action string, metadata map[string]interface{}) *TaskActivity {
	activity := &TaskActivity{
		TaskID: taskID,
		UserID: userID,
		Action: action,
	}
	if len(metadata) > 0 {
		if raw, err := json.Marshal(metadata); err == nil {
			activity.Metadata = datatypes.JSON(raw)
		}
	}
	return activity
}
