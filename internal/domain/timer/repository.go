package timer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, entry *TimeEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*TimeEntry, error)
	FindOpenByTask(ctx context.Context, taskID uuid.UUID) (*TimeEntry, error)
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]TimeEntry, error)
	Close(ctx context.Context, id uuid.UUID, end time.Time, duration int64) error
	ClosedDurations(ctx context.Context, taskID uuid.UUID) ([]int64, error)
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

// Create maps a violation of the open-entry unique index to ErrTimerAlreadyActive.
func (r *repository) Create(ctx context.Context, entry *TimeEntry) error {
	if err := r.db.Conn(ctx).Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrTimerAlreadyActive
		}
		return fmt.Errorf("create time entry: %w", err)
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*TimeEntry, error) {
	var entry TimeEntry
	if err := r.db.Conn(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotActive
		}
		return nil, fmt.Errorf("find time entry: %w", err)
	}
	return &entry, nil
}

// FindOpenByTask returns nil, nil when the task has no running entry.
func (r *repository) FindOpenByTask(ctx context.Context, taskID uuid.UUID) (*TimeEntry, error) {
	var entries []TimeEntry
	err := r.db.Conn(ctx).
		Where("task_id = ? AND end_time IS NULL", taskID).
		Order("start_time DESC").
		Limit(1).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("find open time entry: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (r *repository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]TimeEntry, error) {
	var entries []TimeEntry
	err := r.db.Conn(ctx).
		Where("task_id = ?", taskID).
		Order("start_time DESC").
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	return entries, nil
}

// Close only touches a still-open row, so a concurrent second close affects nothing.
func (r *repository) Close(ctx context.Context, id uuid.UUID, end time.Time, duration int64) error {
	result := r.db.Conn(ctx).Model(&TimeEntry{}).
		Where("id = ? AND end_time IS NULL", id).
		Updates(map[string]interface{}{
			"end_time":   end,
			"duration":   duration,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("close time entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotActive
	}
	return nil
}

func (r *repository) ClosedDurations(ctx context.Context, taskID uuid.UUID) ([]int64, error) {
	var durations []int64
	err := r.db.Conn(ctx).Model(&TimeEntry{}).
		Where("task_id = ? AND end_time IS NOT NULL AND duration IS NOT NULL", taskID).
		Pluck("duration", &durations).Error
	if err != nil {
		return nil, fmt.Errorf("list closed durations: %w", err)
	}
	return durations, nil
}
