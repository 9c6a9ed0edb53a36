package sprint

import (
	"context"
	"errors"
	"fmt"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, sprint *Sprint) error
	FindByID(ctx context.Context, id uuid.UUID) (*Sprint, error)
	FindAll(ctx context.Context, filter SprintFilter) ([]Sprint, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	LinkProject(ctx context.Context, sprintID, projectID uuid.UUID) error
	UnlinkProject(ctx context.Context, sprintID, projectID uuid.UUID) error
	IsLinked(ctx context.Context, sprintID, projectID uuid.UUID) (bool, error)
	LinkedProjectIDs(ctx context.Context, sprintID uuid.UUID) ([]uuid.UUID, error)
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, sprint *Sprint) error {
	if err := r.db.Conn(ctx).Create(sprint).Error; err != nil {
		return fmt.Errorf("create sprint: %w", err)
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Sprint, error) {
	var sprint Sprint
	result := r.db.Conn(ctx).Where("id = ?", id).First(&sprint)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSprintNotFound
		}
		return nil, fmt.Errorf("find sprint: %w", result.Error)
	}
	return &sprint, nil
}

func (r *repository) FindAll(ctx context.Context, filter SprintFilter) ([]Sprint, error) {
	var sprints []Sprint
	query := r.db.Conn(ctx).Model(&Sprint{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ProjectID != nil {
		query = query.Where("id IN (?)",
			r.db.Conn(ctx).Model(&SprintProject{}).Select("sprint_id").Where("project_id = ?", *filter.ProjectID))
	}

	if err := query.Order("start_date DESC").Order("created_at DESC").Find(&sprints).Error; err != nil {
		return nil, fmt.Errorf("list sprints: %w", err)
	}
	return sprints, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	result := r.db.Conn(ctx).Model(&Sprint{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("update sprint status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSprintNotFound
	}
	return nil
}

func (r *repository) LinkProject(ctx context.Context, sprintID, projectID uuid.UUID) error {
	link := &SprintProject{SprintID: sprintID, ProjectID: projectID}
	if err := r.db.Conn(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyLinked
		}
		return fmt.Errorf("link project: %w", err)
	}
	return nil
}

func (r *repository) UnlinkProject(ctx context.Context, sprintID, projectID uuid.UUID) error {
	result := r.db.Conn(ctx).
		Where("sprint_id = ? AND project_id = ?", sprintID, projectID).
		Delete(&SprintProject{})
	if result.Error != nil {
		return fmt.Errorf("unlink project: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotLinked
	}
	return nil
}

func (r *repository) IsLinked(ctx context.Context, sprintID, projectID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Conn(ctx).Model(&SprintProject{}).
		Where("sprint_id = ? AND project_id = ?", sprintID, projectID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check sprint link: %w", err)
	}
	return count > 0, nil
}

func (r *repository) LinkedProjectIDs(ctx context.Context, sprintID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Conn(ctx).Model(&SprintProject{}).
		Where("sprint_id = ?", sprintID).
		Order("created_at ASC").
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list sprint projects: %w", err)
	}
	return ids, nil
}

// CountProjectTasks counts tasks of the project currently placed in the sprint.
func CountProjectTasks(ctx context.Context, db *connection.Database, sprintID, projectID uuid.UUID) (int64, error) {
	var count int64
	err := db.Conn(ctx).Table("tasks").
		Where("sprint_id = ? AND project_id = ?", sprintID, projectID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count sprint tasks: %w", err)
	}
	return count, nil
}
