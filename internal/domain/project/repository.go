package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for project persistence operations
type Repository interface {
	Create(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindAll(ctx context.Context) ([]Project, error)
	// Lock takes a row lock on the project for the rest of the surrounding transaction.
	Lock(ctx context.Context, id uuid.UUID) (*Project, error)

	CreateMilestone(ctx context.Context, milestone *Milestone) error
	FindMilestone(ctx context.Context, id uuid.UUID) (*Milestone, error)
	ListMilestones(ctx context.Context, projectID uuid.UUID) ([]Milestone, error)
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, project *Project) error {
	if err := r.db.Conn(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	return r.find(r.db.Conn(ctx), id)
}

func (r *repository) Lock(ctx context.Context, id uuid.UUID) (*Project, error) {
	return r.find(connection.ForUpdate(r.db.Conn(ctx)), id)
}

func (r *repository) find(q *gorm.DB, id uuid.UUID) (*Project, error) {
	var project Project
	result := q.Where("id = ?", id).First(&project)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("find project: %w", result.Error)
	}
	return &project, nil
}

func (r *repository) FindAll(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := r.db.Conn(ctx).Order("created_at ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (r *repository) CreateMilestone(ctx context.Context, milestone *Milestone) error {
	if err := r.db.Conn(ctx).Create(milestone).Error; err != nil {
		return fmt.Errorf("create milestone: %w", err)
	}
	return nil
}

func (r *repository) FindMilestone(ctx context.Context, id uuid.UUID) (*Milestone, error) {
	var milestone Milestone
	result := r.db.Conn(ctx).Where("id = ?", id).First(&milestone)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMilestoneNotFound
		}
		return nil, fmt.Errorf("find milestone: %w", result.Error)
	}
	return &milestone, nil
}

func (r *repository) ListMilestones(ctx context.Context, projectID uuid.UUID) ([]Milestone, error) {
	var milestones []Milestone
	err := r.db.Conn(ctx).
		Where("project_id = ?", projectID).
		Order("due_date ASC").
		Order("created_at ASC").
		Find(&milestones).Error
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	return milestones, nil
}
