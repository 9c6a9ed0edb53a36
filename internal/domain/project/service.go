package project

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Service interface
type Service interface {
	CreateProject(ctx context.Context, input CreateProjectInput) (*Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	CreateMilestone(ctx context.Context, input CreateMilestoneInput) (*Milestone, error)
	ListMilestones(ctx context.Context, projectID uuid.UUID) ([]Milestone, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateProject(ctx context.Context, input CreateProjectInput) (*Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidInput.WithDetails(map[string]string{"name": "required"})
	}
	if input.Status != "" && !input.Status.IsValid() {
		return nil, ErrInvalidInput.WithDetails(map[string]string{"status": "invalid project status"})
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, ErrInvalidInput.WithDetails(map[string]string{"endDate": "must not be before startDate"})
	}

	project := &Project{
		Name:        name,
		Description: input.Description,
		Status:      input.Status,
		ClientID:    input.ClientID,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *service) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListProjects(ctx context.Context) ([]Project, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) CreateMilestone(ctx context.Context, input CreateMilestoneInput) (*Milestone, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidInput.WithDetails(map[string]string{"name": "required"})
	}
	if _, err := s.repo.FindByID(ctx, input.ProjectID); err != nil {
		return nil, err
	}

	milestone := &Milestone{
		ProjectID:   input.ProjectID,
		Name:        name,
		Description: input.Description,
		DueDate:     input.DueDate,
	}
	if err := s.repo.CreateMilestone(ctx, milestone); err != nil {
		return nil, err
	}
	return milestone, nil
}

func (s *service) ListMilestones(ctx context.Context, projectID uuid.UUID) ([]Milestone, error) {
	if _, err := s.repo.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListMilestones(ctx, projectID)
}
