package sprint

import (
	"context"
	"strings"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/project"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/persistence/postgres/connection"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/apperrors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrProjectHasSprintTasks = apperrors.Conflict("project still has tasks in this sprint")

type Service interface {
	CreateSprint(ctx context.Context, input CreateSprintInput) (*Sprint, error)
	GetSprint(ctx context.Context, id uuid.UUID) (*Sprint, error)
	ListSprints(ctx context.Context, filter SprintFilter) ([]Sprint, error)
	UpdateSprintStatus(ctx context.Context, id uuid.UUID, status Status) (*Sprint, error)
	LinkProject(ctx context.Context, sprintID, projectID uuid.UUID) error
	UnlinkProject(ctx context.Context, sprintID, projectID uuid.UUID) error
	LinkedProjects(ctx context.Context, sprintID uuid.UUID) ([]uuid.UUID, error)
}

type service struct {
	db       *connection.Database
	repo     Repository
	projects project.Repository
	logger   *zap.Logger
}

func NewService(db *connection.Database, repo Repository, projects project.Repository, logger *zap.Logger) Service {
	return &service{db: db, repo: repo, projects: projects, logger: logger}
}

func (s *service) CreateSprint(ctx context.Context, input CreateSprintInput) (*Sprint, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := input.validate(); err != nil {
		return nil, err
	}

	sprint := &Sprint{
		Name:      input.Name,
		Goal:      input.Goal,
		StartDate: input.StartDate.UTC(),
		EndDate:   input.EndDate.UTC(),
		Capacity:  input.Capacity,
	}

	err := s.db.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, sprint); err != nil {
			return err
		}
		for _, projectID := range input.ProjectIDs {
			if _, err := s.projects.FindByID(ctx, projectID); err != nil {
				return err
			}
			if err := s.repo.LinkProject(ctx, sprint.ID, projectID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Sprint created",
		zap.String("sprint_id", sprint.ID.String()),
		zap.Int("projects", len(input.ProjectIDs)),
	)
	return sprint, nil
}

func (s *service) GetSprint(ctx context.Context, id uuid.UUID) (*Sprint, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListSprints(ctx context.Context, filter SprintFilter) ([]Sprint, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, ErrInvalidInput.WithDetails(map[string]string{"status": "invalid sprint status"})
	}
	return s.repo.FindAll(ctx, filter)
}

func (s *service) UpdateSprintStatus(ctx context.Context, id uuid.UUID, status Status) (*Sprint, error) {
	if !status.IsValid() {
		return nil, ErrInvalidInput.WithDetails(map[string]string{"status": "invalid sprint status"})
	}

	var sprint *Sprint
	err := s.db.InTransaction(ctx, func(ctx context.Context) error {
		var err error
		sprint, err = s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !isValidTransition(sprint.Status, status) {
			return ErrInvalidTransition.WithDetails(map[string]string{
				"status": string(sprint.Status) + " -> " + string(status),
			})
		}
		if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		sprint.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sprint, nil
}

func (s *service) LinkProject(ctx context.Context, sprintID, projectID uuid.UUID) error {
	return s.db.InTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.FindByID(ctx, sprintID); err != nil {
			return err
		}
		if _, err := s.projects.FindByID(ctx, projectID); err != nil {
			return err
		}
		return s.repo.LinkProject(ctx, sprintID, projectID)
	})
}

// UnlinkProject refuses while the project still has tasks placed in the sprint.
func (s *service) UnlinkProject(ctx context.Context, sprintID, projectID uuid.UUID) error {
	return s.db.InTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.projects.Lock(ctx, projectID); err != nil {
			return err
		}
		count, err := CountProjectTasks(ctx, s.db, sprintID, projectID)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrProjectHasSprintTasks
		}
		return s.repo.UnlinkProject(ctx, sprintID, projectID)
	})
}

func (s *service) LinkedProjects(ctx context.Context, sprintID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.repo.FindByID(ctx, sprintID); err != nil {
		return nil, err
	}
	return s.repo.LinkedProjectIDs(ctx, sprintID)
}
