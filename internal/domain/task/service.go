package task

import (
	"context"
	"strings"
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/events"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/project"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/sprint"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/user"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/metrics"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/persistence/postgres/connection"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/apperrors"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/audit"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrMilestoneMismatch = apperrors.Validation("milestone belongs to another project", nil)

type Service interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
	MoveTask(ctx context.Context, input MoveTaskInput) (*Task, error)
	UpdateTaskStatus(ctx context.Context, id uuid.UUID, status TaskStatus, actorID *uuid.UUID) (*Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error

	ListBacklog(ctx context.Context, projectID uuid.UUID) ([]Task, error)
	ListSprintTasks(ctx context.Context, sprintID uuid.UUID, projectID *uuid.UUID) ([]Task, error)
	SprintBacklog(ctx context.Context, sprintID uuid.UUID) ([]Task, error)
	GetTaskActivity(ctx context.Context, id uuid.UUID) ([]TaskActivity, error)
}

type service struct {
	db        *connection.Database
	repo      TaskRepository
	projects  project.Repository
	sprints   sprint.Repository
	users     user.Repository
	publisher events.Publisher
	audit     *audit.Logger
	logger    *zap.Logger
	now       func() time.Time
}

// Option customises the service.
type Option func(*service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(
	db *connection.Database,
	repo TaskRepository,
	projects project.Repository,
	sprints sprint.Repository,
	users user.Repository,
	publisher events.Publisher,
	auditLog *audit.Logger,
	logger *zap.Logger,
	opts ...Option,
) Service {
	s := &service{
		db:        db,
		repo:      repo,
		projects:  projects,
		sprints:   sprints,
		users:     users,
		publisher: publisher,
		audit:     auditLog,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Priority == "" {
		input.Priority = TaskPriorityMedium
	}

	task := &Task{
		Title:            input.Title,
		Description:      input.Description,
		ProjectID:        input.ProjectID,
		SprintID:         input.SprintID,
		MilestoneID:      input.MilestoneID,
		AssigneeID:       input.AssigneeID,
		CreatorID:        input.CreatorID,
		Status:           TaskStatusTodo,
		Priority:         input.Priority,
		StoryPoints:      input.StoryPoints,
		EstimatedMinutes: input.EstimatedMinutes,
		DueDate:          input.DueDate,
		StartDate:        input.StartDate,
		StartTime:        input.StartTime,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	err := s.db.InTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.projects.Lock(ctx, task.ProjectID); err != nil {
			return err
		}
		if err := s.ensureSprint(ctx, task.SprintID, task.ProjectID); err != nil {
			return err
		}
		if task.MilestoneID != nil {
			milestone, err := s.projects.FindMilestone(ctx, *task.MilestoneID)
			if err != nil {
				return err
			}
			if milestone.ProjectID != task.ProjectID {
				return ErrMilestoneMismatch.WithDetails(map[string]string{"milestoneId": "not part of project"})
			}
		}
		if task.AssigneeID != nil {
			if _, err := s.users.FindByID(ctx, *task.AssigneeID); err != nil {
				return err
			}
		}

		next, err := s.repo.NextOrder(ctx, task.Partition())
		if err != nil {
			return err
		}
		task.Order = next

		if err := s.repo.Create(ctx, task); err != nil {
			return err
		}
		return s.repo.RecordActivity(ctx, NewActivity(task.ID, task.CreatorID, ActivityCreated, map[string]interface{}{
			"order":     task.Order,
			"partition": task.Partition().String(),
		}))
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventTypeTaskCreated, task, task.CreatorID, map[string]interface{}{
		"order":    task.Order,
		"sprintId": task.SprintID,
	})
	return task, nil
}

func (s *service) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, ErrInvalidInput.WithDetails(map[string]string{"status": "must be one of TODO IN_PROGRESS IN_REVIEW COMPLETED"})
	}
	return s.repo.FindAll(ctx, filter)
}

// MoveTask relocates a task to destinationIndex of the destination partition and
// re-sequences the source and destination partitions in one transaction. The task's
// stored sprint is the source partition; a differing sourceSprintId is ignored.
func (s *service) MoveTask(ctx context.Context, input MoveTaskInput) (*Task, error) {
	details := map[string]string{}
	if input.TaskID == uuid.Nil {
		details["taskId"] = "required"
	}
	if input.DestinationIndex == nil {
		details["destinationIndex"] = "required"
	}
	if len(details) > 0 {
		return nil, ErrInvalidInput.WithDetails(details)
	}

	var (
		moved      *Task
		source     PartitionKey
		dest       PartitionKey
		finalIndex int
		changed    bool
		destSize   int
	)

	err := s.db.InTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.FindByID(ctx, input.TaskID)
		if err != nil {
			return err
		}
		if _, err := s.projects.Lock(ctx, current.ProjectID); err != nil {
			return err
		}
		// Re-read under the lock; another move may have committed meanwhile.
		current, err = s.repo.FindByID(ctx, input.TaskID)
		if err != nil {
			return err
		}

		source = current.Partition()
		if input.SourceSprintID != nil && !sameSprint(input.SourceSprintID, current.SprintID) {
			s.logger.Warn("Move source does not match stored sprint",
				zap.String("task_id", current.ID.String()),
				zap.String("stored_partition", source.String()),
			)
		}

		dest = PartitionKey{ProjectID: current.ProjectID, SprintID: input.DestinationSprintID}
		if err := s.ensureSprint(ctx, dest.SprintID, dest.ProjectID); err != nil {
			return err
		}

		if source.Equal(dest) {
			tasks, err := s.repo.ListPartition(ctx, source)
			if err != nil {
				return err
			}
			assignments := Reindex(idsOf(tasks), current.ID, current.ID, *input.DestinationIndex)
			n, err := s.apply(ctx, tasks, assignments, current.ID, dest.SprintID)
			if err != nil {
				return err
			}
			changed = n > 0
			destSize = len(assignments)
			finalIndex = assignments[current.ID]
		} else {
			srcTasks, err := s.repo.ListPartition(ctx, source)
			if err != nil {
				return err
			}
			if _, err := s.apply(ctx, srcTasks, Reindex(idsOf(srcTasks), current.ID, uuid.Nil, 0), uuid.Nil, nil); err != nil {
				return err
			}

			dstTasks, err := s.repo.ListPartition(ctx, dest)
			if err != nil {
				return err
			}
			assignments := Reindex(idsOf(dstTasks), uuid.Nil, current.ID, *input.DestinationIndex)
			dstTasks = append(dstTasks, *current)
			if _, err := s.apply(ctx, dstTasks, assignments, current.ID, dest.SprintID); err != nil {
				return err
			}
			changed = true
			destSize = len(assignments)
			finalIndex = assignments[current.ID]
		}

		if changed {
			if err := s.repo.RecordActivity(ctx, NewActivity(current.ID, input.ActorID, ActivityMoved, map[string]interface{}{
				"from":  source.String(),
				"to":    dest.String(),
				"order": finalIndex,
			})); err != nil {
				return err
			}
		}

		moved, err = s.repo.FindByID(ctx, input.TaskID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !changed {
		return moved, nil
	}

	kind := metrics.MoveKindReorder
	if !source.Equal(dest) {
		kind = metrics.MoveKindRelocate
	}
	metrics.TasksMoved.WithLabelValues(kind).Inc()
	metrics.PartitionSize.Observe(float64(destSize))

	s.audit.Record(audit.ActionTaskMoved, actorString(input.ActorID), map[string]interface{}{
		"task_id":   moved.ID.String(),
		"from":      source.String(),
		"to":        dest.String(),
		"order":     finalIndex,
		"requested": *input.DestinationIndex,
	})
	s.publish(ctx, events.EventTypeTaskMoved, moved, input.ActorID, map[string]interface{}{
		"fromSprintId": source.SprintID,
		"toSprintId":   dest.SprintID,
		"order":        finalIndex,
	})
	s.logger.Info("Task moved",
		zap.String("task_id", moved.ID.String()),
		zap.String("from", source.String()),
		zap.String("to", dest.String()),
		zap.Int("order", finalIndex),
	)
	return moved, nil
}

// apply writes the rows whose order or sprint differs from the assignments.
// movingID gets sprintID; every other row keeps its own sprint.
func (s *service) apply(ctx context.Context, tasks []Task, assignments map[uuid.UUID]int, movingID uuid.UUID, sprintID *uuid.UUID) (int, error) {
	writes := 0
	for i := range tasks {
		t := &tasks[i]
		order, ok := assignments[t.ID]
		if !ok {
			continue
		}
		target := t.SprintID
		if t.ID == movingID {
			target = sprintID
		}
		if order == t.Order && sameSprint(target, t.SprintID) {
			continue
		}
		if err := s.repo.UpdatePlacement(ctx, t.ID, target, order); err != nil {
			return writes, err
		}
		writes++
	}
	return writes, nil
}

// ensureSprint checks the sprint exists and links it to the project when needed.
func (s *service) ensureSprint(ctx context.Context, sprintID *uuid.UUID, projectID uuid.UUID) error {
	if sprintID == nil {
		return nil
	}
	if _, err := s.sprints.FindByID(ctx, *sprintID); err != nil {
		return err
	}
	linked, err := s.sprints.IsLinked(ctx, *sprintID, projectID)
	if err != nil {
		return err
	}
	if linked {
		return nil
	}
	return s.sprints.LinkProject(ctx, *sprintID, projectID)
}

var validTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusTodo:       {TaskStatusInProgress, TaskStatusInReview, TaskStatusCompleted},
	TaskStatusInProgress: {TaskStatusTodo, TaskStatusInReview, TaskStatusCompleted},
	TaskStatusInReview:   {TaskStatusInProgress, TaskStatusCompleted},
	TaskStatusCompleted:  {TaskStatusTodo, TaskStatusInProgress},
}

func isValidStatusTransition(current, next TaskStatus) bool {
	for _, allowed := range validTransitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// UpdateTaskStatus changes status without touching order. Entering COMPLETED
// stamps completedAt and leaving it clears completedAt.
func (s *service) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status TaskStatus, actorID *uuid.UUID) (*Task, error) {
	if !status.IsValid() {
		return nil, ErrInvalidInput.WithDetails(map[string]string{"status": "must be one of TODO IN_PROGRESS IN_REVIEW COMPLETED"})
	}

	var (
		updated *Task
		from    TaskStatus
	)
	err := s.db.InTransaction(ctx, func(ctx context.Context) error {
		task, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		from = task.Status
		if task.Status == status {
			updated = task
			return nil
		}
		if !isValidStatusTransition(task.Status, status) {
			return ErrInvalidTransition.WithDetails(map[string]string{
				"status": string(task.Status) + " -> " + string(status),
			})
		}

		var completedAt *time.Time
		if status == TaskStatusCompleted {
			now := s.now()
			completedAt = &now
		}
		if err := s.repo.UpdateStatus(ctx, id, status, completedAt); err != nil {
			return err
		}
		if err := s.repo.RecordActivity(ctx, NewActivity(id, actorID, ActivityStatusChanged, map[string]interface{}{
			"from": task.Status,
			"to":   status,
		})); err != nil {
			return err
		}

		updated, err = s.repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if from != status {
		s.publish(ctx, events.EventTypeTaskStatusChanged, updated, actorID, map[string]interface{}{
			"from": from,
			"to":   status,
		})
	}
	return updated, nil
}

// DeleteTask removes the task and closes the gap it leaves in its partition.
func (s *service) DeleteTask(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error {
	var deleted *Task
	err := s.db.InTransaction(ctx, func(ctx context.Context) error {
		task, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.projects.Lock(ctx, task.ProjectID); err != nil {
			return err
		}
		task, err = s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}

		remaining, err := s.repo.ListPartition(ctx, task.Partition())
		if err != nil {
			return err
		}
		if _, err := s.apply(ctx, remaining, Reindex(idsOf(remaining), uuid.Nil, uuid.Nil, 0), uuid.Nil, nil); err != nil {
			return err
		}
		deleted = task
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(audit.ActionTaskDeleted, actorString(actorID), map[string]interface{}{
		"task_id":   deleted.ID.String(),
		"partition": deleted.Partition().String(),
		"order":     deleted.Order,
	})
	s.publish(ctx, events.EventTypeTaskDeleted, deleted, actorID, nil)
	return nil
}

func (s *service) ListBacklog(ctx context.Context, projectID uuid.UUID) ([]Task, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListPartition(ctx, PartitionKey{ProjectID: projectID})
}

func (s *service) ListSprintTasks(ctx context.Context, sprintID uuid.UUID, projectID *uuid.UUID) ([]Task, error) {
	if _, err := s.sprints.FindByID(ctx, sprintID); err != nil {
		return nil, err
	}
	if projectID != nil {
		return s.repo.ListPartition(ctx, PartitionKey{ProjectID: *projectID, SprintID: &sprintID})
	}
	return s.repo.FindAll(ctx, TaskFilter{SprintID: &sprintID})
}

// SprintBacklog aggregates the backlogs of every project linked to the sprint.
func (s *service) SprintBacklog(ctx context.Context, sprintID uuid.UUID) ([]Task, error) {
	if _, err := s.sprints.FindByID(ctx, sprintID); err != nil {
		return nil, err
	}
	projectIDs, err := s.sprints.LinkedProjectIDs(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBacklogs(ctx, projectIDs)
}

func (s *service) GetTaskActivity(ctx context.Context, id uuid.UUID) ([]TaskActivity, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListActivity(ctx, id)
}

func (s *service) publish(ctx context.Context, eventType string, task *Task, actorID *uuid.UUID, details map[string]interface{}) {
	if s.publisher == nil || task == nil {
		return
	}
	projectID := task.ProjectID
	taskID := task.ID
	s.publisher.Publish(ctx, &events.Event{
		Type:      eventType,
		ProjectID: &projectID,
		TaskID:    &taskID,
		UserID:    actorID,
		Details:   details,
	})
}

func sameSprint(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func actorString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
