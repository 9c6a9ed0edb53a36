package timer

import (
	"context"
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/events"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/task"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/user"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/metrics"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/persistence/postgres/connection"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/audit"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service drives the per-task Idle -> Running -> Idle timer.
type Service interface {
	Start(ctx context.Context, taskID, userID uuid.UUID) (*TimeEntry, error)
	Pause(ctx context.Context, taskID, entryID uuid.UUID) (*StopResult, error)
	Stop(ctx context.Context, taskID, entryID uuid.UUID) (*StopResult, error)
	ActiveEntry(ctx context.Context, taskID uuid.UUID) (*TimeEntry, error)
	ListEntries(ctx context.Context, taskID uuid.UUID) ([]TimeEntry, error)
	Summary(ctx context.Context, taskID uuid.UUID) (*Summary, error)
}

type service struct {
	db        *connection.Database
	repo      Repository
	tasks     task.TaskRepository
	users     user.Repository
	publisher events.Publisher
	audit     *audit.Logger
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(
	db *connection.Database,
	repo Repository,
	tasks task.TaskRepository,
	users user.Repository,
	publisher events.Publisher,
	auditLog *audit.Logger,
	logger *zap.Logger,
	opts ...Option,
) Service {
	s := &service{
		db:        db,
		repo:      repo,
		tasks:     tasks,
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

func (s *service) Start(ctx context.Context, taskID, userID uuid.UUID) (*TimeEntry, error) {
	details := map[string]string{}
	if taskID == uuid.Nil {
		details["taskId"] = "required"
	}
	if userID == uuid.Nil {
		details["userId"] = "required"
	}
	if len(details) > 0 {
		return nil, ErrInvalidInput.WithDetails(details)
	}

	var (
		entry *TimeEntry
		t     *task.Task
	)
	err := s.db.InTransaction(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.tasks.FindByID(ctx, taskID)
		if err != nil {
			return err
		}
		if _, err := s.users.FindByID(ctx, userID); err != nil {
			return err
		}

		open, err := s.repo.FindOpenByTask(ctx, taskID)
		if err != nil {
			return err
		}
		if open != nil {
			return ErrTimerAlreadyActive.WithDetails(map[string]string{"entryId": open.ID.String()})
		}

		entry = &TimeEntry{
			TaskID:    taskID,
			UserID:    userID,
			StartTime: s.now(),
		}
		if err := s.repo.Create(ctx, entry); err != nil {
			return err
		}
		return s.tasks.RecordActivity(ctx, task.NewActivity(taskID, &userID, task.ActivityTimerStarted, map[string]interface{}{
			"entryId": entry.ID.String(),
		}))
	})
	if err != nil {
		return nil, err
	}

	metrics.TimerTransitions.WithLabelValues(metrics.TimerActionStart).Inc()
	s.publish(ctx, events.EventTypeTimerStarted, t, &userID, map[string]interface{}{
		"entryId":   entry.ID,
		"startTime": entry.StartTime,
	})
	s.logger.Info("Timer started",
		zap.String("task_id", taskID.String()),
		zap.String("user_id", userID.String()),
		zap.String("entry_id", entry.ID.String()),
	)
	return entry, nil
}

// Pause closes the entry and recomputes the task's actualMinutes in the same transaction.
func (s *service) Pause(ctx context.Context, taskID, entryID uuid.UUID) (*StopResult, error) {
	if entryID == uuid.Nil {
		return nil, ErrInvalidInput.WithDetails(map[string]string{"entryId": "required"})
	}

	var (
		result  StopResult
		minutes int
	)
	err := s.db.InTransaction(ctx, func(ctx context.Context) error {
		entry, err := s.repo.FindByID(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.TaskID != taskID || !entry.IsActive() {
			return ErrEntryNotActive
		}

		end := s.now()
		duration, err := DurationSeconds(entry.StartTime, end)
		if err != nil {
			s.logger.Error("Time entry has negative duration",
				zap.String("entry_id", entry.ID.String()),
				zap.Time("start_time", entry.StartTime),
				zap.Time("end_time", end),
			)
			return err
		}
		if err := s.repo.Close(ctx, entry.ID, end, duration); err != nil {
			return err
		}

		durations, err := s.repo.ClosedDurations(ctx, taskID)
		if err != nil {
			return err
		}
		minutes = ActualMinutes(durations)
		if err := s.tasks.SetActualMinutes(ctx, taskID, minutes); err != nil {
			return err
		}
		if err := s.tasks.RecordActivity(ctx, task.NewActivity(taskID, &entry.UserID, task.ActivityTimerStopped, map[string]interface{}{
			"entryId":       entry.ID.String(),
			"duration":      duration,
			"actualMinutes": minutes,
		})); err != nil {
			return err
		}

		if result.Entry, err = s.repo.FindByID(ctx, entry.ID); err != nil {
			return err
		}
		result.Task, err = s.tasks.FindByID(ctx, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}

	entry := result.Entry
	metrics.TimerTransitions.WithLabelValues(metrics.TimerActionStop).Inc()
	if entry.Duration != nil {
		metrics.TimeEntryDuration.Observe(float64(*entry.Duration))
	}
	s.audit.Record(audit.ActionTimerStopped, entry.UserID.String(), map[string]interface{}{
		"task_id":        taskID.String(),
		"entry_id":       entry.ID.String(),
		"duration":       entry.Duration,
		"actual_minutes": minutes,
	})
	s.publish(ctx, events.EventTypeTimerStopped, result.Task, &entry.UserID, map[string]interface{}{
		"entryId":       entry.ID,
		"duration":      entry.Duration,
		"actualMinutes": minutes,
	})
	return &result, nil
}

func (s *service) Stop(ctx context.Context, taskID, entryID uuid.UUID) (*StopResult, error) {
	return s.Pause(ctx, taskID, entryID)
}

func (s *service) ActiveEntry(ctx context.Context, taskID uuid.UUID) (*TimeEntry, error) {
	if _, err := s.tasks.FindByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.repo.FindOpenByTask(ctx, taskID)
}

func (s *service) ListEntries(ctx context.Context, taskID uuid.UUID) ([]TimeEntry, error) {
	if _, err := s.tasks.FindByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.repo.ListByTask(ctx, taskID)
}

func (s *service) Summary(ctx context.Context, taskID uuid.UUID) (*Summary, error) {
	entries, err := s.ListEntries(ctx, taskID)
	if err != nil {
		return nil, err
	}
	summary := Summarize(entries)
	summary.TaskID = taskID
	return &summary, nil
}

func (s *service) publish(ctx context.Context, eventType string, t *task.Task, userID *uuid.UUID, details map[string]interface{}) {
	if s.publisher == nil || t == nil {
		return
	}
	projectID := t.ProjectID
	taskID := t.ID
	s.publisher.Publish(ctx, &events.Event{
		Type:      eventType,
		ProjectID: &projectID,
		TaskID:    &taskID,
		UserID:    userID,
		Details:   details,
	})
}
