package commission

import (
	"context"
	"errors"
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

type Service interface {
	List(ctx context.Context, callerID uuid.UUID, rng *Range) ([]Statement, error)
	Get(ctx context.Context, callerID, userID uuid.UUID, rng *Range) (*Statement, error)
	Upsert(ctx context.Context, callerID, userID uuid.UUID, input UpsertProfileInput) (*Statement, error)
}

type service struct {
	db        *connection.Database
	repo      Repository
	users     user.Repository
	tasks     task.TaskRepository
	publisher events.Publisher
	audit     *audit.Logger
	logger    *zap.Logger
	loc       *time.Location
}

func NewService(
	db *connection.Database,
	repo Repository,
	users user.Repository,
	tasks task.TaskRepository,
	publisher events.Publisher,
	auditLog *audit.Logger,
	logger *zap.Logger,
	loc *time.Location,
) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		db:        db,
		repo:      repo,
		users:     users,
		tasks:     tasks,
		publisher: publisher,
		audit:     auditLog,
		logger:    logger,
		loc:       loc,
	}
}

func (s *service) caller(ctx context.Context, id uuid.UUID) (*user.User, error) {
	caller, err := s.users.FindByID(ctx, id)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, ErrUnknownCaller
	}
	return caller, err
}

func validRange(rng *Range) error {
	if rng == nil {
		return nil
	}
	if rng.From.IsZero() || rng.To.IsZero() {
		return ErrInvalidRange.WithDetails(map[string]string{"range": "from and to are both required"})
	}
	if rng.To.Before(rng.From) {
		return ErrInvalidRange.WithDetails(map[string]string{"to": "must not be before from"})
	}
	return nil
}

// List returns one statement per user in the caller's scope. Users without a
// profile count as a zero profile.
func (s *service) List(ctx context.Context, callerID uuid.UUID, rng *Range) ([]Statement, error) {
	if err := validRange(rng); err != nil {
		return nil, err
	}
	caller, err := s.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}

	users := []user.User{*caller}
	if CanReadAll(caller) {
		if users, err = s.users.FindAll(ctx); err != nil {
			return nil, err
		}
	}

	ids := make([]uuid.UUID, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	profiles, err := s.repo.ListByUserIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byUser := make(map[uuid.UUID]*CompensationProfile, len(profiles))
	for i := range profiles {
		byUser[profiles[i].UserID] = &profiles[i]
	}
	completed, err := s.tasks.ListCompletedByAssignees(ctx, ids)
	if err != nil {
		return nil, err
	}
	tasksByUser := make(map[uuid.UUID][]task.Task)
	for _, t := range completed {
		if t.AssigneeID != nil {
			tasksByUser[*t.AssigneeID] = append(tasksByUser[*t.AssigneeID], t)
		}
	}

	statements := make([]Statement, 0, len(users))
	for i := range users {
		u := &users[i]
		result := Calculate(byUser[u.ID], tasksByUser[u.ID], rng, s.loc)
		result.UserID = u.ID
		statements = append(statements, Statement{User: u, Profile: byUser[u.ID], Result: result})
	}
	metrics.CommissionCalculations.Add(float64(len(statements)))
	return statements, nil
}

func (s *service) Get(ctx context.Context, callerID, userID uuid.UUID, rng *Range) (*Statement, error) {
	if err := validRange(rng); err != nil {
		return nil, err
	}
	caller, err := s.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !CanRead(caller, userID) {
		return nil, ErrForbidden
	}
	target, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.statement(ctx, target, profile, rng)
}

// Upsert creates or replaces the target's profile and records the change in the audit trail.
func (s *service) Upsert(ctx context.Context, callerID, userID uuid.UUID, input UpsertProfileInput) (*Statement, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	caller, err := s.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !CanWrite(caller, userID) {
		return nil, ErrForbidden
	}

	var (
		target   *user.User
		profile  *CompensationProfile
		previous *CompensationProfile
	)
	err = s.db.InTransaction(ctx, func(ctx context.Context) error {
		var err error
		if target, err = s.users.FindByID(ctx, userID); err != nil {
			return err
		}

		existing, err := s.repo.FindByUserID(ctx, userID)
		switch {
		case errors.Is(err, ErrProfileNotFound):
			profile = &CompensationProfile{UserID: userID}
		case err != nil:
			return err
		default:
			snapshot := *existing
			previous = &snapshot
			profile = existing
		}

		profile.HasFixedSalary = input.HasFixedSalary
		profile.FixedSalary = input.FixedSalary
		profile.HourRate = *input.HourRate
		if previous == nil {
			return s.repo.Create(ctx, profile)
		}
		profile.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, profile)
	})
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"user_id":          userID.String(),
		"has_fixed_salary": profile.HasFixedSalary,
		"fixed_salary":     profile.Fixed().String(),
		"hour_rate":        profile.HourRate.String(),
		"created":          previous == nil,
	}
	if previous != nil {
		fields["previous_has_fixed_salary"] = previous.HasFixedSalary
		fields["previous_fixed_salary"] = previous.Fixed().String()
		fields["previous_hour_rate"] = previous.HourRate.String()
	}
	s.audit.Record(audit.ActionCommissionProfileUpserted, callerID.String(), fields)

	if s.publisher != nil {
		subject := userID
		s.publisher.Publish(ctx, &events.Event{
			Type:    events.EventTypeCommissionUpdated,
			UserID:  &subject,
			Details: map[string]interface{}{"updatedBy": callerID},
		})
	}
	s.logger.Info("Compensation profile saved",
		zap.String("user_id", userID.String()),
		zap.String("caller_id", callerID.String()),
	)
	return s.statement(ctx, target, profile, nil)
}

func (s *service) statement(ctx context.Context, target *user.User, profile *CompensationProfile, rng *Range) (*Statement, error) {
	completed, err := s.tasks.ListCompletedByAssignees(ctx, []uuid.UUID{target.ID})
	if err != nil {
		return nil, err
	}
	result := Calculate(profile, completed, rng, s.loc)
	result.UserID = target.ID
	metrics.CommissionCalculations.Inc()
	return &Statement{User: target, Profile: profile, Result: result}, nil
}
