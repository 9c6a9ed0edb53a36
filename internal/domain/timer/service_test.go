package timer

import (
	"context"
	"testing"
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/events"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/project"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/sprint"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/task"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/user"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/persistence/postgres/connection"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/testutil"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/apperrors"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/audit"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	db    *connection.Database
	svc   Service
	repo  Repository
	tasks task.TaskRepository
	bus   *events.Bus
	now   time.Time
	task  *task.Task
	user  *user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t,
		&user.User{}, &project.Project{}, &project.Milestone{},
		&sprint.Sprint{}, &sprint.SprintProject{},
		&task.Task{}, &task.TaskActivity{}, &TimeEntry{},
	)
	ctx := context.Background()
	f := &fixture{
		db:    db,
		repo:  NewRepository(db),
		tasks: task.NewRepository(db),
		bus:   events.NewBus(16, zap.NewNop()),
		now:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	users := user.NewRepository(db)
	f.svc = NewService(db, f.repo, f.tasks, users, f.bus, audit.Discard(), zap.NewNop(),
		WithClock(func() time.Time { return f.now }))

	p := &project.Project{Name: "Site"}
	require.NoError(t, project.NewRepository(db).Create(ctx, p))
	f.task = &task.Task{Title: "X", ProjectID: p.ID}
	require.NoError(t, f.tasks.Create(ctx, f.task))
	f.user = &user.User{Email: "u@example.com", Name: "U"}
	require.NoError(t, users.Create(ctx, f.user))
	return f
}

func (f *fixture) newUser(t *testing.T, email string) *user.User {
	t.Helper()
	u := &user.User{Email: email, Name: email}
	require.NoError(t, user.NewRepository(f.db).Create(context.Background(), u))
	return u
}

func TestStart_SecondStartConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.svc.Start(ctx, f.task.ID, f.user.ID)
	require.NoError(t, err)
	assert.True(t, entry.IsActive())
	assert.True(t, f.now.Equal(entry.StartTime))

	_, err = f.svc.Start(ctx, f.task.ID, f.user.ID)
	assert.ErrorIs(t, err, ErrTimerAlreadyActive)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindConflict, appErr.Kind)
	assert.Equal(t, 400, appErr.HTTPStatus())

	other := f.newUser(t, "other@example.com")
	_, err = f.svc.Start(ctx, f.task.ID, other.ID)
	assert.ErrorIs(t, err, ErrTimerAlreadyActive)

	entries, err := f.svc.ListEntries(ctx, f.task.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	got, err := f.tasks.FindByID(ctx, f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.TaskStatusTodo, got.Status)
}

func TestStart_UniqueIndexRejectsSecondOpenEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repo.Create(ctx, &TimeEntry{TaskID: f.task.ID, UserID: f.user.ID, StartTime: f.now}))
	err := f.repo.Create(ctx, &TimeEntry{TaskID: f.task.ID, UserID: f.user.ID, StartTime: f.now})
	assert.ErrorIs(t, err, ErrTimerAlreadyActive)
}

func TestStart_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, f.task.ID, uuid.Nil)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Details, "userId")

	_, err = f.svc.Start(ctx, uuid.New(), f.user.ID)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)

	_, err = f.svc.Start(ctx, f.task.ID, uuid.New())
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestPause_ComputesDurationAndActualMinutes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ch, cancel := f.bus.Subscribe(events.TopicAll)
	defer cancel()

	entry, err := f.svc.Start(ctx, f.task.ID, f.user.ID)
	require.NoError(t, err)

	f.now = f.now.Add(30 * time.Minute)
	result, err := f.svc.Pause(ctx, f.task.ID, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, result.Entry.Duration)
	assert.Equal(t, int64(1800), *result.Entry.Duration)
	require.NotNil(t, result.Entry.EndTime)
	require.NotNil(t, result.Task.ActualMinutes)
	assert.Equal(t, 30, *result.Task.ActualMinutes)

	active, err := f.svc.ActiveEntry(ctx, f.task.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	var types []string
	for len(types) < 2 {
		select {
		case e := <-ch:
			types = append(types, e.Type)
		case <-time.After(time.Second):
			t.Fatalf("expected timer events, got %v", types)
		}
	}
	assert.Equal(t, []string{events.EventTypeTimerStarted, events.EventTypeTimerStopped}, types)
}

func TestPause_AccumulatesAcrossEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var last *StopResult
	for _, d := range []time.Duration{50 * time.Second, 50 * time.Second, 25 * time.Second} {
		entry, err := f.svc.Start(ctx, f.task.ID, f.user.ID)
		require.NoError(t, err)
		f.now = f.now.Add(d)
		last, err = f.svc.Stop(ctx, f.task.ID, entry.ID)
		require.NoError(t, err)
		f.now = f.now.Add(time.Hour)
	}
	assert.Equal(t, 2, *last.Task.ActualMinutes)

	summary, err := f.svc.Summary(ctx, f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(125), summary.TotalSeconds)
	assert.Equal(t, 3, summary.ClosedEntries)
	assert.Nil(t, summary.ActiveEntry)

	entries, err := f.svc.ListEntries(ctx, f.task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].StartTime.After(entries[1].StartTime))
}

func TestPause_RejectsClosedOrForeignEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.svc.Start(ctx, f.task.ID, f.user.ID)
	require.NoError(t, err)

	_, err = f.svc.Pause(ctx, uuid.New(), entry.ID)
	assert.ErrorIs(t, err, ErrEntryNotActive)

	_, err = f.svc.Pause(ctx, f.task.ID, uuid.New())
	assert.ErrorIs(t, err, ErrEntryNotActive)

	_, err = f.svc.Pause(ctx, f.task.ID, uuid.Nil)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	f.now = f.now.Add(time.Minute)
	_, err = f.svc.Pause(ctx, f.task.ID, entry.ID)
	require.NoError(t, err)

	_, err = f.svc.Pause(ctx, f.task.ID, entry.ID)
	assert.ErrorIs(t, err, ErrEntryNotActive)
	assert.Equal(t, apperrors.KindInvalidState, apperrors.KindOf(err))
}

func TestPause_NegativeDurationIsInternal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.svc.Start(ctx, f.task.ID, f.user.ID)
	require.NoError(t, err)

	f.now = f.now.Add(-time.Minute)
	_, err = f.svc.Pause(ctx, f.task.ID, entry.ID)
	assert.ErrorIs(t, err, ErrNegativeDuration)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))

	active, err := f.svc.ActiveEntry(ctx, f.task.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, entry.ID, active.ID)
}
