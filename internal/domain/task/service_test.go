package task

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/events"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/project"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/sprint"
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
	db       *connection.Database
	svc      Service
	repo     TaskRepository
	projects project.Repository
	sprints  sprint.Repository
	users    user.Repository
	bus      *events.Bus
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t,
		&user.User{}, &project.Project{}, &project.Milestone{},
		&sprint.Sprint{}, &sprint.SprintProject{},
		&Task{}, &TaskActivity{},
	)
	f := &fixture{
		db:       db,
		repo:     NewRepository(db),
		projects: project.NewRepository(db),
		sprints:  sprint.NewRepository(db),
		users:    user.NewRepository(db),
		bus:      events.NewBus(64, zap.NewNop()),
		now:      time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(db, f.repo, f.projects, f.sprints, f.users, f.bus, audit.Discard(), zap.NewNop(),
		WithClock(func() time.Time { return f.now }))
	return f
}

func (f *fixture) project(t *testing.T, name string) *project.Project {
	t.Helper()
	p := &project.Project{Name: name}
	require.NoError(t, f.projects.Create(context.Background(), p))
	return p
}

func (f *fixture) sprint(t *testing.T, name string) *sprint.Sprint {
	t.Helper()
	s := &sprint.Sprint{
		Name:      name,
		StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.sprints.Create(context.Background(), s))
	return s
}

func (f *fixture) task(t *testing.T, projectID uuid.UUID, sprintID *uuid.UUID, title string) *Task {
	t.Helper()
	task, err := f.svc.CreateTask(context.Background(), CreateTaskInput{
		Title:     title,
		ProjectID: projectID,
		SprintID:  sprintID,
	})
	require.NoError(t, err)
	return task
}

// orders returns id -> order for the partition, read back from the database.
func (f *fixture) orders(t *testing.T, key PartitionKey) map[uuid.UUID]int {
	t.Helper()
	tasks, err := f.repo.ListPartition(context.Background(), key)
	require.NoError(t, err)
	out := make(map[uuid.UUID]int, len(tasks))
	for _, task := range tasks {
		out[task.ID] = task.Order
	}
	return out
}

func (f *fixture) assertContiguous(t *testing.T, key PartitionKey) {
	t.Helper()
	tasks, err := f.repo.ListPartition(context.Background(), key)
	require.NoError(t, err)
	for i, task := range tasks {
		assert.Equal(t, i, task.Order, "partition %s position %d", key, i)
	}
}

func TestCreateTask_AppendsToPartition(t *testing.T) {
	f := newFixture(t)
	p := f.project(t, "Site")

	t1 := f.task(t, p.ID, nil, "one")
	t2 := f.task(t, p.ID, nil, "two")
	t3 := f.task(t, p.ID, nil, "three")

	assert.Equal(t, 0, t1.Order)
	assert.Equal(t, 1, t2.Order)
	assert.Equal(t, 2, t3.Order)
	assert.Equal(t, TaskStatusTodo, t1.Status)
	assert.Equal(t, TaskPriorityMedium, t1.Priority)

	s := f.sprint(t, "Sprint 1")
	inSprint := f.task(t, p.ID, &s.ID, "sprint task")
	assert.Equal(t, 0, inSprint.Order)

	linked, err := f.sprints.IsLinked(context.Background(), s.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, linked)
}

func TestCreateTask_Validation(t *testing.T) {
	f := newFixture(t)
	p := f.project(t, "Site")
	ctx := context.Background()

	_, err := f.svc.CreateTask(ctx, CreateTaskInput{Title: "  ", ProjectID: p.ID})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = f.svc.CreateTask(ctx, CreateTaskInput{Title: "x", ProjectID: p.ID, Priority: "SOON"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = f.svc.CreateTask(ctx, CreateTaskInput{Title: "x", ProjectID: uuid.New()})
	assert.ErrorIs(t, err, project.ErrProjectNotFound)

	missing := uuid.New()
	_, err = f.svc.CreateTask(ctx, CreateTaskInput{Title: "x", ProjectID: p.ID, SprintID: &missing})
	assert.ErrorIs(t, err, sprint.ErrSprintNotFound)
}

func TestCreateTask_MilestoneMustBelongToProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "A")
	other := f.project(t, "B")
	m := &project.Milestone{ProjectID: other.ID, Name: "Beta"}
	require.NoError(t, f.projects.CreateMilestone(ctx, m))

	_, err := f.svc.CreateTask(ctx, CreateTaskInput{Title: "x", ProjectID: p.ID, MilestoneID: &m.ID})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestMoveTask_ReorderWithinBacklog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Site")
	t1 := f.task(t, p.ID, nil, "T1")
	t2 := f.task(t, p.ID, nil, "T2")
	t3 := f.task(t, p.ID, nil, "T3")

	ch, cancel := f.bus.Subscribe(events.ProjectTopic(p.ID))
	defer cancel()

	moved, err := f.svc.MoveTask(ctx, MoveTaskInput{TaskID: t3.ID, DestinationIndex: testutil.Ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Order)
	assert.Nil(t, moved.SprintID)

	assert.Equal(t, map[uuid.UUID]int{t3.ID: 0, t1.ID: 1, t2.ID: 2}, f.orders(t, PartitionKey{ProjectID: p.ID}))

	select {
	case event := <-ch:
		assert.Equal(t, events.EventTypeTaskMoved, event.Type)
		assert.Equal(t, t3.ID, *event.TaskID)
	case <-time.After(time.Second):
		t.Fatal("expected a task.moved event")
	}

	activity, err := f.svc.GetTaskActivity(ctx, t3.ID)
	require.NoError(t, err)
	require.NotEmpty(t, activity)
	assert.Equal(t, ActivityMoved, activity[0].Action)
}

func TestMoveTask_BacklogToEmptySprint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Site")
	s := f.sprint(t, "S")
	t1 := f.task(t, p.ID, nil, "T1")

	moved, err := f.svc.MoveTask(ctx, MoveTaskInput{
		TaskID:              t1.ID,
		DestinationSprintID: &s.ID,
		DestinationIndex:    testutil.Ptr(0),
	})
	require.NoError(t, err)
	require.NotNil(t, moved.SprintID)
	assert.Equal(t, s.ID, *moved.SprintID)
	assert.Equal(t, 0, moved.Order)

	assert.Empty(t, f.orders(t, PartitionKey{ProjectID: p.ID}))
	assert.Equal(t, map[uuid.UUID]int{t1.ID: 0}, f.orders(t, PartitionKey{ProjectID: p.ID, SprintID: &s.ID}))

	linked, err := f.sprints.IsLinked(ctx, s.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, linked)
}

func TestMoveTask_RelocationClosesSourceGap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Site")
	s := f.sprint(t, "S")
	b := []*Task{f.task(t, p.ID, nil, "B0"), f.task(t, p.ID, nil, "B1"), f.task(t, p.ID, nil, "B2")}
	sp := []*Task{f.task(t, p.ID, &s.ID, "S0"), f.task(t, p.ID, &s.ID, "S1")}

	_, err := f.svc.MoveTask(ctx, MoveTaskInput{
		TaskID:              b[1].ID,
		SourceSprintID:      nil,
		DestinationSprintID: &s.ID,
		DestinationIndex:    testutil.Ptr(1),
	})
	require.NoError(t, err)

	backlog := PartitionKey{ProjectID: p.ID}
	sprintKey := PartitionKey{ProjectID: p.ID, SprintID: &s.ID}
	assert.Equal(t, map[uuid.UUID]int{b[0].ID: 0, b[2].ID: 1}, f.orders(t, backlog))
	assert.Equal(t, map[uuid.UUID]int{sp[0].ID: 0, b[1].ID: 1, sp[1].ID: 2}, f.orders(t, sprintKey))
}

func TestMoveTask_ClampsIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Site")
	t1 := f.task(t, p.ID, nil, "T1")
	t2 := f.task(t, p.ID, nil, "T2")

	moved, err := f.svc.MoveTask(ctx, MoveTaskInput{TaskID: t1.ID, DestinationIndex: testutil.Ptr(50)})
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Order)

	moved, err = f.svc.MoveTask(ctx, MoveTaskInput{TaskID: t1.ID, DestinationIndex: testutil.Ptr(-3)})
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Order)
	assert.Equal(t, map[uuid.UUID]int{t1.ID: 0, t2.ID: 1}, f.orders(t, PartitionKey{ProjectID: p.ID}))
}

func TestMoveTask_StoredSprintWinsOverSourceHint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Site")
	s := f.sprint(t, "S")
	t1 := f.task(t, p.ID, &s.ID, "T1")
	bogus := uuid.New()

	moved, err := f.svc.MoveTask(ctx, MoveTaskInput{
		TaskID:           t1.ID,
		SourceSprintID:   &bogus,
		DestinationIndex: testutil.Ptr(0),
	})
	require.NoError(t, err)
	assert.Nil(t, moved.SprintID)
	assert.Empty(t, f.orders(t, PartitionKey{ProjectID: p.ID, SprintID: &s.ID}))
}

func TestMoveTask_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Site")
	t1 := f.task(t, p.ID, nil, "T1")

	_, err := f.svc.MoveTask(ctx, MoveTaskInput{TaskID: t1.ID})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Details, "destinationIndex")

	_, err = f.svc.MoveTask(ctx, MoveTaskInput{DestinationIndex: testutil.Ptr(0)})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = f.svc.MoveTask(ctx, MoveTaskInput{TaskID: uuid.New(), DestinationIndex: testutil.Ptr(0)})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	missing := uuid.New()
	_, err = f.svc.MoveTask(ctx, MoveTaskInput{TaskID: t1.ID, DestinationSprintID: &missing, DestinationIndex: testutil.Ptr(0)})
	assert.ErrorIs(t, err, sprint.ErrSprintNotFound)

	// A failed move leaves the task where it was.
	got, err := f.svc.GetTask(ctx, t1.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SprintID)
	assert.Equal(t, 0, got.Order)
}

func TestMoveTask_RandomSequenceStaysContiguous(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Site")
	sprints := []*sprint.Sprint{f.sprint(t, "S1"), f.sprint(t, "S2")}
	destinations := []*uuid.UUID{nil, &sprints[0].ID, &sprints[1].ID}

	var all []uuid.UUID
	for i := 0; i < 8; i++ {
		all = append(all, f.task(t, p.ID, destinations[i%3], "task").ID)
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 40; i++ {
		if i%10 == 9 {
			all = append(all, f.task(t, p.ID, destinations[rng.Intn(3)], "late").ID)
		}
		_, err := f.svc.MoveTask(ctx, MoveTaskInput{
			TaskID:              all[rng.Intn(len(all))],
			DestinationSprintID: destinations[rng.Intn(3)],
			DestinationIndex:    testutil.Ptr(rng.Intn(12) - 2),
		})
		require.NoError(t, err)

		total := 0
		for _, dest := range destinations {
			key := PartitionKey{ProjectID: p.ID, SprintID: dest}
			f.assertContiguous(t, key)
			total += len(f.orders(t, key))
		}
		assert.Equal(t, len(all), total)
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Site")
	t1 := f.task(t, p.ID, nil, "T1")
	f.task(t, p.ID, nil, "T2")

	done, err := f.svc.UpdateTaskStatus(ctx, t1.ID, TaskStatusCompleted, nil)
	require.NoError(t, err)
	assert.Equal(t, TaskStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, f.now.Equal(*done.CompletedAt))
	assert.Equal(t, 0, done.Order)

	reopened, err := f.svc.UpdateTaskStatus(ctx, t1.ID, TaskStatusTodo, nil)
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)

	_, err = f.svc.UpdateTaskStatus(ctx, t1.ID, TaskStatusInReview, nil)
	require.NoError(t, err)
	_, err = f.svc.UpdateTaskStatus(ctx, t1.ID, TaskStatusTodo, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.UpdateTaskStatus(ctx, t1.ID, "DONE", nil)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestDeleteTask_ResequencesPartition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Site")
	t1 := f.task(t, p.ID, nil, "T1")
	t2 := f.task(t, p.ID, nil, "T2")
	t3 := f.task(t, p.ID, nil, "T3")

	require.NoError(t, f.svc.DeleteTask(ctx, t2.ID, nil))
	assert.Equal(t, map[uuid.UUID]int{t1.ID: 0, t3.ID: 1}, f.orders(t, PartitionKey{ProjectID: p.ID}))

	next := f.task(t, p.ID, nil, "T4")
	assert.Equal(t, 2, next.Order)

	assert.ErrorIs(t, f.svc.DeleteTask(ctx, t2.ID, nil), ErrTaskNotFound)
}

func TestBacklogViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.project(t, "A")
	b := f.project(t, "B")
	unlinked := f.project(t, "C")
	s := f.sprint(t, "S")

	a0 := f.task(t, a.ID, nil, "a0")
	a1 := f.task(t, a.ID, nil, "a1")
	b0 := f.task(t, b.ID, nil, "b0")
	f.task(t, unlinked.ID, nil, "c0")
	inSprint := f.task(t, a.ID, &s.ID, "in sprint")
	require.NoError(t, f.sprints.LinkProject(ctx, s.ID, b.ID))

	backlog, err := f.svc.ListBacklog(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, backlog, 2)
	assert.Equal(t, a0.ID, backlog[0].ID)
	assert.Equal(t, a1.ID, backlog[1].ID)

	_, err = f.svc.ListBacklog(ctx, uuid.New())
	assert.ErrorIs(t, err, project.ErrProjectNotFound)

	aggregated, err := f.svc.SprintBacklog(ctx, s.ID)
	require.NoError(t, err)
	got := map[uuid.UUID]bool{}
	for _, task := range aggregated {
		got[task.ID] = true
		assert.Nil(t, task.SprintID)
	}
	assert.Equal(t, map[uuid.UUID]bool{a0.ID: true, a1.ID: true, b0.ID: true}, got)

	sprintTasks, err := f.svc.ListSprintTasks(ctx, s.ID, nil)
	require.NoError(t, err)
	require.Len(t, sprintTasks, 1)
	assert.Equal(t, inSprint.ID, sprintTasks[0].ID)

	_, err = f.svc.SprintBacklog(ctx, uuid.New())
	assert.ErrorIs(t, err, sprint.ErrSprintNotFound)
}
