package project

import (
	"context"
	"testing"
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/testutil"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/apperrors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	db := testutil.NewDB(t, &Project{}, &Milestone{})
	return NewService(NewRepository(db))
}

func TestCreateProject(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, CreateProjectInput{Name: "  Website  "})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "Website", p.Name)
	assert.Equal(t, ProjectStatusPlanning, p.Status)

	got, err := svc.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestCreateProject_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	start := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	tests := []struct {
		name  string
		input CreateProjectInput
	}{
		{"blank name", CreateProjectInput{Name: " "}},
		{"bad status", CreateProjectInput{Name: "x", Status: "DONE"}},
		{"end before start", CreateProjectInput{Name: "x", StartDate: &start, EndDate: &end}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProject(ctx, tt.input)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		})
	}
}

func TestGetProject_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetProject(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestMilestones(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, CreateProjectInput{Name: "App"})
	require.NoError(t, err)

	m, err := svc.CreateMilestone(ctx, CreateMilestoneInput{ProjectID: p.ID, Name: "Beta"})
	require.NoError(t, err)
	assert.Equal(t, MilestoneStatusPending, m.Status)

	list, err := svc.ListMilestones(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, m.ID, list[0].ID)

	_, err = svc.CreateMilestone(ctx, CreateMilestoneInput{ProjectID: uuid.New(), Name: "Orphan"})
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
