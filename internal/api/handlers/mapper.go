package handlers

import (
	"encoding/json"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/dto"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/commission"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/sprint"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/task"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/timer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tasks
func TaskToResponse(t *task.Task) *dto.TaskResponse {
	if t == nil {
		return nil
	}
	return &dto.TaskResponse{
		ID:               t.ID,
		ProjectID:        t.ProjectID,
		SprintID:         t.SprintID,
		MilestoneID:      t.MilestoneID,
		AssigneeID:       t.AssigneeID,
		CreatorID:        t.CreatorID,
		Title:            t.Title,
		Description:      t.Description,
		Status:           string(t.Status),
		Priority:         string(t.Priority),
		Order:            t.Order,
		StoryPoints:      t.StoryPoints,
		EstimatedMinutes: t.EstimatedMinutes,
		ActualMinutes:    t.ActualMinutes,
		DueDate:          t.DueDate,
		StartDate:        t.StartDate,
		StartTime:        t.StartTime,
		EndTime:          t.EndTime,
		CompletedAt:      t.CompletedAt,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func TasksToResponse(tasks []task.Task) []*dto.TaskResponse {
	out := make([]*dto.TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = TaskToResponse(&tasks[i])
	}
	return out
}

func ActivityToResponse(a *task.TaskActivity) *dto.TaskActivityResponse {
	resp := &dto.TaskActivityResponse{
		ID:        a.ID,
		TaskID:    a.TaskID,
		UserID:    a.UserID,
		Action:    a.Action,
		Timestamp: a.Timestamp,
	}
	if len(a.Metadata) > 0 {
		var meta map[string]interface{}
		if err := json.Unmarshal([]byte(a.Metadata), &meta); err == nil {
			resp.Metadata = meta
		}
	}
	return resp
}

// Timers
func TimeEntryToResponse(e *timer.TimeEntry) *dto.TimeEntryResponse {
	if e == nil {
		return nil
	}
	return &dto.TimeEntryResponse{
		ID:        e.ID,
		TaskID:    e.TaskID,
		UserID:    e.UserID,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Duration:  e.Duration,
		IsActive:  e.IsActive(),
	}
}

func TimeEntriesToResponse(entries []timer.TimeEntry) []*dto.TimeEntryResponse {
	out := make([]*dto.TimeEntryResponse, len(entries))
	for i := range entries {
		out[i] = TimeEntryToResponse(&entries[i])
	}
	return out
}

func SummaryToResponse(s *timer.Summary) *dto.TimeSummaryResponse {
	return &dto.TimeSummaryResponse{
		TaskID:        s.TaskID,
		TotalSeconds:  s.TotalSeconds,
		ActualMinutes: s.ActualMinutes,
		ClosedEntries: s.ClosedEntries,
		ActiveEntry:   TimeEntryToResponse(s.ActiveEntry),
	}
}

// Sprints
func SprintToResponse(s *sprint.Sprint, projectIDs []uuid.UUID) *dto.SprintResponse {
	if projectIDs == nil {
		projectIDs = []uuid.UUID{}
	}
	return &dto.SprintResponse{
		ID:         s.ID,
		Name:       s.Name,
		Goal:       s.Goal,
		Status:     string(s.Status),
		StartDate:  s.StartDate,
		EndDate:    s.EndDate,
		Capacity:   s.Capacity,
		ProjectIDs: projectIDs,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// Commissions
func StatementToResponse(s *commission.Statement) *dto.CommissionResponse {
	resp := &dto.CommissionResponse{
		UserID:           s.Result.UserID,
		MinutesCompleted: s.Result.MinutesCompleted,
		VariablePay:      money(s.Result.VariablePay),
		FixedSalary:      money(s.Result.FixedSalary),
		TotalPay:         money(s.Result.TotalPay),
	}
	if s.User != nil {
		resp.Name = s.User.Name
		resp.Email = s.User.Email
		resp.Role = string(s.User.Role)
	}
	if p := s.Profile; p != nil {
		profile := &dto.CompensationProfileResponse{
			HasFixedSalary: p.HasFixedSalary,
			HourRate:       money(p.HourRate),
			UpdatedAt:      p.UpdatedAt,
		}
		if p.FixedSalary != nil {
			fixed := money(*p.FixedSalary)
			profile.FixedSalary = &fixed
		}
		resp.Profile = profile
	}
	return resp
}

func StatementsToResponse(statements []commission.Statement) []*dto.CommissionResponse {
	out := make([]*dto.CommissionResponse, len(statements))
	for i := range statements {
		out[i] = StatementToResponse(&statements[i])
	}
	return out
}

// money rounds to cents for presentation only; arithmetic stays in decimal.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
