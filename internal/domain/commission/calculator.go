package commission

import (
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/task"
	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// CompletionTime picks completedAt, then endTime, then updatedAt, then startDate.
func CompletionTime(t *task.Task) (time.Time, bool) {
	switch {
	case t.CompletedAt != nil:
		return *t.CompletedAt, true
	case t.EndTime != nil:
		return *t.EndTime, true
	case !t.UpdatedAt.IsZero():
		return t.UpdatedAt, true
	case t.StartDate != nil:
		return *t.StartDate, true
	}
	return time.Time{}, false
}

// Calculate derives pay from estimated minutes of completed tasks. A nil
// profile is a zero profile; a nil range keeps every completed task.
func Calculate(profile *CompensationProfile, tasks []task.Task, rng *Range, loc *time.Location) Result {
	if loc == nil {
		loc = time.UTC
	}
	var from, to time.Time
	if rng != nil {
		from, to = rng.Bounds(loc)
	}

	minutes := 0
	for i := range tasks {
		t := &tasks[i]
		if t.Status != task.TaskStatusCompleted {
			continue
		}
		if rng != nil {
			at, ok := CompletionTime(t)
			if !ok || at.Before(from) || at.After(to) {
				continue
			}
		}
		if t.EstimatedMinutes != nil {
			minutes += *t.EstimatedMinutes
		}
	}

	rate := decimal.Zero
	if profile != nil {
		rate = profile.HourRate
	}
	variable := decimal.NewFromInt(int64(minutes)).Mul(rate).Div(sixty)
	fixed := profile.Fixed()

	result := Result{
		MinutesCompleted: minutes,
		VariablePay:      variable,
		FixedSalary:      fixed,
		TotalPay:         fixed.Add(variable),
	}
	if profile != nil {
		result.UserID = profile.UserID
	}
	return result
}
