package timer

import "time"

// DurationSeconds is floor((end-start)/1s). A negative interval is a data
// integrity failure and is reported, never clamped.
func DurationSeconds(start, end time.Time) (int64, error) {
	d := end.Sub(start)
	if d < 0 {
		return 0, ErrNegativeDuration
	}
	return int64(d / time.Second), nil
}

// TotalSeconds sums the durations of closed entries.
func TotalSeconds(durations []int64) int64 {
	var total int64
	for _, d := range durations {
		total += d
	}
	return total
}

// ActualMinutes recomputes floor(sum of closed durations / 60) from scratch.
func ActualMinutes(durations []int64) int {
	return int(TotalSeconds(durations) / 60)
}

// Summarize builds the rollup of a task's entries.
func Summarize(entries []TimeEntry) Summary {
	var (
		summary   Summary
		durations []int64
	)
	for i := range entries {
		e := &entries[i]
		summary.TaskID = e.TaskID
		if e.IsActive() {
			if summary.ActiveEntry == nil {
				summary.ActiveEntry = e
			}
			continue
		}
		summary.ClosedEntries++
		if e.Duration != nil {
			durations = append(durations, *e.Duration)
		}
	}
	summary.TotalSeconds = TotalSeconds(durations)
	summary.ActualMinutes = ActualMinutes(durations)
	return summary
}
