package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TasksMoved counts committed moves, labelled by whether the task changed partition.
	TasksMoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swhouse_tasks_moved_total",
			Help: "Total number of committed task moves",
		},
		[]string{"kind"},
	)

	// PartitionSize observes the destination partition length after a move.
	PartitionSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swhouse_partition_size",
			Help:    "Number of tasks in a partition after re-sequencing",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// TimerTransitions counts timer starts and stops.
	TimerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swhouse_timer_transitions_total",
			Help: "Total number of timer transitions",
		},
		[]string{"action"},
	)

	// TimeEntryDuration observes closed entry durations in seconds.
	TimeEntryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swhouse_time_entry_duration_seconds",
			Help:    "Duration of closed time entries",
			Buckets: []float64{60, 300, 900, 1800, 3600, 7200, 14400, 28800},
		},
	)

	// CommissionCalculations counts computed commission figures.
	CommissionCalculations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swhouse_commission_calculations_total",
			Help: "Total number of commission figures computed",
		},
	)
)

const (
	MoveKindReorder  = "reorder"
	MoveKindRelocate = "relocate"

	TimerActionStart = "start"
	TimerActionStop  = "stop"
)
