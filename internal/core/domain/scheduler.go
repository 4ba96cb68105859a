package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Schedule describes when recurring syncs fire. Either a set of daily
// clock times or a fixed interval, never both.
type Schedule struct {
	// Times holds daily firing times as minutes from midnight, sorted.
	Times []int

	// Every is a fixed interval. Zero when Times is set.
	Every time.Duration
}

// ParseSchedule parses a schedule spec. Accepted forms:
//
//	"10:00"        fire daily at 10:00
//	"09:00,14:30"  fire daily at each listed time
//	"300"          fire every 300 seconds
func ParseSchedule(spec string) (Schedule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Schedule{}, fmt.Errorf("%w: empty schedule spec", ErrInvalidInput)
	}

	if secs, err := strconv.Atoi(spec); err == nil {
		if secs <= 0 {
			return Schedule{}, fmt.Errorf("%w: interval must be positive, got %d", ErrInvalidInput, secs)
		}
		return Schedule{Every: time.Duration(secs) * time.Second}, nil
	}

	parts := strings.Split(spec, ",")
	times := make([]int, 0, len(parts))
	for _, p := range parts {
		m, err := parseClockTime(strings.TrimSpace(p))
		if err != nil {
			return Schedule{}, err
		}
		times = append(times, m)
	}
	sortInts(times)
	return Schedule{Times: times}, nil
}

func parseClockTime(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("%w: expected HH:MM, got %q", ErrInvalidInput, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: bad hour in %q", ErrInvalidInput, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: bad minute in %q", ErrInvalidInput, s)
	}
	return h*60 + m, nil
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}

// IsZero reports whether the schedule is unset.
func (s Schedule) IsZero() bool {
	return len(s.Times) == 0 && s.Every == 0
}

// Next returns the first firing time strictly after the given instant.
func (s Schedule) Next(after time.Time) time.Time {
	if s.Every > 0 {
		return after.Add(s.Every)
	}

	midnight := time.Date(after.Year(), after.Month(), after.Day(), 0, 0, 0, 0, after.Location())
	for _, m := range s.Times {
		candidate := midnight.Add(time.Duration(m) * time.Minute)
		if candidate.After(after) {
			return candidate
		}
	}
	if len(s.Times) == 0 {
		return time.Time{}
	}
	// All of today's times have passed; first time tomorrow.
	return midnight.Add(24*time.Hour + time.Duration(s.Times[0])*time.Minute)
}

// ScheduledTask represents a recurring background task.
type ScheduledTask struct {
	// ID is the unique identifier for the task.
	ID string

	// Name is a human-readable name for the task.
	Name string

	// Spec is the schedule spec the task runs on.
	Spec string

	// LastRun is when the task last ran.
	LastRun time.Time

	// NextRun is when the task should run next.
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastSuccess is when the task last completed successfully.
	LastSuccess time.Time

	// Enabled indicates whether the task is active.
	Enabled bool
}

// TaskResult represents the outcome of a task execution.
type TaskResult struct {
	// TaskID identifies which task was run.
	TaskID string

	// StartedAt is when the task started.
	StartedAt time.Time

	// EndedAt is when the task completed.
	EndedAt time.Time

	// Success indicates whether the task completed without error.
	Success bool

	// Error contains the error message if Success is false.
	Error string

	// ItemsProcessed is a count of items handled (e.g., documents uploaded).
	ItemsProcessed int
}

// Task IDs for built-in tasks.
const (
	// TaskIDSourceSync runs a full sync of all enabled sources.
	TaskIDSourceSync = "source-sync"

	// TaskIDCacheSweep expires stale download cache entries.
	TaskIDCacheSweep = "cache-sweep"
)
