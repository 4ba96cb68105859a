package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchedule_Interval(t *testing.T) {
	sched, err := ParseSchedule("300")

	require.NoError(t, err)
	assert.Equal(t, 300*time.Second, sched.Every)
	assert.Empty(t, sched.Times)
}

func TestParseSchedule_SingleDailyTime(t *testing.T) {
	sched, err := ParseSchedule("10:00")

	require.NoError(t, err)
	assert.Equal(t, []int{600}, sched.Times)
	assert.Zero(t, sched.Every)
}

func TestParseSchedule_MultipleDailyTimes_Sorted(t *testing.T) {
	sched, err := ParseSchedule("14:30, 09:00")

	require.NoError(t, err)
	assert.Equal(t, []int{540, 870}, sched.Times)
}

func TestParseSchedule_Invalid(t *testing.T) {
	tests := []string{"", "25:00", "10:61", "ten o'clock", "-60", "0"}

	for _, spec := range tests {
		t.Run(spec, func(t *testing.T) {
			_, err := ParseSchedule(spec)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSchedule_Next_Interval(t *testing.T) {
	sched := Schedule{Every: 5 * time.Minute}
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(5*time.Minute), sched.Next(now))
}

func TestSchedule_Next_DailyTime_LaterToday(t *testing.T) {
	sched := Schedule{Times: []int{600}} // 10:00
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	next := sched.Next(now)
	assert.Equal(t, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), next)
}

func TestSchedule_Next_DailyTime_RollsToTomorrow(t *testing.T) {
	sched := Schedule{Times: []int{600}} // 10:00
	now := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)

	next := sched.Next(now)
	assert.Equal(t, time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC), next)
}

func TestSchedule_Next_PicksEarliestRemaining(t *testing.T) {
	sched := Schedule{Times: []int{540, 870}} // 09:00, 14:30
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	next := sched.Next(now)
	assert.Equal(t, time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC), next)
}

func TestSchedule_IsZero(t *testing.T) {
	assert.True(t, Schedule{}.IsZero())
	assert.False(t, Schedule{Every: time.Minute}.IsZero())
	assert.False(t, Schedule{Times: []int{0}}.IsZero())
}
