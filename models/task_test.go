package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"airdrop", "testnet"},
		NormalizeTags([]string{"#Airdrop", "AIRDROP", "testnet", "#spam"}))

	// Nothing survives the allow-list → unknown
	assert.Equal(t, []string{TagUnknown}, NormalizeTags([]string{"#spam", "random"}))
	assert.Equal(t, []string{TagUnknown}, NormalizeTags(nil))
}

func TestSameTagSet(t *testing.T) {
	assert.True(t, SameTagSet([]string{"airdrop", "testnet"}, []string{"testnet", "airdrop"}))
	assert.True(t, SameTagSet(nil, nil))
	assert.False(t, SameTagSet([]string{"airdrop"}, []string{"testnet"}))
	assert.False(t, SameTagSet([]string{"airdrop"}, []string{"airdrop", "testnet"}))
}

func TestDisplayDate(t *testing.T) {
	created := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	imported := time.Date(2025, 9, 15, 8, 0, 0, 0, time.UTC)

	task := Task{CreatedAt: created}
	assert.Equal(t, created, task.DisplayDate())

	task.JSONDate = &imported
	assert.Equal(t, imported, task.DisplayDate())
}

func TestApplyDailyReset(t *testing.T) {
	now := time.Date(2025, 11, 4, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	earlierToday := now.Add(-2 * time.Hour)

	tasks := []Task{
		{Frequency: TaskFrequencyDaily, Status: TaskStatusDone, LastDoneDate: &yesterday},
		{Frequency: TaskFrequencyDaily, Status: TaskStatusDone, LastDoneDate: &earlierToday},
		{Frequency: "Once", Status: TaskStatusDone, LastDoneDate: &yesterday},
		{Frequency: TaskFrequencyDaily, Status: TaskStatusPending},
		{Frequency: TaskFrequencyDaily, Status: TaskStatusDone}, // no completion date
	}

	out := ApplyDailyReset(tasks, now, 0)
	require.Len(t, out, 5)

	// Done yesterday → re-surfaced
	assert.Equal(t, TaskStatusPending, out[0].Status)
	assert.True(t, out[0].IsReset)

	// Done earlier today → stays Done
	assert.Equal(t, TaskStatusDone, out[1].Status)
	assert.False(t, out[1].IsReset)

	// Non-daily never resets
	assert.Equal(t, TaskStatusDone, out[2].Status)

	// Already pending / missing completion date untouched
	assert.Equal(t, TaskStatusPending, out[3].Status)
	assert.Equal(t, TaskStatusDone, out[4].Status)
}

func TestApplyDailyReset_ResetHourShiftsDayBoundary(t *testing.T) {
	// Completed at 23:00, checked at 01:00 the next calendar day. With the
	// boundary at 02:00 both instants fall in the same logical day.
	done := time.Date(2025, 11, 3, 23, 0, 0, 0, time.UTC)
	now := time.Date(2025, 11, 4, 1, 0, 0, 0, time.UTC)

	tasks := []Task{{Frequency: TaskFrequencyDaily, Status: TaskStatusDone, LastDoneDate: &done}}

	out := ApplyDailyReset(append([]Task(nil), tasks...), now, 2)
	assert.Equal(t, TaskStatusDone, out[0].Status)

	// Same instants with a midnight boundary do reset
	out = ApplyDailyReset(append([]Task(nil), tasks...), now, 0)
	assert.Equal(t, TaskStatusPending, out[0].Status)
	assert.True(t, out[0].IsReset)
}
