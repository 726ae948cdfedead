package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pioneerbroadband/leadtracker/internal/leads"
)

func ts(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
}

func tp(day int) *time.Time {
	t := ts(day)
	return &t
}

func TestBetween(t *testing.T) {
	tests := []struct {
		name     string
		start    *time.Time
		end      *time.Time
		defined  bool
		wantDays float64
	}{
		{"both present", tp(1), tp(4), true, 3},
		{"fractional", tp(1), func() *time.Time { t := ts(1).Add(36 * time.Hour); return &t }(), true, 1.5},
		{"missing start", nil, tp(4), false, 0},
		{"missing end", tp(1), nil, false, 0},
		{"swapped order is undefined, not negative", tp(4), tp(1), false, 0},
		{"zero span", tp(1), tp(1), true, 0},
		{"zero time start counts as missing", &time.Time{}, tp(4), false, 0},
		{"zero time end counts as missing", tp(1), &time.Time{}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Between(tt.start, tt.end)
			assert.Equal(t, tt.defined, d.Defined)
			if tt.defined {
				assert.InDelta(t, tt.wantDays, d.Days, 1e-9)
				assert.GreaterOrEqual(t, d.Days, 0.0)
			}
		})
	}
}

func TestIntervalsOpenRecordExtendsToNow(t *testing.T) {
	l := &leads.Lead{
		ID:        "a",
		Status:    leads.StatusScheduled,
		CreatedAt: ts(1),
		StatusHistory: []leads.StatusChange{
			{Status: leads.StatusSurveyScheduled, At: ts(1)},
			{Status: leads.StatusScheduled, At: ts(3)},
		},
	}
	now := ts(10)
	intervals, warnings := Intervals(l, now)
	require.Empty(t, warnings)
	require.Len(t, intervals, 2)
	assert.InDelta(t, 2.0, intervals[0].Span.Days, 1e-9)
	assert.InDelta(t, 7.0, intervals[1].Span.Days, 1e-9)
}

func TestIntervalsTerminalRecordClosesAtLastTransition(t *testing.T) {
	l := &leads.Lead{
		ID:        "b",
		Status:    leads.StatusInstalled,
		CreatedAt: ts(1),
		StatusHistory: []leads.StatusChange{
			{Status: leads.StatusSurveyScheduled, At: ts(1)},
			{Status: leads.StatusInstalled, At: ts(5)},
		},
	}
	intervals, warnings := Intervals(l, ts(30))
	require.Empty(t, warnings)
	require.Len(t, intervals, 2)
	assert.InDelta(t, 4.0, intervals[0].Span.Days, 1e-9)
	// Terminal status accrues no time past its transition.
	assert.True(t, intervals[1].Span.Defined)
	assert.Zero(t, intervals[1].Span.Days)
}

func TestIntervalsOutOfOrderTimestampsAreUndefinedAndWarned(t *testing.T) {
	l := &leads.Lead{
		ID:        "c",
		Status:    leads.StatusScheduled,
		CreatedAt: ts(5),
		StatusHistory: []leads.StatusChange{
			{Status: leads.StatusSurveyScheduled, At: ts(5)},
			{Status: leads.StatusScheduled, At: ts(2)}, // clock skew
		},
	}
	intervals, warnings := Intervals(l, ts(10))
	require.Len(t, intervals, 2)
	assert.False(t, intervals[0].Span.Defined, "skewed interval must be undefined, not clamped")
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnOutOfOrder, warnings[0].Kind)
}

func TestIntervalsMissingTimestampIsUndefinedAndWarned(t *testing.T) {
	l := &leads.Lead{
		ID:     "e",
		Status: leads.StatusScheduled,
		StatusHistory: []leads.StatusChange{
			{Status: leads.StatusScheduled}, // timestamp never parsed
		},
	}
	intervals, warnings := Intervals(l, ts(10))
	require.Len(t, intervals, 1)
	assert.False(t, intervals[0].Span.Defined, "epoch-anchored span must not be treated as real time")
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnMissingTimestamp, warnings[0].Kind)
}

func TestIntervalsEmptyHistorySynthesizedFromCreation(t *testing.T) {
	l := &leads.Lead{ID: "d", Status: leads.StatusSurveyScheduled, CreatedAt: ts(1)}
	intervals, warnings := Intervals(l, ts(4))
	require.Empty(t, warnings)
	require.Len(t, intervals, 1)
	assert.InDelta(t, 3.0, intervals[0].Span.Days, 1e-9)
}

func TestNamedStageDurations(t *testing.T) {
	l := &leads.Lead{
		CreatedAt:           ts(1),
		SurveyScheduledDate: tp(1),
		SurveyCompletedDate: tp(4),
		ScheduledDate:       tp(6),
		InstalledDate:       tp(11),
	}
	assert.InDelta(t, 3.0, SurveyDuration(l).Days, 1e-9)
	assert.InDelta(t, 2.0, SchedulingDuration(l).Days, 1e-9)
	assert.InDelta(t, 5.0, InstallWaitDuration(l).Days, 1e-9)
	assert.InDelta(t, 10.0, TotalDaysToInstall(l).Days, 1e-9)
}

func TestNamedStageDurationsUndefinedWithoutBothEndpoints(t *testing.T) {
	l := &leads.Lead{CreatedAt: ts(1), SurveyScheduledDate: tp(1)}
	assert.False(t, SurveyDuration(l).Defined)
	assert.False(t, SchedulingDuration(l).Defined)
	assert.False(t, InstallWaitDuration(l).Defined)
	assert.False(t, TotalDaysToInstall(l).Defined)
}
