package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClampDuration(t *testing.T) {
	assert.Equal(t, 4, ClampDuration(0))
	assert.Equal(t, 4, ClampDuration(-3))
	assert.Equal(t, 1, ClampDuration(1))
	assert.Equal(t, 12, ClampDuration(13))
}

func TestSuggestWeeklyLabels(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		existing []string
		want     []string
	}{
		{"fresh default", 4, nil, []string{LabelAccumulation, LabelAccumulation, LabelAccumulation, LabelDeload}},
		{"single week", 1, nil, []string{LabelAccumulation}},
		{"grow", 3, []string{"Base"}, []string{"Base", LabelAccumulation, LabelDeload}},
		{"shrink", 2, []string{"A", "B", "C"}, []string{"A", "B"}},
		{"same length kept", 2, []string{"A", "B"}, []string{"A", "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestWeeklyLabels(tt.duration, tt.existing))
		})
	}
}

func TestCleanWeeklyLabels(t *testing.T) {
	assert.Equal(t,
		[]string{"Fuerza", LabelAccumulation, "Potencia", LabelDeload},
		CleanWeeklyLabels([]string{" Fuerza ", "", "Potencia", "Descarga"}))
	assert.Nil(t, CleanWeeklyLabels([]string{" ", ""}))
	assert.Nil(t, CleanWeeklyLabels(nil))
}

func TestWeekDateRanges(t *testing.T) {
	start := time.Date(2026, 12, 28, 15, 30, 0, 0, time.UTC)
	got := WeekDateRanges(start, []int{1, 2})
	assert.Equal(t, []WeekRange{
		{WeekNumber: 1, StartDate: "2026-12-28", EndDate: "2027-01-03"},
		{WeekNumber: 2, StartDate: "2027-01-04", EndDate: "2027-01-10"},
	}, got)

	assert.Equal(t, "2027-01-25", ProgramEndDate(start, 4).Format(time.DateOnly))
	assert.Equal(t, "2027-01-06", DayDate(start, 2, 3).Format(time.DateOnly))
}
