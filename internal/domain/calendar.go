package domain

import (
	"strings"
	"time"
)

// Week labels suggested by the setup wizard.
const (
	LabelAccumulation = "Acumulación"
	LabelDeload       = "Descarga"
)

const (
	DefaultDurationWeeks = 4
	MaxDurationWeeks     = 12
	daysPerWeek          = 7
)

// ClampDuration maps a requested program length to 1..12 weeks; zero or
// negative means the default of 4.
func ClampDuration(weeks int) int {
	switch {
	case weeks <= 0:
		return DefaultDurationWeeks
	case weeks > MaxDurationWeeks:
		return MaxDurationWeeks
	}
	return weeks
}

// CleanWeeklyLabels trims each label in place. A blank label becomes an
// accumulation week so later labels keep their week. A list with no text at
// all is treated as absent.
func CleanWeeklyLabels(labels []string) []string {
	out := make([]string, len(labels))
	filled := false
	for i, l := range labels {
		out[i] = strings.TrimSpace(l)
		if out[i] == "" {
			out[i] = LabelAccumulation
			continue
		}
		filled = true
	}
	if !filled {
		return nil
	}
	return out
}

// SuggestWeeklyLabels resizes existing to duration weeks. A fresh list is
// accumulation weeks ending in a deload (none for a single week). Growing pads
// with accumulation and marks the new last week as deload. Shrinking truncates.
func SuggestWeeklyLabels(duration int, existing []string) []string {
	duration = ClampDuration(duration)
	if len(existing) == 0 {
		labels := make([]string, duration)
		for i := range labels {
			labels[i] = LabelAccumulation
		}
		if duration > 1 {
			labels[duration-1] = LabelDeload
		}
		return labels
	}
	if duration <= len(existing) {
		return append([]string(nil), existing[:duration]...)
	}
	labels := append([]string(nil), existing...)
	for len(labels) < duration {
		labels = append(labels, LabelAccumulation)
	}
	labels[duration-1] = LabelDeload
	return labels
}

// WeekRange is the first and last calendar day of a program week.
type WeekRange struct {
	WeekNumber int    `json:"weekNumber"`
	StartDate  string `json:"startDate"` // YYYY-MM-DD
	EndDate    string `json:"endDate"`
}

// WeekDateRanges lists the date span of each of the given 1-based weeks.
func WeekDateRanges(start time.Time, weeks []int) []WeekRange {
	start = dateOnly(start)
	out := make([]WeekRange, 0, len(weeks))
	for _, w := range weeks {
		from := start.AddDate(0, 0, (w-1)*daysPerWeek)
		out = append(out, WeekRange{
			WeekNumber: w,
			StartDate:  from.Format(time.DateOnly),
			EndDate:    from.AddDate(0, 0, daysPerWeek-1).Format(time.DateOnly),
		})
	}
	return out
}

// ProgramEndDate is start plus seven days per week.
func ProgramEndDate(start time.Time, durationWeeks int) time.Time {
	return dateOnly(start).AddDate(0, 0, durationWeeks*daysPerWeek)
}

// DayDate is the calendar date of a day in a program starting on start.
func DayDate(start time.Time, weekNumber, dayNumber int) time.Time {
	return dateOnly(start).AddDate(0, 0, (weekNumber-1)*daysPerWeek+dayNumber-1)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
