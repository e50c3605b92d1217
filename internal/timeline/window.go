package timeline

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Preset names a window length ending on the reference date.
type Preset string

const (
	Preset30Days   Preset = "30d"
	Preset60Days   Preset = "60d"
	Preset90Days   Preset = "90d"
	Preset6Months  Preset = "6m"
	Preset12Months Preset = "12m"
	PresetAll      Preset = "all"
)

// Presets lists every preset in display order.
var Presets = []Preset{Preset30Days, Preset60Days, Preset90Days, Preset6Months, Preset12Months, PresetAll}

// DefaultPreset is used when nothing else is configured.
const DefaultPreset = Preset90Days

// allTimeFallbackDays is the span of the "all" preset when there are no entries.
const allTimeFallbackDays = 180

func (p Preset) Label() string {
	switch p {
	case Preset30Days:
		return "30 days"
	case Preset60Days:
		return "60 days"
	case Preset90Days:
		return "90 days"
	case Preset6Months:
		return "6 months"
	case Preset12Months:
		return "12 months"
	case PresetAll:
		return "All time"
	}
	return string(p)
}

// ParsePreset accepts a preset name.
func ParsePreset(s string) (Preset, error) {
	for _, p := range Presets {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("preset %q: %w", s, ErrValidation)
}

// Window is an inclusive [Start, End] calendar range.
type Window struct {
	Start civil.Date
	End   civil.Date
}

// NewWindow builds a window; a start after end is clamped to end.
func NewWindow(start, end civil.Date) Window {
	if start.After(end) {
		start = end
	}
	return Window{Start: start, End: end}
}

// PresetWindow computes the window for p ending on end. earliest is the first
// entry date and only matters for PresetAll; pass the zero date when there
// are no entries.
func PresetWindow(p Preset, end, earliest civil.Date) Window {
	var start civil.Date
	switch p {
	case Preset30Days:
		start = end.AddDays(-29)
	case Preset60Days:
		start = end.AddDays(-59)
	case Preset6Months:
		start = addMonths(end, -6).AddDays(1)
	case Preset12Months:
		start = addMonths(end, -12).AddDays(1)
	case PresetAll:
		if earliest.IsZero() {
			start = end.AddDays(-(allTimeFallbackDays - 1))
		} else {
			start = earliest
		}
	default:
		start = end.AddDays(-89)
	}
	return NewWindow(start, end)
}

// addMonths shifts by whole months, clamping to the last day of the target
// month (Mar 31 minus one month is Feb 29, not Mar 2).
func addMonths(d civil.Date, n int) civil.Date {
	first := time.Date(d.Year, d.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	day := d.Day
	if day > last {
		day = last
	}
	return civil.Date{Year: first.Year(), Month: first.Month(), Day: day}
}

// Contains reports whether d is within the window, inclusive.
func (w Window) Contains(d civil.Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Len is the number of days in the window.
func (w Window) Len() int {
	return w.End.DaysSince(w.Start) + 1
}

// Days returns every day in the window in ascending order.
func (w Window) Days() []civil.Date {
	n := w.Len()
	if n <= 0 {
		return nil
	}
	days := make([]civil.Date, n)
	for i := range days {
		days[i] = w.Start.AddDays(i)
	}
	return days
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.Start, w.End)
}

// Today returns the local calendar date.
func Today() civil.Date {
	return civil.DateOf(time.Now())
}
