package timeline

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetWindow(t *testing.T) {
	end := day("2024-03-31")
	tests := []struct {
		preset Preset
		start  string
	}{
		{Preset30Days, "2024-03-02"},
		{Preset60Days, "2024-02-01"},
		{Preset90Days, "2024-01-02"},
		{Preset6Months, "2023-10-01"},
		{Preset12Months, "2023-04-01"},
		{Preset("bogus"), "2024-01-02"},
	}
	for _, tt := range tests {
		w := PresetWindow(tt.preset, end, day("2020-01-01"))
		assert.Equal(t, tt.start, w.Start.String(), "preset %s", tt.preset)
		assert.Equal(t, end, w.End)
	}
}

func TestPresetWindowAllTime(t *testing.T) {
	end := day("2024-03-31")
	w := PresetWindow(PresetAll, end, day("2023-12-25"))
	assert.Equal(t, day("2023-12-25"), w.Start)

	w = PresetWindow(PresetAll, end, end)
	assert.Equal(t, 1, w.Len())

	w = PresetWindow(PresetAll, end, civil.Date{})
	assert.Equal(t, 180, w.Len())
}

func TestNewWindowClampsStart(t *testing.T) {
	w := NewWindow(day("2024-04-10"), day("2024-04-01"))
	assert.Equal(t, w.End, w.Start)
	assert.Equal(t, 1, w.Len())
}

func TestWindowDaysAscendingWithoutGaps(t *testing.T) {
	// Spans a leap day and a month boundary.
	w := NewWindow(day("2024-02-27"), day("2024-03-02"))
	days := w.Days()
	require.Len(t, days, 5)
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
	for i, d := range days {
		assert.Equal(t, want[i], d.String())
		if i > 0 {
			assert.Equal(t, 1, d.DaysSince(days[i-1]))
		}
	}
}

func TestWindowContainsInclusive(t *testing.T) {
	w := NewWindow(day("2024-02-01"), day("2024-03-31"))
	assert.True(t, w.Contains(day("2024-02-01")))
	assert.True(t, w.Contains(day("2024-03-31")))
	assert.False(t, w.Contains(day("2024-01-31")))
	assert.False(t, w.Contains(day("2024-04-01")))
}

func TestParsePreset(t *testing.T) {
	for _, p := range Presets {
		got, err := ParsePreset(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
		assert.NotEmpty(t, p.Label())
	}
	_, err := ParsePreset("7y")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStateWindowUsesSettings(t *testing.T) {
	s, tr := stateWithTrack(t)
	require.NoError(t, s.UpsertEntry(tr.ID, day("2024-01-15"), ""))

	assert.Equal(t, PresetWindow(DefaultPreset, day("2024-03-31"), day("2024-01-15")), s.Window(day("2024-03-31")))

	s.SetSettings(Settings{Preset: PresetAll, EndDate: day("2024-02-01")})
	w := s.Window(day("2030-01-01"))
	assert.Equal(t, day("2024-01-15"), w.Start)
	assert.Equal(t, day("2024-02-01"), w.End)
}
