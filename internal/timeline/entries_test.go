package timeline

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateWithTrack(t *testing.T) (*State, Track) {
	t.Helper()
	s := newTestState(t)
	require.NoError(t, s.AddGroup("Work"))
	tr, err := s.AddTrack("Work", "Deadline")
	require.NoError(t, err)
	return s, tr
}

func TestUpsertEntryReplacesNote(t *testing.T) {
	s, tr := stateWithTrack(t)
	d := day("2024-03-01")

	require.NoError(t, s.UpsertEntry(tr.ID, d, "first"))
	require.NoError(t, s.UpsertEntry(tr.ID, d, "second"))

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{TrackID: tr.ID, Date: d, Note: "second"}, entries[0])
}

func TestUpsertEntryKeepsNoteVerbatim(t *testing.T) {
	s, tr := stateWithTrack(t)
	note := "  - indented item\n  - another\n"
	require.NoError(t, s.UpsertEntry(tr.ID, day("2024-03-01"), note))
	e, ok := s.Entry(tr.ID, day("2024-03-01"))
	require.True(t, ok)
	assert.Equal(t, note, e.Note)

	// Sizing still ignores the surrounding whitespace.
	enc := DefaultEncoder()
	assert.Equal(t, enc.Size("- indented item\n  - another"), enc.Size(e.Note))
}

func TestUpsertEntryErrors(t *testing.T) {
	s, tr := stateWithTrack(t)
	assert.ErrorIs(t, s.UpsertEntry("missing", day("2024-03-01"), ""), ErrNotFound)
	assert.ErrorIs(t, s.UpsertEntry(tr.ID, civil.Date{Year: 2024, Month: 2, Day: 30}, ""), ErrValidation)
	assert.Empty(t, s.Entries())
}

func TestDeleteEntry(t *testing.T) {
	s, tr := stateWithTrack(t)
	require.NoError(t, s.UpsertEntry(tr.ID, day("2024-03-01"), "a"))
	require.NoError(t, s.UpsertEntry(tr.ID, day("2024-03-02"), "b"))

	require.NoError(t, s.DeleteEntry(tr.ID, day("2024-03-01")))
	assert.ErrorIs(t, s.DeleteEntry(tr.ID, day("2024-03-01")), ErrNotFound)

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, day("2024-03-02"), entries[0].Date)
}

func TestEntriesForSortedByDate(t *testing.T) {
	s, tr := stateWithTrack(t)
	for _, d := range []string{"2024-03-05", "2024-01-01", "2024-02-10"} {
		require.NoError(t, s.UpsertEntry(tr.ID, day(d), ""))
	}
	var got []string
	for _, e := range s.EntriesFor(tr.ID) {
		got = append(got, e.Date.String())
	}
	assert.Equal(t, []string{"2024-01-01", "2024-02-10", "2024-03-05"}, got)
	assert.Equal(t, day("2024-01-01"), s.EarliestEntry())
}

func TestReplaceRejectsBadSnapshot(t *testing.T) {
	s, tr := stateWithTrack(t)
	require.NoError(t, s.UpsertEntry(tr.ID, day("2024-03-01"), "keep"))
	before := s.Export()

	cases := map[string]Snapshot{
		"dangling group": {
			Groups: []Group{{Name: "A"}},
			Tracks: []Track{{ID: "x", Group: "B", Name: "n"}},
		},
		"dangling track": {
			Groups:  []Group{{Name: "A"}},
			Entries: []Entry{{TrackID: "x", Date: day("2024-01-01")}},
		},
		"duplicate group": {
			Groups: []Group{{Name: "A"}, {Name: "A"}},
		},
		"duplicate entry key": {
			Groups: []Group{{Name: "A"}},
			Tracks: []Track{{ID: "x", Group: "A", Name: "n"}},
			Entries: []Entry{
				{TrackID: "x", Date: day("2024-01-01")},
				{TrackID: "x", Date: day("2024-01-01"), Note: "again"},
			},
		},
		"duplicate track id": {
			Groups: []Group{{Name: "A"}},
			Tracks: []Track{{ID: "x", Group: "A", Name: "n"}, {ID: "x", Group: "A", Name: "m"}},
		},
	}
	for name, snap := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.Replace(snap), ErrMalformedPayload)
			assert.Equal(t, before, s.Export())
		})
	}
}

func TestReplaceDropsVanishedVisibleGroups(t *testing.T) {
	s, _ := stateWithTrack(t)
	require.NoError(t, s.AddGroup("Home"))
	s.SetSettings(Settings{Visible: []string{"Work", "Home"}})
	require.NoError(t, s.Replace(Snapshot{Groups: []Group{{Name: "Home"}, {Name: "Other"}}}))
	assert.Equal(t, []string{"Home"}, s.Settings().Visible)
}

func TestReplaceResetsFilterWhenNothingSurvives(t *testing.T) {
	s, _ := stateWithTrack(t)
	s.SetSettings(Settings{Visible: []string{"Work"}})
	require.NoError(t, s.ImportDocument(map[string]any{"groups": []any{"Home"}}))
	assert.Nil(t, s.Settings().Visible)

	p := Build(s, Options{Window: NewWindow(day("2024-03-01"), day("2024-03-01")), Visible: s.Settings().VisibleSet()})
	_, ok := p.Lookup(GroupRow("Home"))
	assert.True(t, ok, "imported group should be visible")
}
