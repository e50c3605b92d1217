package timeline

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeJSON(t *testing.T, raw string) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func roundTrip(t *testing.T, p Payload) map[string]any {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	return decodeJSON(t, string(data))
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestState(t)
	require.NoError(t, s.AddGroup("Work"))
	require.NoError(t, s.AddGroup("Home"))
	a, _ := s.AddTrack("Work", "Deadline")
	b, _ := s.AddTrack("Home", "Garden")
	require.NoError(t, s.UpsertEntry(a.ID, day("2024-03-01"), "finished early"))
	require.NoError(t, s.UpsertEntry(b.ID, day("2024-02-11"), ""))
	want := s.Export()

	other := New()
	require.NoError(t, other.ImportDocument(roundTrip(t, s.ExportPayload())))

	got := other.Export()
	assert.Equal(t, want.Groups, got.Groups)
	assert.ElementsMatch(t, want.Tracks, got.Tracks)
	assert.ElementsMatch(t, want.Entries, got.Entries)
}

func TestExportPayloadOrdersEntries(t *testing.T) {
	s, tr := stateWithTrack(t)
	require.NoError(t, s.UpsertEntry(tr.ID, day("2024-03-02"), "b"))
	require.NoError(t, s.UpsertEntry(tr.ID, day("2024-03-01"), "a"))

	p := s.ExportPayload()
	require.Len(t, p.Entries, 2)
	assert.Equal(t, PayloadEntry{Date: "2024-03-01", TrackID: tr.ID, Note: "a"}, p.Entries[0])
	assert.Equal(t, []string{"Work"}, p.Groups)
}

func TestImportLegacyShape(t *testing.T) {
	doc := decodeJSON(t, `{
		"groups": ["Personal", "Work"],
		"projects": {"Health": "Personal", "Thesis": "Work"},
		"entries": [
			{"date": "2024-03-01", "project": "Thesis", "group": "Work", "percent": 50, "note": "chapter 1"},
			{"date": "2024-03-02", "project": "Health", "group": "Personal", "percent": 0, "note": ""},
			{"date": "2024-03-01", "project": "Thesis", "group": "Work", "percent": 80, "note": "chapter 1 again"}
		]
	}`)
	s := New(WithIDGenerator(seqIDs()))
	require.NoError(t, s.ImportDocument(doc))

	assert.Equal(t, []string{"Personal", "Work"}, s.GroupNames())
	// Legacy projects get ids in name order.
	health, ok := s.Track("t1")
	require.True(t, ok)
	assert.Equal(t, Track{ID: "t1", Group: "Personal", Name: "Health"}, health)
	thesis, ok := s.Track("t2")
	require.True(t, ok)
	assert.Equal(t, "Thesis", thesis.Name)

	entries := s.Entries()
	require.Len(t, entries, 2)
	e, ok := s.Entry("t2", day("2024-03-01"))
	require.True(t, ok)
	assert.Equal(t, "chapter 1 again", e.Note)
}

func TestImportLegacyEntryWithStaleGroup(t *testing.T) {
	// Thesis moved from Personal to Work after the entry was written.
	doc := decodeJSON(t, `{
		"groups": ["Personal", "Work"],
		"projects": {"Thesis": "Work"},
		"entries": [{"date": "2024-03-01", "project": "Thesis", "group": "Personal", "percent": 50, "note": "x"}]
	}`)
	s := New(WithIDGenerator(seqIDs()))
	require.NoError(t, s.ImportDocument(doc))

	e, ok := s.Entry("t1", day("2024-03-01"))
	require.True(t, ok)
	assert.Equal(t, "x", e.Note)
	tr, _ := s.Track("t1")
	assert.Equal(t, "Work", tr.Group)
}

func TestImportTracksUnderProjectsKey(t *testing.T) {
	doc := decodeJSON(t, `{
		"groups": ["G"],
		"projects": [{"id": "x1", "group": "G", "name": "n"}],
		"entries": [{"date": "2024-01-01", "track_id": "x1", "note": "hi"}]
	}`)
	s := New()
	require.NoError(t, s.ImportDocument(doc))
	_, ok := s.Entry("x1", day("2024-01-01"))
	assert.True(t, ok)
}

func TestImportAcceptsTimeValuedDates(t *testing.T) {
	doc := map[string]any{
		"groups": []any{"G"},
		"tracks": []any{map[string]any{"id": "x", "group": "G", "name": "n"}},
		"entries": []any{map[string]any{
			"date":     time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
			"track_id": "x",
			"percent":  40,
		}},
	}
	s := New()
	require.NoError(t, s.ImportDocument(doc))
	_, ok := s.Entry("x", day("2024-05-06"))
	assert.True(t, ok)
}

func TestImportMalformedLeavesStateUntouched(t *testing.T) {
	cases := map[string]string{
		"groups not a list":       `{"groups": "Work"}`,
		"group not a string":      `{"groups": [1]}`,
		"entries not a list":      `{"groups": [], "entries": {"a": 1}}`,
		"entry not a mapping":     `{"groups": [], "entries": ["2024-01-01"]}`,
		"bad date":                `{"groups": ["G"], "projects": {"p": "G"}, "entries": [{"date": "01/02/2024", "project": "p"}]}`,
		"missing date":            `{"groups": ["G"], "projects": {"p": "G"}, "entries": [{"project": "p"}]}`,
		"unknown project":         `{"groups": ["G"], "projects": {"p": "G"}, "entries": [{"date": "2024-01-01", "project": "q"}]}`,
		"unknown group":           `{"groups": ["G"], "projects": {"p": "H"}}`,
		"tracks wrong type":       `{"groups": ["G"], "tracks": "p"}`,
		"project maps to number":  `{"groups": ["G"], "projects": {"p": 3}}`,
		"note not a string":       `{"groups": ["G"], "projects": {"p": "G"}, "entries": [{"date": "2024-01-01", "project": "p", "note": 5}]}`,
		"percent not a number":    `{"groups": ["G"], "projects": {"p": "G"}, "entries": [{"date": "2024-01-01", "project": "p", "percent": "50"}]}`,
		"entry without reference": `{"groups": ["G"], "entries": [{"date": "2024-01-01"}]}`,
		"dangling track id":       `{"groups": ["G"], "tracks": [], "entries": [{"date": "2024-01-01", "track_id": "nope"}]}`,
		"track without id":        `{"groups": ["G"], "tracks": [{"group": "G", "name": "n"}]}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			s, tr := stateWithTrack(t)
			require.NoError(t, s.UpsertEntry(tr.ID, day("2024-03-01"), "keep"))
			before := s.Export()

			err := s.ImportDocument(decodeJSON(t, raw))
			assert.ErrorIs(t, err, ErrMalformedPayload)
			assert.Equal(t, before, s.Export())
		})
	}
}

func TestImportAmbiguousLegacyProject(t *testing.T) {
	doc := decodeJSON(t, `{
		"groups": ["A", "B"],
		"tracks": [{"id": "1", "group": "A", "name": "p"}, {"id": "2", "group": "B", "name": "p"}],
		"entries": [{"date": "2024-01-01", "project": "p"}]
	}`)
	_, err := NormalizeDocument(doc, seqIDs())
	assert.ErrorIs(t, err, ErrMalformedPayload)

	doc["entries"] = []any{map[string]any{"date": "2024-01-01", "project": "p", "group": "B"}}
	snap, err := NormalizeDocument(doc, seqIDs())
	require.NoError(t, err)
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "2", snap.Entries[0].TrackID)
}

func TestImportEmptyDocument(t *testing.T) {
	s, _ := stateWithTrack(t)
	require.NoError(t, s.ImportDocument(map[string]any{}))
	g, tr, e := s.Counts()
	assert.Zero(t, g+tr+e)

	assert.ErrorIs(t, s.ImportDocument(nil), ErrMalformedPayload)
}
