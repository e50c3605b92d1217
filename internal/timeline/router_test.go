package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePriorities(t *testing.T) {
	s, tr := stateWithTrack(t)
	w := NewWindow(day("2024-02-01"), day("2024-03-31"))
	r := NewRouter(s, w)
	d := day("2024-03-01")

	assert.Equal(t, Intent{Kind: IntentAddGroup}, r.Resolve(Click{Row: NewGroupRow(), Date: d}))
	assert.Equal(t, Intent{Kind: IntentAddTrack, Group: "Work"}, r.Resolve(Click{Row: GroupRow("Work"), Date: d}))
	assert.Equal(t, Intent{Kind: IntentEditEntry, Group: "Work", Track: tr, Date: d},
		r.Resolve(Click{Row: TrackRow(tr), Date: d}))
	assert.Equal(t, IntentNone, r.Resolve(Click{Row: BaselineRow(), Date: d}).Kind)
	assert.Equal(t, IntentNone, r.Resolve(Click{Row: RowID{Kind: RowKind(42)}, Date: d}).Kind)
}

func TestResolveUnknownTargetsAreNoops(t *testing.T) {
	s, tr := stateWithTrack(t)
	r := NewRouter(s, NewWindow(day("2024-02-01"), day("2024-03-31")))

	assert.Equal(t, IntentNone, r.Resolve(Click{Row: GroupRow("Gone")}).Kind)
	assert.Equal(t, IntentNone, r.Resolve(Click{Row: RowID{Kind: RowTrack, TrackID: "gone"}, Date: day("2024-03-01")}).Kind)
	assert.Equal(t, IntentNone, r.Resolve(Click{Row: TrackRow(tr), Date: day("2024-04-01")}).Kind)
	assert.Equal(t, IntentNone, r.Resolve(Click{Row: TrackRow(tr), Date: day("2024-01-31")}).Kind)
}

func TestResolvePrefillsExistingNote(t *testing.T) {
	s, tr := stateWithTrack(t)
	d := day("2024-03-01")
	require.NoError(t, s.UpsertEntry(tr.ID, d, "existing"))
	r := NewRouter(s, NewWindow(day("2024-02-01"), day("2024-03-31")))

	in := r.Resolve(Click{Row: TrackRow(tr), Date: d})
	assert.True(t, in.Exists)
	assert.Equal(t, "existing", in.Note)
}

func TestResolveByIdentityNotLabel(t *testing.T) {
	s := newTestState(t)
	require.NoError(t, s.AddGroup(NewGroupLabel))
	tr, err := s.AddTrack(NewGroupLabel, NewGroupLabel)
	require.NoError(t, err)
	r := NewRouter(s, NewWindow(day("2024-01-01"), day("2024-01-31")))

	assert.Equal(t, IntentAddTrack, r.Resolve(Click{Row: GroupRow(NewGroupLabel)}).Kind)
	assert.Equal(t, IntentEditEntry, r.Resolve(Click{Row: TrackRow(tr), Date: day("2024-01-05")}).Kind)
}

func TestCommitDispatches(t *testing.T) {
	s := newTestState(t)
	w := NewWindow(day("2024-02-01"), day("2024-03-31"))
	r := NewRouter(s, w)

	require.NoError(t, r.Commit(r.Resolve(Click{Row: NewGroupRow()}), Response{Name: "Work"}))
	require.NoError(t, r.Commit(r.Resolve(Click{Row: GroupRow("Work")}), Response{Name: "Deadline"}))
	tracks := s.TracksInGroup("Work")
	require.Len(t, tracks, 1)

	d := day("2024-03-01")
	edit := r.Resolve(Click{Row: TrackRow(tracks[0]), Date: d})
	require.NoError(t, r.Commit(edit, Response{Note: "done"}))
	e, ok := s.Entry(tracks[0].ID, d)
	require.True(t, ok)
	assert.Equal(t, "done", e.Note)

	edit = r.Resolve(Click{Row: TrackRow(tracks[0]), Date: d})
	require.NoError(t, r.Commit(edit, Response{Delete: true}))
	_, ok = s.Entry(tracks[0].ID, d)
	assert.False(t, ok)

	assert.ErrorIs(t, r.Commit(edit, Response{Delete: true}), ErrNotFound)
	assert.NoError(t, r.Commit(Intent{}, Response{Name: "ignored"}))
	assert.ErrorIs(t, r.Commit(r.Resolve(Click{Row: NewGroupRow()}), Response{Name: "Work"}), ErrDuplicateName)
}

func TestCommitRejectsStaleWindow(t *testing.T) {
	s, tr := stateWithTrack(t)
	r := NewRouter(s, NewWindow(day("2024-02-01"), day("2024-03-31")))
	in := r.Resolve(Click{Row: TrackRow(tr), Date: day("2024-02-01")})
	require.Equal(t, IntentEditEntry, in.Kind)

	r.SetWindow(NewWindow(day("2024-03-01"), day("2024-03-31")))
	assert.ErrorIs(t, r.Commit(in, Response{Note: "late"}), ErrValidation)
	assert.Empty(t, s.Entries())
}

func TestEndToEndNoteGrowsMarker(t *testing.T) {
	s := New()
	enc := DefaultEncoder()
	require.NoError(t, s.AddGroup("Work"))
	tr, err := s.AddTrack("Work", "Deadline")
	require.NoError(t, err)
	d := day("2024-03-01")
	opts := Options{Window: NewWindow(day("2024-02-01"), day("2024-03-31")), Encoder: enc}

	require.NoError(t, s.UpsertEntry(tr.ID, d, ""))
	row, ok := Build(s, opts).Lookup(TrackRow(tr))
	require.True(t, ok)
	require.Len(t, row.Points, 1)
	assert.Equal(t, d, row.Points[0].Date)
	assert.Equal(t, enc.MinSize, row.Points[0].Size)

	require.NoError(t, s.UpsertEntry(tr.ID, d, "finished early"))
	row, _ = Build(s, opts).Lookup(TrackRow(tr))
	require.Len(t, row.Points, 1)
	assert.Equal(t, enc.Size("finished early"), row.Points[0].Size)
	assert.Greater(t, row.Points[0].Size, enc.MinSize)
	assert.Equal(t, "finished early", row.Points[0].Note)
}

func TestEndToEndDeleteGroupWithTrack(t *testing.T) {
	s, tr := stateWithTrack(t)
	require.NoError(t, s.UpsertEntry(tr.ID, day("2024-03-01"), "x"))
	g, tc, ec := s.Counts()

	assert.ErrorIs(t, s.DeleteGroup("Work"), ErrHasDependents)

	g2, tc2, ec2 := s.Counts()
	assert.Equal(t, []int{g, tc, ec}, []int{g2, tc2, ec2})
}
