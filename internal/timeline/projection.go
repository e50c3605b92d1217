package timeline

import (
	"cloud.google.com/go/civil"
)

// RowKind tags a projection row.
type RowKind int

const (
	RowBaseline RowKind = iota
	RowNewGroup
	RowGroupHeader
	RowTrack
)

func (k RowKind) String() string {
	switch k {
	case RowBaseline:
		return "baseline"
	case RowNewGroup:
		return "new-group"
	case RowGroupHeader:
		return "group"
	case RowTrack:
		return "track"
	}
	return "unknown"
}

// RowID identifies a row independently of its display label. Group is set
// for group headers and tracks, TrackID only for tracks.
type RowID struct {
	Kind    RowKind
	Group   string
	TrackID string
}

func BaselineRow() RowID         { return RowID{Kind: RowBaseline} }
func NewGroupRow() RowID         { return RowID{Kind: RowNewGroup} }
func GroupRow(name string) RowID { return RowID{Kind: RowGroupHeader, Group: name} }
func TrackRow(t Track) RowID     { return RowID{Kind: RowTrack, Group: t.Group, TrackID: t.ID} }

// LineStyle is the drawing instruction for a row's guide line.
type LineStyle int

const (
	LineNone LineStyle = iota
	LineSolid
	LineDotted
)

// Point is one dated marker on a row.
type Point struct {
	Date civil.Date
	Note string
	Marker
}

// Row is one renderable lane.
type Row struct {
	ID     RowID
	Label  string
	Line   LineStyle
	Color  int // palette slot for track rows, -1 otherwise
	Points []Point
}

// Projection is the ordered row list for one render pass.
type Projection struct {
	Window Window
	Rows   []Row
	index  map[RowID]int
}

// GroupSet is a visible-group filter. A nil set shows every group.
type GroupSet map[string]struct{}

func NewGroupSet(names ...string) GroupSet {
	gs := make(GroupSet, len(names))
	for _, n := range names {
		gs[n] = struct{}{}
	}
	return gs
}

// Has reports whether name passes the filter.
func (gs GroupSet) Has(name string) bool {
	if gs == nil {
		return true
	}
	_, ok := gs[name]
	return ok
}

// Options parameterise Build.
type Options struct {
	Window  Window
	Visible GroupSet
	Encoder Encoder
}

// Labels used for the fixed rows.
const (
	BaselineLabel = "Day"
	NewGroupLabel = "+ New group"
)

// Build derives the rows for the current state. The result is a pure
// function of the state and opts.
func Build(s *State, opts Options) Projection {
	snap := s.Export()
	w := opts.Window
	enc := opts.Encoder

	byTrack := make(map[string][]Entry)
	for _, e := range snap.Entries {
		if w.Contains(e.Date) {
			byTrack[e.TrackID] = append(byTrack[e.TrackID], e)
		}
	}

	colors := trackColors(snap)

	p := Projection{Window: w, index: make(map[RowID]int)}
	p.add(Row{ID: NewGroupRow(), Label: NewGroupLabel, Line: LineNone, Color: -1})

	for _, g := range snap.Groups {
		if !opts.Visible.Has(g.Name) {
			continue
		}
		p.add(Row{ID: GroupRow(g.Name), Label: g.Name, Line: LineNone, Color: -1})
		for _, t := range groupTracks(snap.Tracks, g.Name) {
			entries := byTrack[t.ID]
			sortEntries(entries)
			points := make([]Point, 0, len(entries))
			for _, e := range entries {
				points = append(points, Point{Date: e.Date, Note: e.Note, Marker: enc.Encode(e.Note)})
			}
			p.add(Row{
				ID:     TrackRow(t),
				Label:  t.Name,
				Line:   LineDotted,
				Color:  colors[t.ID],
				Points: points,
			})
		}
	}

	days := w.Days()
	base := make([]Point, len(days))
	for i, d := range days {
		base[i] = Point{Date: d, Marker: enc.DayMarker()}
	}
	p.add(Row{ID: BaselineRow(), Label: BaselineLabel, Line: LineSolid, Color: -1, Points: base})
	return p
}

func (p *Projection) add(r Row) {
	p.index[r.ID] = len(p.Rows)
	p.Rows = append(p.Rows, r)
}

// Lookup returns the row with the given identity.
func (p Projection) Lookup(id RowID) (Row, bool) {
	i, ok := p.index[id]
	if !ok {
		return Row{}, false
	}
	return p.Rows[i], true
}

// IndexOf returns the position of id, or -1.
func (p Projection) IndexOf(id RowID) int {
	if i, ok := p.index[id]; ok {
		return i
	}
	return -1
}

// PointCount totals the dated points over track rows.
func (p Projection) PointCount() int {
	n := 0
	for _, r := range p.Rows {
		if r.ID.Kind == RowTrack {
			n += len(r.Points)
		}
	}
	return n
}

// trackColors assigns palette slots by the sorted order of track names over
// the whole state regardless of group, so a track keeps its colour when
// filters change.
func trackColors(snap Snapshot) map[string]int {
	tracks := append([]Track(nil), snap.Tracks...)
	sortTracks(tracks)
	colors := make(map[string]int, len(tracks))
	for i, t := range tracks {
		colors[t.ID] = i
	}
	return colors
}

// VisibleSet converts the settings filter into a GroupSet.
func (st Settings) VisibleSet() GroupSet {
	if st.Visible == nil {
		return nil
	}
	return NewGroupSet(st.Visible...)
}
