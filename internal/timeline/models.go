package timeline

import "cloud.google.com/go/civil"

// Group is a named category. The name is its identity.
type Group struct {
	Name string
}

// Track is a tracked item belonging to exactly one group.
type Track struct {
	ID    string
	Group string
	Name  string
}

// Entry is a dated note on a track. (TrackID, Date) is unique.
type Entry struct {
	TrackID string
	Date    civil.Date
	Note    string
}

// Settings are the minor, non-collection bits of state.
type Settings struct {
	EndDate civil.Date // zero means today
	Preset  Preset
	Visible []string // nil means every group
}

// Snapshot is a whole-state value used by Export and Replace.
type Snapshot struct {
	Groups  []Group
	Tracks  []Track
	Entries []Entry
}
