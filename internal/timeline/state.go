package timeline

import (
	"io"
	"log/slog"
	"sort"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// State owns the groups, tracks and entries of one session. Reads return
// copies; mutations go through the command methods only.
type State struct {
	mu       sync.RWMutex
	groups   []Group
	tracks   []Track
	entries  []Entry
	settings Settings

	newID func() string
	log   *slog.Logger
}

type Option func(*State)

// WithLogger sets the logger used for command tracing.
func WithLogger(l *slog.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIDGenerator replaces the track id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *State) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New returns an empty state.
func New(opts ...Option) *State {
	s := &State{
		newID:    uuid.NewString,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		settings: Settings{Preset: DefaultPreset},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *State) Groups() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Group(nil), s.groups...)
}

// GroupNames returns group names in store order.
func (s *State) GroupNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.groups))
	for i, g := range s.groups {
		names[i] = g.Name
	}
	return names
}

func (s *State) HasGroup(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groupIndex(name) >= 0
}

func (s *State) Tracks() []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Track(nil), s.tracks...)
}

// Track looks up a track by id.
func (s *State) Track(id string) (Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.trackIndex(id); i >= 0 {
		return s.tracks[i], true
	}
	return Track{}, false
}

// TracksInGroup returns the group's tracks sorted by name, then id.
func (s *State) TracksInGroup(group string) []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracksInGroup(group)
}

func (s *State) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.entries...)
}

// Entry returns the entry for (trackID, date).
func (s *State) Entry(trackID string, date civil.Date) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.entryIndex(trackID, date); i >= 0 {
		return s.entries[i], true
	}
	return Entry{}, false
}

// EntriesFor returns the track's entries sorted by date.
func (s *State) EntriesFor(trackID string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for _, e := range s.entries {
		if e.TrackID == trackID {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out
}

// EarliestEntry returns the first entry date, or the zero date when empty.
func (s *State) EarliestEntry() civil.Date {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var first civil.Date
	for i, e := range s.entries {
		if i == 0 || e.Date.Before(first) {
			first = e.Date
		}
	}
	return first
}

func (s *State) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.settings
	if out.Visible != nil {
		out.Visible = append([]string{}, out.Visible...)
	}
	return out
}

func (s *State) SetSettings(st Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.Preset == "" {
		st.Preset = DefaultPreset
	}
	if st.Visible != nil {
		st.Visible = append([]string{}, st.Visible...)
	}
	s.settings = st
}

// Window resolves the settings into the window for today.
func (s *State) Window(today civil.Date) Window {
	st := s.Settings()
	end := st.EndDate
	if end.IsZero() {
		end = today
	}
	return PresetWindow(st.Preset, end, s.EarliestEntry())
}

// Counts reports collection sizes.
func (s *State) Counts() (groups, tracks, entries int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.groups), len(s.tracks), len(s.entries)
}

func (s *State) groupIndex(name string) int {
	for i, g := range s.groups {
		if g.Name == name {
			return i
		}
	}
	return -1
}

func (s *State) trackIndex(id string) int {
	for i, t := range s.tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *State) entryIndex(trackID string, date civil.Date) int {
	for i, e := range s.entries {
		if e.TrackID == trackID && e.Date == date {
			return i
		}
	}
	return -1
}

func (s *State) tracksInGroup(group string) []Track {
	return groupTracks(s.tracks, group)
}

func groupTracks(tracks []Track, group string) []Track {
	var out []Track
	for _, t := range tracks {
		if t.Group == group {
			out = append(out, t)
		}
	}
	sortTracks(out)
	return out
}

// sortTracks orders tracks by name, then id.
func sortTracks(tracks []Track) {
	sort.SliceStable(tracks, func(i, j int) bool {
		if tracks[i].Name != tracks[j].Name {
			return tracks[i].Name < tracks[j].Name
		}
		return tracks[i].ID < tracks[j].ID
	})
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
}
